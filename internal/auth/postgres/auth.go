package auth

import (
	"database/sql"

	"github.com/KarlovS28/dela/internal"
	"github.com/KarlovS28/dela/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForEmail(email string) (string, int64, error) {
	var passwordHash string
	var userID int64
	query := `SELECT id, password_hash FROM users WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return "", 0, err
	}
	return passwordHash, userID, nil
}

// GetUserWithPermissions loads an active user together with their role and
// the role's permission names in two queries.
func (r *Repository) GetUserWithPermissions(userID int64) (*auth.User, error) {
	var user auth.User

	query := `SELECT u.id, u.email, u.name, u.role_id, r.name, r.is_super_role
	          FROM users u
	          JOIN roles r ON r.id = u.role_id
	          WHERE u.id = ? AND u.is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.RoleID, &user.RoleName, &user.IsSuperRole); err != nil {
		if err == sql.ErrNoRows {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return nil, err
	}

	permQuery := `SELECT p.name
	              FROM permissions p
	              JOIN role_permissions rp ON rp.permission_id = p.id
	              WHERE rp.role_id = ?`

	rows, err := r.db.Raw(permQuery, user.RoleID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var permName string
		if err := rows.Scan(&permName); err != nil {
			return nil, err
		}
		permissions = append(permissions, permName)
	}

	user.Permissions = permissions
	return &user, nil
}
