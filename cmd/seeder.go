package cmd

import (
	"fmt"
	"log"

	"github.com/KarlovS28/dela/internal/rbac"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// systemRoles are created on every seed run. The admin role passes every
// permission check; the others carry explicit grants.
var systemRoles = []struct {
	Name        string
	DisplayName string
	Description string
	IsSuperRole bool
	Permissions []string
}{
	{
		Name:        "admin",
		DisplayName: "Administrator",
		Description: "Full access to everything",
		IsSuperRole: true,
	},
	{
		Name:        "sysadmin",
		DisplayName: "System Administrator",
		Description: "Manages equipment and its lifecycle",
		Permissions: []string{
			rbac.PermEmployeesView,
			rbac.PermEquipmentView,
			rbac.PermEquipmentCreate,
			rbac.PermEquipmentEdit,
			rbac.PermEquipmentAssign,
			rbac.PermEquipmentReturn,
			rbac.PermEquipmentDecommission,
		},
	},
	{
		Name:        "accountant",
		DisplayName: "Accountant",
		Description: "Manages the roster and equipment records",
		Permissions: []string{
			rbac.PermEmployeesView,
			rbac.PermEmployeesCreate,
			rbac.PermEmployeesEdit,
			rbac.PermEmployeesArchive,
			rbac.PermEquipmentView,
			rbac.PermDepartmentsManage,
		},
	},
	{
		Name:        "user",
		DisplayName: "User",
		Description: "Read-only roster access",
		Permissions: []string{
			rbac.PermEmployeesView,
			rbac.PermEquipmentView,
		},
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed permissions, system roles and the default admin account",
	Long:  `Idempotently seed the permission catalog, the built-in roles and a default administrator. Safe to re-run.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGorm(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"role_permissions", "notifications", "audit_logs"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared grant, notification and audit tables")
		}

		seedPermissions(db)
		seedRoles(db)
		seedAdminAccount(db)

		fmt.Println("Seeding complete")
	},
}

func seedPermissions(db *gorm.DB) {
	for _, p := range rbac.Catalog() {
		var pid int64
		row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
		if err := row.Scan(&pid); err == nil {
			continue
		}

		err := db.Exec(
			"INSERT INTO permissions (name, category, display_name, description, created_at) VALUES (?, ?, ?, ?, now())",
			p.Name, p.Category, p.DisplayName, p.Description,
		).Error
		if err != nil {
			log.Fatalf("failed to insert permission %s: %v", p.Name, err)
		}
		fmt.Println("Seeded permission:", p.Name)
	}
}

func seedRoles(db *gorm.DB) {
	for _, r := range systemRoles {
		var roleID int64
		row := db.Raw("SELECT id FROM roles WHERE name = ?", r.Name).Row()
		if err := row.Scan(&roleID); err != nil {
			err := db.Exec(
				"INSERT INTO roles (name, display_name, description, is_system, is_super_role, created_at, updated_at) VALUES (?, ?, ?, true, ?, now(), now())",
				r.Name, r.DisplayName, r.Description, r.IsSuperRole,
			).Error
			if err != nil {
				log.Fatalf("failed to insert role %s: %v", r.Name, err)
			}
			if err := db.Raw("SELECT id FROM roles WHERE name = ?", r.Name).Row().Scan(&roleID); err != nil {
				log.Fatalf("role not found after insert %s: %v", r.Name, err)
			}
			fmt.Println("Seeded role:", r.Name)
		}

		for _, permName := range r.Permissions {
			var pid int64
			if err := db.Raw("SELECT id FROM permissions WHERE name = ?", permName).Row().Scan(&pid); err != nil {
				log.Fatalf("permission not found %s: %v", permName, err)
			}

			var exists int
			if err := db.Raw("SELECT 1 FROM role_permissions WHERE role_id = ? AND permission_id = ?", roleID, pid).Row().Scan(&exists); err == nil {
				continue
			}

			if err := db.Exec("INSERT INTO role_permissions (role_id, permission_id, created_at) VALUES (?, ?, now())", roleID, pid).Error; err != nil {
				log.Fatalf("failed to grant %s to role %s: %v", permName, r.Name, err)
			}
		}
	}
}

func seedAdminAccount(db *gorm.DB) {
	adminEmail := "admin@dela.local"

	var exists int
	if err := db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row().Scan(&exists); err == nil {
		fmt.Println("Admin account already exists:", adminEmail)
		return
	}

	var roleID int64
	if err := db.Raw("SELECT id FROM roles WHERE name = ?", "admin").Row().Scan(&roleID); err != nil {
		log.Fatalf("admin role missing: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash default password: %v", err)
	}

	err = db.Exec(
		"INSERT INTO users (email, name, password_hash, role_id, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
		adminEmail, "Administrator", string(hash), roleID,
	).Error
	if err != nil {
		log.Fatalf("failed to insert admin account: %v", err)
	}

	fmt.Println("Seeded admin account:", adminEmail, "(password: changeme123, change it immediately)")
}
