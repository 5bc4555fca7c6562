package auth

import "context"

// User is the authenticated principal attached to the request context.
// It carries the role and the flattened permission names so authorization
// checks never go back to the database.
type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	RoleID      int64    `json:"role_id"`
	RoleName    string   `json:"role_name"`
	IsSuperRole bool     `json:"is_super_role"`
	Permissions []string `json:"permissions,omitempty"`
}

// Can reports whether the user may perform the action named by permission.
// A super role passes every check, including permissions that do not exist
// yet. Everyone else needs an explicit grant; unknown permissions deny.
func (u *User) Can(permission string) bool {
	if u == nil {
		return false
	}
	if u.IsSuperRole {
		return true
	}
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CanAny reports whether the user holds at least one of the permissions.
func (u *User) CanAny(permissions ...string) bool {
	if u == nil {
		return false
	}
	if u.IsSuperRole {
		return true
	}
	for _, p := range permissions {
		if u.Can(p) {
			return true
		}
	}
	return false
}

type ctxKey string

// ContextUserKey is where AuthMiddleware stores the authenticated user.
const ContextUserKey ctxKey = "authUser"

func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	user, ok := ctx.Value(ContextUserKey).(*User)
	return user, ok
}

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, user)
}
