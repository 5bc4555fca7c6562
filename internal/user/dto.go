package user

import (
	"github.com/KarlovS28/dela/internal/core/common/validation"
)

// CreateUserDTO is the request payload for creating an account directly,
// bypassing the registration flow.
type CreateUserDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	RoleID   int64  `json:"role_id"`
}

func (dto CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", dto.Email).Required().Email()
	v.Field("name", dto.Name).Required()
	v.Field("password", dto.Password).MinLength(8)
	v.Field("role_id", dto.RoleID).Positive()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ChangeRoleDTO moves a user to a different role.
type ChangeRoleDTO struct {
	RoleID int64 `json:"role_id"`
}

func (dto ChangeRoleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("role_id", dto.RoleID).Positive()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
