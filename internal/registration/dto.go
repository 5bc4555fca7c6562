package registration

import (
	"github.com/KarlovS28/dela/internal/core/common/validation"
)

// SubmitDTO is the public sign-up payload.
type SubmitDTO struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

func (dto SubmitDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", dto.Email).Required().Email()
	v.Field("full_name", dto.FullName).Required().MaxLength(255)
	v.Field("password", dto.Password).MinLength(8)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
