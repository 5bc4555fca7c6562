package auth

// ValidationError reports a malformed login or refresh payload. It is
// deliberately separate from the shared taxonomy so handlers can map
// it to 400 without consulting error codes.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// LoginDTO carries credentials from the login endpoint.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	switch {
	case d.Email == "":
		return ValidationError{Msg: "email is required"}
	case d.Password == "":
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

// RefreshTokenDTO carries the refresh token for reissuing a pair.
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refresh_token is required"}
	}
	return nil
}
