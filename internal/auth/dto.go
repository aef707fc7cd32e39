package auth

import (
	"github.com/frahmantamala/shiftboard/internal/core/common/validation"
	"github.com/frahmantamala/shiftboard/internal/user"
)

// bcrypt ignores input past 72 bytes, so longer passwords are refused.
const maxPasswordBytes = 72

type RegisterDTO struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

func (d RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email().MaxLength(254)
	v.Field("password", d.Password).Required().MaxLength(maxPasswordBytes)
	v.Field("firstname", d.FirstName).Required().MaxLength(100)
	v.Field("lastname", d.LastName).Required().MaxLength(100)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type LoginResponse struct {
	Message string          `json:"message"`
	User    user.PublicView `json:"user"`
	Token   string          `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
