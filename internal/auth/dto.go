package auth

import (
	"github.com/Ilan9903/Juris-IA/internal/core/common/validation"
)

type SignupDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d SignupDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(6)
	return validation.AsError(v.Validate())
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(6)
	return validation.AsError(v.Validate())
}

type VerifyPasswordDTO struct {
	Password string `json:"password"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (d ChangePasswordDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("currentPassword", d.CurrentPassword).Required()
	v.Field("newPassword", d.NewPassword).Required().MinLength(6)
	return validation.AsError(v.Validate())
}

type AuthResponse struct {
	Message string `json:"message"`
	Profile
}

type StatusResponse struct {
	Message string  `json:"message"`
	User    Profile `json:"user"`
}
