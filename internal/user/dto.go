package user

import (
	"strings"

	"github.com/Ilan9903/Juris-IA/internal/core/common/validation"
)

// UpdateProfileDTO carries the self-service profile form; empty fields are left unchanged.
type UpdateProfileDTO struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

func (d *UpdateProfileDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)

	v := validation.NewValidator()
	v.Field("name", d.Name).MaxLength(100)
	v.Field("email", d.Email).Email()
	return validation.AsError(v.Validate())
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

type CreateUserDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (d *CreateUserDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(6)
	v.Field("role", d.Role).Required()
	return validation.AsError(v.Validate())
}

// AdminUpdateUserDTO is the administrator's edit form; empty fields are left unchanged.
type AdminUpdateUserDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (d *AdminUpdateUserDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)

	v := validation.NewValidator()
	v.Field("name", d.Name).MaxLength(100)
	v.Field("email", d.Email).Email()
	return validation.AsError(v.Validate())
}

type UserResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

type UsersResponse struct {
	Message string  `json:"message"`
	Users   []*User `json:"users"`
}
