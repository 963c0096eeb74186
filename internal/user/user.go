package user

import (
	"time"

	"github.com/Ilan9903/Juris-IA/internal/auth"
	userDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/user"
)

// User is the account as shown to its owner and to administrators. The password hash never leaves the repository.
type User struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         auth.Role   `json:"role"`
	Status       auth.Status `json:"status"`
	ProfileImage string      `json:"profileImage"`
	Permissions  []string    `json:"permissions"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Image is a profile picture already copied to local disk by the transport layer.
type Image struct {
	Path        string
	ContentType string
}

func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}

func FromDataModel(u *userDatamodel.User, permissions []string) *User {
	if permissions == nil {
		permissions = []string{}
	}
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         auth.Role(u.Role),
		Status:       auth.Status(u.Status),
		ProfileImage: u.ProfileImage,
		Permissions:  permissions,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func defaultPermissionNames(role auth.Role) []string {
	perms := role.DefaultPermissions()
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, string(p))
	}
	return names
}
