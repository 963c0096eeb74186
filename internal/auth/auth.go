package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	userDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/user"
)

type ServiceAPI interface {
	Signup(ctx context.Context, dto SignupDTO) (*User, string, error)
	Login(ctx context.Context, dto LoginDTO) (*User, string, error)
	Logout(ctx context.Context, userID int64) error
	Resolve(ctx context.Context, token string) (*AuthContext, error)
	MarkOnline(ctx context.Context, u *User) error
	VerifyPassword(ctx context.Context, userID int64, password string) error
	ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO) error
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetPermissions(ctx context.Context, userID int64) ([]string, error)
	Create(ctx context.Context, u *userDatamodel.User, perms []string) error
	UpdateStatus(ctx context.Context, userID int64, status string) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type TokenGeneratorAPI interface {
	Generate(u *User) (string, error)
	Validate(tokenString string) (*Claims, error)
}

// User is the identity resolved from storage for the current request.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Status       Status
	ProfileImage string
	CreatedAt    time.Time
}

// AuthContext is handed explicitly to authenticated handlers.
type AuthContext struct {
	User        User
	Permissions PermissionSet
}

func (ac AuthContext) Profile() Profile {
	p := ac.User.Profile()
	p.Permissions = ac.Permissions.Names()
	return p
}

type Profile struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         Role     `json:"role"`
	Status       Status   `json:"status"`
	ProfileImage string   `json:"profileImage"`
	Permissions  []string `json:"permissions,omitempty"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Status:       u.Status,
		ProfileImage: u.ProfileImage,
	}
}

// Claims mirrors what the session token carries. Role and name are informational only.
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type contextKey string

const authContextKey contextKey = "auth_context"

func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

func FromContext(ctx context.Context) (*AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey).(*AuthContext)
	return ac, ok && ac != nil
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         Role(u.Role),
		Status:       Status(u.Status),
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}
