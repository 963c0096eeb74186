package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/auth"
	userDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetPermissions(ctx context.Context, userID int64) ([]string, error) {
	return GetPermissionNames(r.db.WithContext(ctx), userID)
}

func (r *Repository) Create(ctx context.Context, u *userDatamodel.User, perms []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		return GrantPermissions(tx, u.ID, perms, nil)
	})
}

func (r *Repository) UpdateStatus(ctx context.Context, userID int64, status string) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Update("status", status).Error
}

func (r *Repository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error
}

// GetPermissionNames resolves a user's grants through the user_permissions join table.
func GetPermissionNames(db *gorm.DB, userID int64) ([]string, error) {
	var names []string
	err := db.Table("permissions p").
		Joins("JOIN user_permissions up ON p.id = up.permission_id").
		Where("up.user_id = ?", userID).
		Order("p.name").
		Pluck("p.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	return names, nil
}

// GrantPermissions links names to the user, creating permission rows on first use.
func GrantPermissions(tx *gorm.DB, userID int64, names []string, grantedBy *int64) error {
	for _, name := range names {
		p, err := auth.ParsePermission(name)
		if err != nil {
			return err
		}
		perm := userDatamodel.Permission{Name: string(p)}
		if err := tx.Where(userDatamodel.Permission{Name: string(p)}).
			Attrs(userDatamodel.Permission{Description: p.Description()}).
			FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("resolve permission %s: %w", p, err)
		}
		grant := userDatamodel.UserPermission{UserID: userID, PermissionID: perm.ID, GrantedBy: grantedBy}
		if err := tx.Where(userDatamodel.UserPermission{UserID: userID, PermissionID: perm.ID}).
			FirstOrCreate(&grant).Error; err != nil {
			return fmt.Errorf("grant permission %s: %w", p, err)
		}
	}
	return nil
}

// ReplacePermissions drops every grant of the user and grants names instead.
func ReplacePermissions(tx *gorm.DB, userID int64, names []string, grantedBy *int64) error {
	if err := tx.Where("user_id = ?", userID).Delete(&userDatamodel.UserPermission{}).Error; err != nil {
		return fmt.Errorf("revoke permissions: %w", err)
	}
	return GrantPermissions(tx, userID, names, grantedBy)
}
