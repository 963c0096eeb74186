package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Ilan9903/Juris-IA/internal"
	authPostgres "github.com/Ilan9903/Juris-IA/internal/auth/postgres"
	conversationDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/conversation"
	userDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/user"
	"github.com/Ilan9903/Juris-IA/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]*userDatamodel.User, error) {
	var rows []*userDatamodel.User
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

func (r *UserRepository) ListPermissions(ctx context.Context) (map[int64][]string, error) {
	var grants []struct {
		UserID int64
		Name   string
	}
	err := r.db.WithContext(ctx).
		Table("user_permissions up").
		Select("up.user_id, p.name").
		Joins("JOIN permissions p ON p.id = up.permission_id").
		Order("up.user_id, p.name").
		Scan(&grants).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]string)
	for _, g := range grants {
		out[g.UserID] = append(out[g.UserID], g.Name)
	}
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) GetPermissions(ctx context.Context, userID int64) ([]string, error) {
	return authPostgres.GetPermissionNames(r.db.WithContext(ctx), userID)
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User, perms []string, grantedBy *int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		return authPostgres.GrantPermissions(tx, u.ID, perms, grantedBy)
	})
}

func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User, perms []string, grantedBy *int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(u).
			Select("name", "email", "role", "status", "profile_image", "updated_at").
			Updates(u).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrEmailTaken
			}
			return fmt.Errorf("update user: %w", err)
		}
		if perms == nil {
			return nil
		}
		return authPostgres.ReplacePermissions(tx, u.ID, perms, grantedBy)
	})
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&conversationDatamodel.Conversation{}).Select("id").Where("owner_id = ?", id)
		if err := tx.Where("conversation_id IN (?)", owned).Delete(&conversationDatamodel.Message{}).Error; err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := tx.Where("owner_id = ?", id).Delete(&conversationDatamodel.Conversation{}).Error; err != nil {
			return fmt.Errorf("delete conversations: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&userDatamodel.UserPermission{}).Error; err != nil {
			return fmt.Errorf("delete grants: %w", err)
		}
		if err := tx.Delete(&userDatamodel.User{}, id).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
