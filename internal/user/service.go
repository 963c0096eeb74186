package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/auth"
	userDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/user"
	"github.com/Ilan9903/Juris-IA/internal/core/events"
	"github.com/Ilan9903/Juris-IA/internal/storage"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*userDatamodel.User, error)
	ListPermissions(ctx context.Context) (map[int64][]string, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetPermissions(ctx context.Context, userID int64) ([]string, error)
	Create(ctx context.Context, u *userDatamodel.User, perms []string, grantedBy *int64) error
	// Update saves the editable columns; a non-nil perms replaces every grant of the user.
	Update(ctx context.Context, u *userDatamodel.User, perms []string, grantedBy *int64) error
	// Delete removes the user together with their conversations, messages and grants.
	Delete(ctx context.Context, id int64) error
}

type ImageStore interface {
	Upload(ctx context.Context, folder, path, contentType string) (string, error)
	Remove(ctx context.Context, url string) error
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo      RepositoryAPI
	images    ImageStore
	hasher    PasswordHasher
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, images ImageStore, hasher PasswordHasher, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		images:    images,
		hasher:    hasher,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, dto UpdateProfileDTO, image *Image) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if dto.Status != "" {
		status, err := auth.ParseStatus(dto.Status)
		if err != nil {
			return nil, err
		}
		row.Status = string(status)
	}
	if dto.Name != "" {
		row.Name = dto.Name
	}
	if err := s.changeEmail(ctx, row, dto.Email); err != nil {
		return nil, err
	}

	if err := s.save(ctx, row, nil, nil, image); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "profile updated", "user_id", userID, "image_replaced", image != nil)
	return s.withPermissions(ctx, row)
}

func (s *Service) UpdateStatus(ctx context.Context, userID int64, dto UpdateStatusDTO) (*User, error) {
	status, err := auth.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	row, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	row.Status = string(status)
	if err := s.repo.Update(ctx, row, nil, nil); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.logger.InfoContext(ctx, "status updated", "user_id", userID, "status", status)
	return s.withPermissions(ctx, row)
}

// DeleteAccount removes the caller's own account.
func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	row, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	return s.delete(ctx, row)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	out := make([]*User, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row, perms[row.ID]))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withPermissions(ctx, row)
}

// Create registers an account on behalf of an administrator and grants the role's default permissions.
func (s *Service) Create(ctx context.Context, actorID int64, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	role, err := auth.ParseRole(dto.Role)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, internal.ErrEmailTaken
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}

	row := &userDatamodel.User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         string(role),
		Status:       string(auth.StatusOffline),
		ProfileImage: auth.DefaultProfileImage,
	}
	if err := s.repo.Create(ctx, row, defaultPermissionNames(role), &actorID); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user created by admin", "actor_id", actorID, "user_id", row.ID, "role", role)
	return s.withPermissions(ctx, row)
}

// Update edits another account. Changing the role re-grants that role's default permissions.
func (s *Service) Update(ctx context.Context, actorID, id int64, dto AdminUpdateUserDTO, image *Image) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var perms []string
	if dto.Role != "" {
		role, err := auth.ParseRole(dto.Role)
		if err != nil {
			return nil, err
		}
		if actorID == id && role != auth.RoleAdmin {
			return nil, internal.NewForbiddenError("You cannot remove your own admin role", internal.ErrCodeSelfModification)
		}
		if string(role) != row.Role {
			row.Role = string(role)
			perms = defaultPermissionNames(role)
		}
	}
	if dto.Name != "" {
		row.Name = dto.Name
	}
	if err := s.changeEmail(ctx, row, dto.Email); err != nil {
		return nil, err
	}

	if err := s.save(ctx, row, perms, &actorID, image); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user updated by admin",
		"actor_id", actorID,
		"user_id", id,
		"role_changed", perms != nil,
		"image_replaced", image != nil)
	return s.withPermissions(ctx, row)
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return internal.NewForbiddenError("You cannot delete your own account", internal.ErrCodeSelfModification)
	}
	row, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.delete(ctx, row); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user deleted by admin", "actor_id", actorID, "user_id", id)
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*userDatamodel.User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return row, nil
}

func (s *Service) withPermissions(ctx context.Context, row *userDatamodel.User) (*User, error) {
	perms, err := s.repo.GetPermissions(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row, perms), nil
}

func (s *Service) changeEmail(ctx context.Context, row *userDatamodel.User, email string) error {
	if email == "" || email == row.Email {
		return nil
	}
	other, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if other != nil && other.ID != row.ID {
		return internal.ErrEmailTaken
	}
	row.Email = email
	return nil
}

// save persists row, swapping in image when given. The previous picture is removed only after the row
// points at the new one.
func (s *Service) save(ctx context.Context, row *userDatamodel.User, perms []string, grantedBy *int64, image *Image) error {
	previous := row.ProfileImage
	if image != nil {
		if !strings.HasPrefix(image.ContentType, "image/") {
			return internal.NewValidationError(fmt.Sprintf("Unsupported image type: %s", image.ContentType), internal.ErrCodeUnsupportedFile)
		}
		url, err := s.images.Upload(ctx, storage.FolderUsers, image.Path, image.ContentType)
		if err != nil {
			return err
		}
		row.ProfileImage = url
	}

	if err := s.repo.Update(ctx, row, perms, grantedBy); err != nil {
		if image != nil {
			s.removeImage(ctx, row.ProfileImage)
		}
		return err
	}

	if image != nil {
		s.removeImage(ctx, previous)
	}
	return nil
}

func (s *Service) removeImage(ctx context.Context, url string) {
	if err := s.images.Remove(ctx, url); err != nil {
		s.logger.WarnContext(ctx, "failed to remove profile image", "url", url, "error", err)
	}
}

func (s *Service) delete(ctx context.Context, row *userDatamodel.User) error {
	if err := s.repo.Delete(ctx, row.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.publisher.Publish(ctx, events.NewUserDeletedEvent(row.ID, row.ProfileImage)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish user deleted event", "user_id", row.ID, "error", err)
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", row.ID)
	return nil
}
