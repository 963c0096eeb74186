package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/Ilan9903/Juris-IA/internal"
	userDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/user"
)

var errUserGone = internal.NewUnauthorizedError("User not found or invalid token", internal.ErrCodeInvalidToken)

type Service struct {
	repo       RepositoryAPI
	tokens     TokenGeneratorAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Signup registers a plain user, marks them online and returns a fresh session token.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (*User, string, error) {
	if err := dto.Validate(); err != nil {
		return nil, "", err
	}

	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		s.logger.InfoContext(ctx, "signup rejected: email already registered", "email", dto.Email)
		return nil, "", internal.ErrEmailTaken
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, "", err
	}

	record := &userDatamodel.User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         string(RoleUser),
		Status:       string(StatusOnline),
		ProfileImage: DefaultProfileImage,
	}
	if err := s.repo.Create(ctx, record, nil); err != nil {
		return nil, "", err
	}

	u := FromDataModel(record)
	token, err := s.tokens.Generate(u)
	if err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", u.ID)
	return u, token, nil
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (*User, string, error) {
	if err := dto.Validate(); err != nil {
		return nil, "", err
	}

	record, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}
	if record == nil {
		s.logger.InfoContext(ctx, "login rejected: unknown email", "email", dto.Email)
		return nil, "", internal.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.InfoContext(ctx, "login rejected: wrong password", "user_id", record.ID)
		return nil, "", internal.ErrInvalidCredentials
	}

	u := FromDataModel(record)
	if err := s.MarkOnline(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(u)
	if err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", u.ID)
	return u, token, nil
}

func (s *Service) Logout(ctx context.Context, userID int64) error {
	record, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if record == nil || record.Status != string(StatusOnline) {
		return nil
	}
	return s.repo.UpdateStatus(ctx, userID, string(StatusOffline))
}

// Resolve verifies a session token and reloads the user with permissions from storage.
// Role and permissions are never taken from the token claims.
func (s *Service) Resolve(ctx context.Context, token string) (*AuthContext, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.GetByID(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errUserGone
	}

	names, err := s.repo.GetPermissions(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	return &AuthContext{
		User:        *FromDataModel(record),
		Permissions: PermissionSetFromNames(names),
	}, nil
}

func (s *Service) MarkOnline(ctx context.Context, u *User) error {
	if u.Status == StatusOnline {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, u.ID, string(StatusOnline)); err != nil {
		return err
	}
	u.Status = StatusOnline
	return nil
}

func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	if password == "" {
		return internal.NewValidationError("Password is required", internal.ErrCodeValidationFailed)
	}
	record, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return internal.ErrInvalidCredentials
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	record, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
		s.logger.InfoContext(ctx, "password change rejected: wrong current password", "user_id", userID)
		return internal.NewUnauthorizedError("Current password is incorrect", internal.ErrCodeInvalidCredentials)
	}

	hash, err := s.HashPassword(dto.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", internal.NewValidationFieldError("password", "password must not exceed 72 bytes", internal.ErrCodeValidationFailed)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) loadUser(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	record, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, internal.ErrUserNotFound
	}
	return record, nil
}
