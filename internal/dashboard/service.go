package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Ilan9903/Juris-IA/internal/auth"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Overview(ctx context.Context, ac auth.AuthContext) (*Overview, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dashboard stats: %w", err)
	}

	s.logger.InfoContext(ctx, "dashboard viewed", "user_id", ac.User.ID)
	return &Overview{
		Message: WelcomeMessage,
		User:    ac.Profile(),
		Stats:   *stats,
	}, nil
}
