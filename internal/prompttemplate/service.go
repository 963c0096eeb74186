package prompttemplate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Ilan9903/Juris-IA/internal"
	promptDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/prompttemplate"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*promptDatamodel.PromptTemplate, error)
	GetByID(ctx context.Context, id int64) (*promptDatamodel.PromptTemplate, error)
	GetByName(ctx context.Context, name string) (*promptDatamodel.PromptTemplate, error)
	FindPublished(ctx context.Context, name string) (*promptDatamodel.PromptTemplate, error)
	Create(ctx context.Context, p *promptDatamodel.PromptTemplate) error
	Update(ctx context.Context, p *promptDatamodel.PromptTemplate) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]*PromptTemplate, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*PromptTemplate, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*PromptTemplate, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrPromptNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actorID int64, dto CreatePromptDTO) (*PromptTemplate, error) {
	if strings.TrimSpace(dto.Name) == "" || strings.TrimSpace(dto.Content) == "" {
		return nil, internal.NewValidationError("Prompt name and content are required", internal.ErrCodeValidationFailed)
	}

	status := StatusDraft
	if dto.Status != "" {
		parsed, err := ParseStatus(dto.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	existing, err := s.repo.GetByName(ctx, dto.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrPromptNameTaken
	}

	row := &promptDatamodel.PromptTemplate{
		Name:            dto.Name,
		Content:         dto.Content,
		Description:     dto.Description,
		Category:        dto.Category,
		Status:          string(status),
		CreatedByID:     &actorID,
		LastUpdatedByID: &actorID,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "prompt template created", "prompt_id", row.ID, "name", row.Name, "created_by", actorID)
	return s.Get(ctx, row.ID)
}

func (s *Service) Update(ctx context.Context, actorID, id int64, dto UpdatePromptDTO) (*PromptTemplate, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrPromptNotFound
	}

	if dto.Status != "" {
		status, err := ParseStatus(dto.Status)
		if err != nil {
			return nil, err
		}
		row.Status = string(status)
	}

	if dto.Name != "" && dto.Name != row.Name {
		other, err := s.repo.GetByName(ctx, dto.Name)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, internal.ErrPromptNameTaken
		}
		row.Name = dto.Name
	}
	if dto.Content != "" {
		row.Content = dto.Content
	}
	if dto.Description != "" {
		row.Description = dto.Description
	}
	if dto.Category != "" {
		row.Category = dto.Category
	}
	row.LastUpdatedByID = &actorID

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "prompt template updated", "prompt_id", id, "updated_by", actorID)
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return internal.ErrPromptNotFound
	}
	s.logger.InfoContext(ctx, "prompt template deleted", "prompt_id", id)
	return nil
}

// Published returns the published template with the given name, or nil when there is none.
func (s *Service) Published(ctx context.Context, name string) (*PromptTemplate, error) {
	row, err := s.repo.FindPublished(ctx, name)
	if err != nil || row == nil {
		return nil, err
	}
	return FromDataModel(row), nil
}
