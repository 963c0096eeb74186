package article

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Ilan9903/Juris-IA/internal"
	articleDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/article"
	"github.com/Ilan9903/Juris-IA/internal/core/events"
	"github.com/Ilan9903/Juris-IA/internal/storage"
)

const pdfContentType = "application/pdf"

type RepositoryAPI interface {
	Find(ctx context.Context, f Filter) ([]*articleDatamodel.LegalArticle, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Categories(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id int64) (*articleDatamodel.LegalArticle, error)
	Create(ctx context.Context, a *articleDatamodel.LegalArticle) error
	// Update saves the scalar columns and replaces the tag list.
	Update(ctx context.Context, a *articleDatamodel.LegalArticle) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type FileStore interface {
	Upload(ctx context.Context, folder, path, contentType string) (string, error)
	Remove(ctx context.Context, url string) error
	PresignURL(ctx context.Context, url string) (string, error)
}

// File is an uploaded document already on local disk.
type File struct {
	Path        string
	ContentType string
}

type Service struct {
	repo      RepositoryAPI
	files     FileStore
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, files FileStore, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		files:     files,
		publisher: publisher,
		logger:    logger,
	}
}

// List serves both the carousel (latest N, no envelope) and the paginated search.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	filter := Filter{Category: strings.TrimSpace(q.Category), Search: strings.TrimSpace(q.Search)}

	if q.IsCarousel() {
		filter.Limit = q.PageSize()
		rows, err := s.repo.Find(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("find articles: %w", err)
		}
		return &ListResult{Carousel: true, Articles: fromRows(rows)}, nil
	}

	page, limit := q.PageNumber(), q.PageSize()
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	totalPages := pageCount(total, limit)
	rows := []*articleDatamodel.LegalArticle{}
	if page <= totalPages {
		filter.Offset, filter.Limit = (page-1)*limit, limit
		rows, err = s.repo.Find(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("find articles: %w", err)
		}
	}

	s.logger.DebugContext(ctx, "articles listed",
		"category", filter.Category,
		"search", filter.Search,
		"page", page,
		"total", total)

	return &ListResult{
		Articles:      fromRows(rows),
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalArticles: total,
	}, nil
}

// AdminList returns every article, newest first.
func (s *Service) AdminList(ctx context.Context) ([]*Article, error) {
	rows, err := s.repo.Find(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	return fromRows(rows), nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	names, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Article, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateArticleDTO) (*Article, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a := &Article{
		Title:       strings.TrimSpace(dto.Title),
		Content:     dto.Content,
		Category:    NormalizeCategories(dto.Category),
		IsUniversal: dto.IsUniversal,
	}
	row := ToDataModel(a)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	s.logger.InfoContext(ctx, "article created", "article_id", row.ID, "categories", a.Category)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateArticleDTO) (*Article, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	a := FromDataModel(row)
	if dto.Title != nil {
		a.Title = strings.TrimSpace(*dto.Title)
	}
	if dto.Content != nil {
		a.Content = *dto.Content
	}
	if dto.Category != nil {
		a.Category = NormalizeCategories(*dto.Category)
	}
	if dto.IsUniversal != nil {
		a.IsUniversal = *dto.IsUniversal
	}

	updated := ToDataModel(a)
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}

	s.logger.InfoContext(ctx, "article updated", "article_id", id)
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	row, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if !deleted {
		return internal.ErrArticleNotFound
	}

	if err := s.publisher.Publish(ctx, events.NewArticleDeletedEvent(id, row.PDFURL)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish article deleted event", "article_id", id, "error", err)
	}
	s.logger.InfoContext(ctx, "article deleted", "article_id", id)
	return nil
}

// AttachPDF stores file as the article's PDF, replacing any previous one.
func (s *Service) AttachPDF(ctx context.Context, id int64, file *File) (*Article, error) {
	if file == nil {
		return nil, internal.NewValidationError("A PDF file is required", internal.ErrCodeMissingFile)
	}
	if file.ContentType != pdfContentType {
		return nil, internal.NewValidationError(fmt.Sprintf("Unsupported file type: %s", file.ContentType), internal.ErrCodeUnsupportedFile)
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.files.Upload(ctx, storage.FolderArticles, file.Path, file.ContentType)
	if err != nil {
		return nil, err
	}

	a := FromDataModel(row)
	previous := a.PDFURL
	a.PDFURL = url
	if err := s.repo.Update(ctx, ToDataModel(a)); err != nil {
		if rmErr := s.files.Remove(ctx, url); rmErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned pdf", "url", url, "error", rmErr)
		}
		return nil, fmt.Errorf("update article pdf: %w", err)
	}

	if err := s.files.Remove(ctx, previous); err != nil {
		s.logger.WarnContext(ctx, "failed to remove previous pdf", "url", previous, "error", err)
	}

	s.logger.InfoContext(ctx, "article pdf attached", "article_id", id)
	return s.Get(ctx, id)
}

// PDFLink returns a time-limited download URL for the article's PDF.
func (s *Service) PDFLink(ctx context.Context, id int64) (string, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if row.PDFURL == "" {
		return "", internal.NewNotFoundError("This article has no PDF", internal.ErrCodeArticleNotFound)
	}
	return s.files.PresignURL(ctx, row.PDFURL)
}

func (s *Service) load(ctx context.Context, id int64) (*articleDatamodel.LegalArticle, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if row == nil {
		return nil, internal.ErrArticleNotFound
	}
	return row, nil
}

func pageCount(total int64, limit int) int {
	n := total / int64(limit)
	if total%int64(limit) != 0 {
		n++
	}
	return int(n)
}

func fromRows(rows []*articleDatamodel.LegalArticle) []*Article {
	out := make([]*Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
