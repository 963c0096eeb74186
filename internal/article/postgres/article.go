package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Ilan9903/Juris-IA/internal/article"
	articleDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/article"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) article.RepositoryAPI {
	return &ArticleRepository{db: db}
}

// scoped applies the category tag match and the case-insensitive title/content search.
func (r *ArticleRepository) scoped(ctx context.Context, f article.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&articleDatamodel.LegalArticle{})
	if f.Category != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM article_categories ac WHERE ac.article_id = legal_articles.id AND ac.name = ?)`, f.Category)
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
		q = q.Where(`(LOWER(legal_articles.title) LIKE ? ESCAPE '\' OR LOWER(legal_articles.content) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return q
}

func (r *ArticleRepository) Find(ctx context.Context, f article.Filter) ([]*articleDatamodel.LegalArticle, error) {
	q := r.scoped(ctx, f).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("legal_articles.created_at DESC, legal_articles.id DESC")
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []*articleDatamodel.LegalArticle
	err := q.Find(&rows).Error
	return rows, err
}

func (r *ArticleRepository) Count(ctx context.Context, f article.Filter) (int64, error) {
	var total int64
	err := r.scoped(ctx, f).Count(&total).Error
	return total, err
}

func (r *ArticleRepository) Categories(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&articleDatamodel.ArticleCategory{}).
		Distinct("name").
		Where("name <> ''").
		Order("name ASC").
		Pluck("name", &names).Error
	return names, err
}

func (r *ArticleRepository) GetByID(ctx context.Context, id int64) (*articleDatamodel.LegalArticle, error) {
	var a articleDatamodel.LegalArticle
	err := r.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *ArticleRepository) Create(ctx context.Context, a *articleDatamodel.LegalArticle) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ArticleRepository) Update(ctx context.Context, a *articleDatamodel.LegalArticle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&articleDatamodel.LegalArticle{ID: a.ID}).
			Updates(map[string]interface{}{
				"title":        a.Title,
				"content":      a.Content,
				"is_universal": a.IsUniversal,
				"pdf_url":      a.PDFURL,
			}).Error
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}

		if err := tx.Where("article_id = ?", a.ID).Delete(&articleDatamodel.ArticleCategory{}).Error; err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		if len(a.Categories) == 0 {
			return nil
		}
		for i := range a.Categories {
			a.Categories[i].ID = 0
			a.Categories[i].ArticleID = a.ID
		}
		if err := tx.Create(&a.Categories).Error; err != nil {
			return fmt.Errorf("save categories: %w", err)
		}
		return nil
	})
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&articleDatamodel.ArticleCategory{}).Error; err != nil {
			return fmt.Errorf("delete categories: %w", err)
		}
		res := tx.Delete(&articleDatamodel.LegalArticle{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
