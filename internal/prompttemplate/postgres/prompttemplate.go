package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ilan9903/Juris-IA/internal"
	promptDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/prompttemplate"
	"github.com/Ilan9903/Juris-IA/internal/prompttemplate"
)

type PromptTemplateRepository struct {
	db *gorm.DB
}

func NewPromptTemplateRepository(db *gorm.DB) prompttemplate.RepositoryAPI {
	return &PromptTemplateRepository{db: db}
}

func (r *PromptTemplateRepository) withAuthors(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("CreatedBy").Preload("LastUpdatedBy")
}

func (r *PromptTemplateRepository) GetAll(ctx context.Context) ([]*promptDatamodel.PromptTemplate, error) {
	var prompts []*promptDatamodel.PromptTemplate
	err := r.withAuthors(ctx).Order("created_at DESC").Order("id DESC").Find(&prompts).Error
	return prompts, err
}

func (r *PromptTemplateRepository) GetByID(ctx context.Context, id int64) (*promptDatamodel.PromptTemplate, error) {
	return r.first(r.withAuthors(ctx).Where("id = ?", id))
}

func (r *PromptTemplateRepository) GetByName(ctx context.Context, name string) (*promptDatamodel.PromptTemplate, error) {
	return r.first(r.db.WithContext(ctx).Where("name = ?", name))
}

// FindPublished picks the most recently updated published row when several match.
func (r *PromptTemplateRepository) FindPublished(ctx context.Context, name string) (*promptDatamodel.PromptTemplate, error) {
	return r.first(r.db.WithContext(ctx).
		Where("name = ? AND status = ?", name, string(prompttemplate.StatusPublished)).
		Order("updated_at DESC").
		Order("id DESC"))
}

func (r *PromptTemplateRepository) Create(ctx context.Context, p *promptDatamodel.PromptTemplate) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrPromptNameTaken
	}
	return err
}

func (r *PromptTemplateRepository) Update(ctx context.Context, p *promptDatamodel.PromptTemplate) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrPromptNameTaken
	}
	return err
}

func (r *PromptTemplateRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&promptDatamodel.PromptTemplate{})
	return res.RowsAffected > 0, res.Error
}

func (r *PromptTemplateRepository) first(q *gorm.DB) (*promptDatamodel.PromptTemplate, error) {
	var p promptDatamodel.PromptTemplate
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
