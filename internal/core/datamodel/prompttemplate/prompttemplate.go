package prompttemplate

import (
	"time"

	userDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/user"
)

type PromptTemplate struct {
	ID              int64               `gorm:"primaryKey"`
	Name            string              `gorm:"column:name;uniqueIndex;not null"`
	Content         string              `gorm:"column:content;not null"`
	Description     string              `gorm:"column:description"`
	Category        string              `gorm:"column:category"`
	Status          string              `gorm:"column:status;not null;default:draft"`
	CreatedByID     *int64              `gorm:"column:created_by"`
	LastUpdatedByID *int64              `gorm:"column:last_updated_by"`
	CreatedBy       *userDatamodel.User `gorm:"foreignKey:CreatedByID"`
	LastUpdatedBy   *userDatamodel.User `gorm:"foreignKey:LastUpdatedByID"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (PromptTemplate) TableName() string {
	return "prompt_templates"
}
