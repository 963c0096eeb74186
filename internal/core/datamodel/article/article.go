package article

import "time"

type LegalArticle struct {
	ID          int64             `gorm:"primaryKey"`
	Title       string            `gorm:"column:title;not null"`
	Content     string            `gorm:"column:content;not null"`
	IsUniversal bool              `gorm:"column:is_universal;not null;default:false"`
	PDFURL      string            `gorm:"column:pdf_url;not null;default:''"`
	Categories  []ArticleCategory `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (LegalArticle) TableName() string {
	return "legal_articles"
}

// ArticleCategory is one tag of an article; position keeps the submitted order.
type ArticleCategory struct {
	ID        int64  `gorm:"primaryKey"`
	ArticleID int64  `gorm:"column:article_id;not null;index"`
	Name      string `gorm:"column:name;not null;index"`
	Position  int    `gorm:"column:position;not null;default:0"`
}

func (ArticleCategory) TableName() string {
	return "article_categories"
}
