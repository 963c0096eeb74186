package article

import (
	"strings"
	"time"

	articleDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/article"
)

type Article struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    []string  `json:"category"`
	IsUniversal bool      `json:"isUniversal"`
	PDFURL      string    `json:"pdfUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func FromDataModel(a *articleDatamodel.LegalArticle) *Article {
	categories := make([]string, 0, len(a.Categories))
	for _, c := range a.Categories {
		categories = append(categories, c.Name)
	}
	return &Article{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Category:    categories,
		IsUniversal: a.IsUniversal,
		PDFURL:      a.PDFURL,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func ToDataModel(a *Article) *articleDatamodel.LegalArticle {
	return &articleDatamodel.LegalArticle{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		IsUniversal: a.IsUniversal,
		PDFURL:      a.PDFURL,
		Categories:  categoryRows(a.ID, a.Category),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func categoryRows(articleID int64, names []string) []articleDatamodel.ArticleCategory {
	rows := make([]articleDatamodel.ArticleCategory, 0, len(names))
	for i, name := range names {
		rows = append(rows, articleDatamodel.ArticleCategory{ArticleID: articleID, Name: name, Position: i})
	}
	return rows
}

// NormalizeCategories trims tags and drops empty and repeated ones, keeping the first occurrence.
func NormalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
