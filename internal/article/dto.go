package article

import (
	"strconv"
	"strings"

	"github.com/Ilan9903/Juris-IA/internal/core/common/validation"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type CreateArticleDTO struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    []string `json:"category"`
	IsUniversal bool     `json:"isUniversal"`
}

func (d *CreateArticleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(300)
	v.Field("content", d.Content).Required()
	return validation.AsError(v.Validate())
}

// UpdateArticleDTO only touches the fields present in the body.
type UpdateArticleDTO struct {
	Title       *string   `json:"title"`
	Content     *string   `json:"content"`
	Category    *[]string `json:"category"`
	IsUniversal *bool     `json:"isUniversal"`
}

func (d *UpdateArticleDTO) Validate() error {
	v := validation.NewValidator()
	if d.Title != nil {
		v.Field("title", *d.Title).Required().MaxLength(300)
	}
	if d.Content != nil {
		v.Field("content", *d.Content).Required()
	}
	return validation.AsError(v.Validate())
}

// ListQuery holds the raw query string values of GET /articles.
type ListQuery struct {
	Category string
	Search   string
	Page     string
	Limit    string
}

func (q *ListQuery) Validate() error {
	v := validation.NewValidator()
	v.Field("page", q.Page).MinInt(1)
	v.Field("limit", q.Limit).MinInt(1)
	return validation.AsError(v.Validate())
}

// IsCarousel is true for a bare "latest N" request: limit without page or search.
func (q *ListQuery) IsCarousel() bool {
	return q.Limit != "" && q.Page == "" && strings.TrimSpace(q.Search) == ""
}

func (q *ListQuery) PageNumber() int {
	return intOr(q.Page, DefaultPage)
}

// PageSize is the requested limit, capped at MaxLimit.
func (q *ListQuery) PageSize() int {
	return min(intOr(q.Limit, DefaultLimit), MaxLimit)
}

func intOr(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Filter is what repositories match against.
type Filter struct {
	Category string
	Search   string
	Offset   int
	Limit    int
}

type ListResult struct {
	Carousel      bool
	Articles      []*Article
	CurrentPage   int
	TotalPages    int
	TotalArticles int64
}

type ArticlePage struct {
	Message       string     `json:"message"`
	Articles      []*Article `json:"articles"`
	CurrentPage   int        `json:"currentPage"`
	TotalPages    int        `json:"totalPages"`
	TotalArticles int64      `json:"totalArticles"`
}

type CategoriesResponse struct {
	Message    string   `json:"message"`
	Categories []string `json:"categories"`
}

type ArticlesResponse struct {
	Message  string     `json:"message"`
	Articles []*Article `json:"articles"`
}
