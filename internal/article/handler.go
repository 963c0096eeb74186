package article

import (
	"context"
	"net/http"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	AdminList(ctx context.Context) ([]*Article, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int64) (*Article, error)
	Create(ctx context.Context, dto CreateArticleDTO) (*Article, error)
	Update(ctx context.Context, id int64, dto UpdateArticleDTO) (*Article, error)
	Delete(ctx context.Context, id int64) error
	AttachPDF(ctx context.Context, id int64, file *File) (*Article, error)
	PDFLink(ctx context.Context, id int64) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Uploads internal.UploadsConfig
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, uploads internal.UploadsConfig) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Uploads:     uploads,
	}
}

// List handles GET /articles?category=&search=&page=&limit=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	result, err := h.Service.List(r.Context(), ListQuery{
		Category: values.Get("category"),
		Search:   values.Get("search"),
		Page:     values.Get("page"),
		Limit:    values.Get("limit"),
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if result.Carousel {
		h.WriteJSON(w, http.StatusOK, result.Articles)
		return
	}

	message := "Articles retrieved"
	if len(result.Articles) == 0 {
		message = "No articles found"
	}
	h.WriteJSON(w, http.StatusOK, ArticlePage{
		Message:       message,
		Articles:      result.Articles,
		CurrentPage:   result.CurrentPage,
		TotalPages:    result.TotalPages,
		TotalArticles: result.TotalArticles,
	})
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	articles, err := h.Service.AdminList(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ArticlesResponse{Message: "OK", Articles: articles})
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.Categories(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	message := "Categories retrieved"
	if len(categories) == 0 {
		message = "No categories found"
	}
	h.WriteJSON(w, http.StatusOK, CategoriesResponse{Message: message, Categories: categories})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	a, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateArticleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	a, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateArticleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	a, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Article deleted")
}

// UploadPDF handles PUT /articles/{id}/pdf with multipart field "pdf".
func (h *Handler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	upload, err := transport.ParseUpload(w, r, "pdf", h.Uploads.Dir, h.Uploads.MaxBytes())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	defer func() {
		if err := upload.Remove(); err != nil {
			h.Logger.Warn("failed to remove upload", "error", err)
		}
	}()

	var file *File
	if upload != nil {
		file = &File{Path: upload.Path, ContentType: upload.ContentType}
	}

	a, err := h.Service.AttachPDF(r.Context(), id, file)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

// DownloadPDF redirects to a presigned object URL.
func (h *Handler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	link, err := h.Service.PDFLink(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}
