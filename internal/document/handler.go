package document

import (
	"context"
	"net/http"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/auth"
	"github.com/Ilan9903/Juris-IA/internal/transport"
)

type ServiceAPI interface {
	Analyze(ctx context.Context, upload *Upload, question string) (*Analysis, error)
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

// Analyze handles POST /document-analysis/analyze (multipart "documentFile" + "question").
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	upload, err := transport.ParseUpload(w, r, "documentFile", h.Uploads.Dir, h.Uploads.MaxBytes())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	defer func() {
		if err := upload.Remove(); err != nil {
			h.Logger.Warn("failed to remove upload", "error", err)
		}
	}()

	var doc *Upload
	if upload != nil {
		doc = &Upload{Path: upload.Path, ContentType: upload.ContentType, OriginalName: upload.OriginalName}
	}

	analysis, err := h.Service.Analyze(r.Context(), doc, r.FormValue("question"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("document analysis served", "user_id", ac.User.ID)
	h.WriteJSON(w, http.StatusOK, analysis)
}
