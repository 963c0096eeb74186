package prompttemplate

import (
	"context"
	"net/http"

	"github.com/Ilan9903/Juris-IA/internal/auth"
	"github.com/Ilan9903/Juris-IA/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*PromptTemplate, error)
	Get(ctx context.Context, id int64) (*PromptTemplate, error)
	Create(ctx context.Context, actorID int64, dto CreatePromptDTO) (*PromptTemplate, error)
	Update(ctx context.Context, actorID, id int64, dto UpdatePromptDTO) (*PromptTemplate, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	var dto CreatePromptDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	prompt, err := h.Service.Create(r.Context(), ac.User.ID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, PromptResponse{Message: "Prompt created", Prompt: prompt})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PromptsResponse{Message: "OK", Prompts: prompts})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	prompt, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PromptResponse{Message: "OK", Prompt: prompt})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	var dto UpdatePromptDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	prompt, err := h.Service.Update(r.Context(), ac.User.ID, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PromptResponse{Message: "Prompt updated", Prompt: prompt})
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
	h.WriteMessage(w, http.StatusOK, "Prompt deleted")
}
