package conversation

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/Ilan9903/Juris-IA/internal/auth"
	"github.com/Ilan9903/Juris-IA/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, userID int64) (*Conversation, error)
	List(ctx context.Context, userID int64) ([]Summary, error)
	Get(ctx context.Context, userID int64, conversationID string) (*Conversation, []Message, error)
	Delete(ctx context.Context, userID int64, conversationID string) error
	SendMessage(ctx context.Context, userID int64, conversationID string, dto SendMessageDTO) (*SendResult, error)
	StartAndSend(ctx context.Context, userID int64, dto SendMessageDTO) (*SendResult, error)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	summaries, err := h.Service.List(r.Context(), ac.User.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ConversationsResponse{Conversations: summaries})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	conv, err := h.Service.Create(r.Context(), ac.User.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, conv.Summary())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	conv, messages, err := h.Service.Get(r.Context(), ac.User.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ConversationResponse{ID: conv.ID, Title: conv.Title, Messages: messages})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	if err := h.Service.Delete(r.Context(), ac.User.ID, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Conversation deleted")
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	var dto SendMessageDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.SendMessage(r.Context(), ac.User.ID, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// New handles POST /chat/new.
func (h *Handler) New(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	var dto SendMessageDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.StartAndSend(r.Context(), ac.User.ID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, result)
}
