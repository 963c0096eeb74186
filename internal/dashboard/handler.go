package dashboard

import (
	"net/http"

	"github.com/Ilan9903/Juris-IA/internal/auth"
	"github.com/Ilan9903/Juris-IA/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: svc}
}

// Dashboard answers GET /admin/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	overview, err := h.Service.Overview(r.Context(), ac)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, overview)
}
