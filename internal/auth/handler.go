package auth

import (
	"errors"
	"net/http"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/transport"
	"github.com/Ilan9903/Juris-IA/pkg/logger"
)

type SessionAPI interface {
	Write(w http.ResponseWriter, token string) error
	Read(r *http.Request) (string, error)
	Clear(w http.ResponseWriter)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Session SessionAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, session SessionAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Session:     session,
	}
}

// AuthenticatedHandlerFunc receives the resolved caller explicitly.
type AuthenticatedHandlerFunc func(w http.ResponseWriter, r *http.Request, ac AuthContext)

// Authenticated adapts fn to a plain handler; requests that did not pass AuthMiddleware get a 401.
func Authenticated(fn AuthenticatedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac, ok := FromContext(r.Context())
		if !ok {
			transport.NewBaseHandler(logger.From(r.Context())).HandleServiceError(w, r, internal.ErrMissingToken)
			return
		}
		fn(w, r, *ac)
	}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var dto SignupDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, token, err := h.Service.Signup(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Session.Write(w, token); err != nil {
		h.HandleServiceError(w, r, internal.NewInternalError("failed to set session cookie", err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, AuthResponse{Message: "OK", Profile: u.Profile()})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, token, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Session.Write(w, token); err != nil {
		h.HandleServiceError(w, r, internal.NewInternalError("failed to set session cookie", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, AuthResponse{Message: "Login successful", Profile: u.Profile()})
}

// Status answers GET /user/auth-status and marks the caller online.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request, ac AuthContext) {
	if err := h.Service.MarkOnline(r.Context(), &ac.User); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, StatusResponse{Message: "Authenticated", User: ac.User.Profile()})
}

func (h *Handler) AdminStatus(w http.ResponseWriter, r *http.Request, ac AuthContext) {
	h.WriteJSON(w, http.StatusOK, StatusResponse{Message: "Authenticated", User: ac.Profile()})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, ac AuthContext) {
	if err := h.Service.Logout(r.Context(), ac.User.ID); err != nil {
		h.Logger.Warn("Logout: failed to update status", "user_id", ac.User.ID, "error", err)
	}
	h.Session.Clear(w)
	h.WriteMessage(w, http.StatusOK, "Logged out")
}

func (h *Handler) VerifyPassword(w http.ResponseWriter, r *http.Request, ac AuthContext) {
	var dto VerifyPasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if err := h.Service.VerifyPassword(r.Context(), ac.User.ID, dto.Password); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Password verified")
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request, ac AuthContext) {
	var dto ChangePasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if err := h.Service.ChangePassword(r.Context(), ac.User.ID, dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "Password updated")
}

// AuthMiddleware resolves the session cookie into an AuthContext. Invalid or expired
// tokens, and tokens of deleted users, also clear the cookie.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := h.Session.Read(r)
		if err != nil {
			if !errors.Is(err, internal.ErrMissingToken) {
				h.Session.Clear(w)
			}
			h.HandleServiceError(w, r, err)
			return
		}

		ac, err := h.Service.Resolve(r.Context(), token)
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeUnauthorized {
				h.Session.Clear(w)
			}
			h.HandleServiceError(w, r, err)
			return
		}

		ctx := logger.With(r.Context(), "user_id", ac.User.ID)
		ctx = WithAuthContext(ctx, ac)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
