package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/pkg/logger"
	"github.com/go-chi/chi"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteMessage writes the {"message": ...} acknowledgement used by most mutations.
func (h *BaseHandler) WriteMessage(w http.ResponseWriter, status int, message string) {
	h.WriteJSON(w, status, map[string]string{"message": message})
}

// WriteError writes an error response for failures that never reached a service.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Warn("http error", "status", status, "message", message)
	h.WriteJSON(w, status, internal.Response{Error: &internal.AppError{
		Type:       errorTypeFor(status),
		Code:       internal.ErrorCode(strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))),
		Message:    message,
		StatusCode: status,
	}})
}

// HandleServiceError maps any service error to the AppError JSON envelope.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.NewInternalError("Internal server error", err)
	}

	lg := logger.From(r.Context())
	if appErr.StatusCode >= http.StatusInternalServerError {
		lg.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		lg.Warn("request rejected", "path", r.URL.Path, "status", appErr.StatusCode, "code", appErr.Code, "message", appErr.GetDetailedMessage())
	}

	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// DecodeJSON decodes the request body into dst, producing a 400 AppError on malformed input.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
	}
	return nil
}

// PathInt64 parses a numeric chi URL parameter.
func (h *BaseHandler) PathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.ErrInvalidID.WithCause(errors.New(raw))
	}
	return id, nil
}

func errorTypeFor(status int) internal.ErrorType {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return internal.ErrorTypeValidation
	case http.StatusUnauthorized:
		return internal.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return internal.ErrorTypeForbidden
	case http.StatusNotFound:
		return internal.ErrorTypeNotFound
	case http.StatusConflict:
		return internal.ErrorTypeConflict
	case http.StatusTooManyRequests:
		return internal.ErrorTypeRateLimited
	}
	return internal.ErrorTypeInternal
}
