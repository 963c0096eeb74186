package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail      ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidStatus     ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidRole       ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidPermission ErrorCode = "INVALID_PERMISSION"
	ErrCodeInvalidID         ErrorCode = "INVALID_ID"
	ErrCodeMissingFile       ErrorCode = "MISSING_FILE"
	ErrCodeUnsupportedFile   ErrorCode = "UNSUPPORTED_FILE"
	ErrCodeEmptyDocument     ErrorCode = "EMPTY_DOCUMENT"

	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeConversationNotFound ErrorCode = "CONVERSATION_NOT_FOUND"
	ErrCodeArticleNotFound      ErrorCode = "ARTICLE_NOT_FOUND"
	ErrCodePromptNotFound       ErrorCode = "PROMPT_NOT_FOUND"

	ErrCodeEmailTaken      ErrorCode = "EMAIL_TAKEN"
	ErrCodePromptNameTaken ErrorCode = "PROMPT_NAME_TAKEN"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeMissingToken       ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInsufficientPerms  ErrorCode = "INSUFFICIENT_PERMISSIONS"
	ErrCodeSelfModification   ErrorCode = "SELF_MODIFICATION"

	ErrCodeRateLimited ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeStorage     ErrorCode = "STORAGE_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so sentinel errors survive wrapping.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewUnprocessableError carries a list of field errors from body or query validation.
func NewUnprocessableError(errs []ValidationError) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusUnprocessableEntity,
		Details:    ValidationErrors{Errors: errs},
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return NewUnprocessableError([]ValidationError{
		{Field: field, Message: message, Code: string(code)},
	})
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       ErrCodeRateLimited,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewExternalError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrUserNotFound         = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrConversationNotFound = NewNotFoundError("Conversation not found", ErrCodeConversationNotFound)
	ErrArticleNotFound      = NewNotFoundError("Article not found", ErrCodeArticleNotFound)
	ErrPromptNotFound       = NewNotFoundError("Prompt template not found", ErrCodePromptNotFound)

	ErrEmailTaken      = NewConflictError("A user with this email already exists", ErrCodeEmailTaken)
	ErrPromptNameTaken = NewConflictError("A prompt template with this name already exists", ErrCodePromptNameTaken)

	ErrInvalidCredentials = NewUnauthorizedError("Incorrect password", ErrCodeInvalidCredentials)
	ErrMissingToken       = NewUnauthorizedError("Token not received", ErrCodeMissingToken)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrInsufficientPerms  = NewForbiddenError("Forbidden: insufficient permissions", ErrCodeInsufficientPerms)

	ErrInvalidStatus = NewValidationError("Invalid status. Allowed: online, idle, offline", ErrCodeInvalidStatus)
	ErrInvalidRole   = NewValidationError("Invalid role. Allowed: user, redacteur, admin", ErrCodeInvalidRole)
	ErrInvalidID     = NewValidationError("Invalid identifier", ErrCodeInvalidID)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
		Cause   string      `json:"cause,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   causeText(e),
	})
}

// causeText exposes the underlying error only for unanticipated failures.
func causeText(e *AppError) string {
	if e.Type != ErrorTypeInternal || e.Cause == nil {
		return ""
	}
	return e.Cause.Error()
}
