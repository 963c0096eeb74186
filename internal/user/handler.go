package user

import (
	"context"
	"net/http"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/auth"
	"github.com/Ilan9903/Juris-IA/internal/transport"
)

type ServiceAPI interface {
	UpdateProfile(ctx context.Context, userID int64, dto UpdateProfileDTO, image *Image) (*User, error)
	UpdateStatus(ctx context.Context, userID int64, dto UpdateStatusDTO) (*User, error)
	DeleteAccount(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, actorID int64, dto CreateUserDTO) (*User, error)
	Update(ctx context.Context, actorID, id int64, dto AdminUpdateUserDTO, image *Image) (*User, error)
	Delete(ctx context.Context, actorID, id int64) error
}

// SessionClearer drops the session cookie after the account is gone.
type SessionClearer interface {
	Clear(w http.ResponseWriter)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Session SessionClearer
	Uploads internal.UploadsConfig
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, session SessionClearer, uploads internal.UploadsConfig) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Session:     session,
		Uploads:     uploads,
	}
}

// UpdateProfile handles PUT /user/updateprofile (multipart, optional file field "profile").
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	var dto UpdateProfileDTO
	upload, err := h.readForm(w, r, "profile", &dto, func() {
		dto.Name = r.FormValue("name")
		dto.Email = r.FormValue("email")
		dto.Status = r.FormValue("status")
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	defer h.cleanup(upload)

	u, err := h.Service.UpdateProfile(r.Context(), ac.User.ID, dto, imageOf(upload))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UserResponse{Message: "Profile updated", User: u})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	var dto UpdateStatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.UpdateStatus(r.Context(), ac.User.ID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UserResponse{Message: "Status updated", User: u})
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	if err := h.Service.DeleteAccount(r.Context(), ac.User.ID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.Session.Clear(w)
	h.WriteMessage(w, http.StatusOK, "Account deleted")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UsersResponse{Message: "OK", Users: users})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UserResponse{Message: "OK", User: u})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	var dto CreateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Create(r.Context(), ac.User.ID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, UserResponse{Message: "User created", User: u})
}

// Update handles PUT /admin/user/{id} (JSON or multipart with optional file field "image").
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto AdminUpdateUserDTO
	upload, err := h.readForm(w, r, "image", &dto, func() {
		dto.Name = r.FormValue("name")
		dto.Email = r.FormValue("email")
		dto.Role = r.FormValue("role")
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	defer h.cleanup(upload)

	u, err := h.Service.Update(r.Context(), ac.User.ID, id, dto, imageOf(upload))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UserResponse{Message: "User updated", User: u})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ac auth.AuthContext) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), ac.User.ID, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "User deleted")
}

// readForm fills dto from a JSON body, or from multipart values via fromForm while keeping the file in field.
func (h *Handler) readForm(w http.ResponseWriter, r *http.Request, field string, dto interface{}, fromForm func()) (*transport.Upload, error) {
	if !transport.IsMultipart(r) {
		return nil, h.DecodeJSON(r, dto)
	}
	upload, err := transport.ParseUpload(w, r, field, h.Uploads.Dir, h.Uploads.MaxBytes())
	if err != nil {
		return nil, err
	}
	fromForm()
	return upload, nil
}

func (h *Handler) cleanup(upload *transport.Upload) {
	if err := upload.Remove(); err != nil {
		h.Logger.Warn("failed to remove upload", "error", err)
	}
}

func imageOf(upload *transport.Upload) *Image {
	if upload == nil {
		return nil
	}
	return &Image{Path: upload.Path, ContentType: upload.ContentType}
}
