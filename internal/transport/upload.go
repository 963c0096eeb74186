package transport

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/google/uuid"
)

const multipartMemory = 1 << 20

// Upload is a multipart file copied into the uploads directory. Callers own it and must
// call Remove on every exit path.
type Upload struct {
	Path         string
	OriginalName string
	ContentType  string
	Size         int64

	form *multipart.Form
}

// ParseUpload parses a multipart request and stores the file sent under field.
// It returns (nil, nil) when the request carries no such file.
func ParseUpload(w http.ResponseWriter, r *http.Request, field, dir string, maxBytes int64) (*Upload, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, internal.NewValidationError(fmt.Sprintf("file exceeds %d bytes", tooLarge.Limit), internal.ErrCodeValidationFailed)
		}
		return nil, internal.NewValidationError("invalid multipart body", internal.ErrCodeValidationFailed).WithCause(err)
	}

	upload, err := storeFormFile(r, field, dir)
	if upload == nil {
		_ = r.MultipartForm.RemoveAll()
	}
	return upload, err
}

func storeFormFile(r *http.Request, field, dir string) (*Upload, error) {
	src, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, internal.NewValidationError("invalid multipart file", internal.ErrCodeValidationFailed).WithCause(err)
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(header.Filename)))
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	size, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload file: %w", errors.Join(copyErr, closeErr))
	}

	return &Upload{
		Path:         path,
		OriginalName: header.Filename,
		ContentType:  detectContentType(header),
		Size:         size,
		form:         r.MultipartForm,
	}, nil
}

// IsMultipart reports whether r carries a multipart/form-data body.
func IsMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// Remove deletes the stored file and any multipart spill files. Safe on nil.
func (u *Upload) Remove() error {
	if u == nil {
		return nil
	}
	var errs []error
	if err := os.Remove(u.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, err)
	}
	if u.form != nil {
		errs = append(errs, u.form.RemoveAll())
	}
	return errors.Join(errs...)
}

func detectContentType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil && mediaType != "application/octet-stream" {
		return mediaType
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType
		}
	}
	return "application/octet-stream"
}
