package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ilan9903/Juris-IA/internal"
)

const (
	FolderUsers    = "juris-ai-users"
	FolderArticles = "juris-ai-articles"

	// DefaultProfileImage is the placeholder avatar; it never lives in the bucket.
	DefaultProfileImage = "/pdp_none.png"
)

// Media maps local uploads to bucket objects and back from their public URLs.
type Media struct {
	store         ObjectStore
	publicURL     string
	presignExpiry time.Duration
	logger        *slog.Logger
}

func NewMedia(store ObjectStore, cfg internal.StorageConfig, logger *slog.Logger) *Media {
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Media{
		store:         store,
		publicURL:     strings.TrimRight(cfg.PublicURL, "/"),
		presignExpiry: expiry,
		logger:        logger,
	}
}

// Upload copies the local file at path into folder and returns its public URL.
func (m *Media) Upload(ctx context.Context, folder, path, contentType string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat upload: %w", err)
	}

	key := folder + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(path))
	if err := m.store.Put(ctx, key, f, info.Size(), contentType); err != nil {
		return "", internal.NewExternalError("Failed to store file", internal.ErrCodeStorage, err)
	}

	m.logger.InfoContext(ctx, "object stored", "key", key, "size", info.Size())
	return m.publicURL + "/" + key, nil
}

// KeyFromURL returns the object key behind one of our public URLs. Foreign URLs,
// empty values and the placeholder avatar yield false.
func (m *Media) KeyFromURL(url string) (string, bool) {
	if url == "" || url == DefaultProfileImage {
		return "", false
	}
	key, ok := strings.CutPrefix(url, m.publicURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// Remove deletes the object behind url. URLs we do not own are ignored.
func (m *Media) Remove(ctx context.Context, url string) error {
	key, ok := m.KeyFromURL(url)
	if !ok {
		return nil
	}
	if err := m.store.Delete(ctx, key); err != nil {
		return internal.NewExternalError("Failed to delete file", internal.ErrCodeStorage, err)
	}
	m.logger.InfoContext(ctx, "object removed", "key", key)
	return nil
}

// PresignURL turns a stored public URL into a time-limited download link.
func (m *Media) PresignURL(ctx context.Context, url string) (string, error) {
	key, ok := m.KeyFromURL(url)
	if !ok {
		return "", internal.NewNotFoundError("File not found", internal.ErrCodeArticleNotFound)
	}
	signed, err := m.store.PresignGet(ctx, key, m.presignExpiry)
	if err != nil {
		return "", internal.NewExternalError("Failed to sign download link", internal.ErrCodeStorage, err)
	}
	return signed, nil
}
