// Package storage abstracts where uploaded media bytes live. The server only
// depends on Uploader, so a blob-store implementation can replace the local
// one without touching handlers.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"commune/internal/models"

	"github.com/google/uuid"
)

// Uploader stores a blob and returns a URL clients can fetch it from.
type Uploader interface {
	Upload(ctx context.Context, data []byte, name string) (string, error)
}

const maxUploadSize = 10 * 1024 * 1024

// LocalUploader writes media to a directory served as static files.
type LocalUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader creates the media directory if needed.
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload writes data under a random object key, keeping the original
// extension so content types stay guessable.
func (u *LocalUploader) Upload(ctx context.Context, data []byte, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", models.NewValidationError("empty upload")
	}
	if len(data) > maxUploadSize {
		return "", models.NewValidationError("upload exceeds size limit")
	}

	ext := strings.ToLower(filepath.Ext(name))
	key := uuid.NewString() + ext
	dest := filepath.Join(u.dir, key)

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", models.NewExternalError("media write", err)
	}
	return u.baseURL + "/" + path.Join("media", key), nil
}
