// Package storage keeps open-house flyers in an S3-compatible bucket. The
// browser uploads and downloads through presigned URLs; this service only
// signs them and checks what landed.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"openhouse_backend/platform/config"

	"github.com/google/uuid"
)

var ErrObjectNotFound = errors.New("object not found")

type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Store is bound to a single bucket.
type Store interface {
	// PresignUpload validates the declared type and size before signing.
	PresignUpload(ctx context.Context, key, contentType string, sizeBytes int64) (*PresignedURL, error)
	// PresignDownload falls back to PresignedURLTTL for a non-positive ttl.
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (*PresignedURL, error)
	// Stat returns ErrObjectNotFound when nothing was uploaded under key.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Remove(ctx context.Context, key string) error
	EnsureBucket(ctx context.Context) error
}

type Config = config.MinIOConfig

// ObjectKey places fileName under folder with a random suffix, so two
// uploads of "flyer.pdf" never overwrite each other. Directory parts of the
// client-supplied name are discarded.
func ObjectKey(folder, fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "" || name == "." || name == "/" {
		name = "flyer"
	}
	return path.Join(folder, fmt.Sprintf("%s_%s%s", name, uuid.NewString()[:8], ext))
}
