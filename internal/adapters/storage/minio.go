package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	PresignedURLTTL = 15 * time.Minute
	// MaxPresignTTL is the longest expiry S3 signature v4 accepts.
	MaxPresignTTL = 7 * 24 * time.Hour

	// An explicit region keeps presigning local; otherwise minio-go looks up
	// the bucket location first.
	defaultRegion = "us-east-1"
)

type MinIOStore struct {
	client      *minio.Client
	bucket      string
	maxFileSize int64
	now         func() time.Time
}

func NewMinIOStore(cfg Config) (*MinIOStore, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, errors.New("minio is not configured")
	}
	if cfg.GetMinioBucketFlyers() == "" {
		return nil, errors.New("minio flyer bucket is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
		Region: defaultRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinIOStore{
		client:      client,
		bucket:      cfg.GetMinioBucketFlyers(),
		maxFileSize: cfg.GetMinIOMaxFileSize(),
		now:         time.Now,
	}, nil
}

func (s *MinIOStore) Bucket() string { return s.bucket }

func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: defaultRegion}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinIOStore) PresignUpload(ctx context.Context, key, contentType string, sizeBytes int64) (*PresignedURL, error) {
	if err := ValidateContentType(contentType); err != nil {
		return nil, err
	}
	if err := ValidateFileSize(sizeBytes, s.maxFileSize); err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(PresignedURLTTL)
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, PresignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &PresignedURL{URL: u.String(), FileKey: key, ExpiresAt: expiresAt}, nil
}

func (s *MinIOStore) PresignDownload(ctx context.Context, key string, ttl time.Duration) (*PresignedURL, error) {
	ttl = clampTTL(ttl)
	params := make(url.Values)
	params.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", path.Base(key)))

	expiresAt := s.now().Add(ttl)
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, params)
	if err != nil {
		return nil, fmt.Errorf("presign download: %w", err)
	}
	return &PresignedURL{URL: u.String(), FileKey: key, ExpiresAt: expiresAt}, nil
}

func (s *MinIOStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return ObjectInfo{}, ErrObjectNotFound
		}
		return ObjectInfo{}, fmt.Errorf("stat %s: %w", key, err)
	}
	return ObjectInfo{Key: info.Key, Size: info.Size, ContentType: info.ContentType}, nil
}

func (s *MinIOStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func clampTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl <= 0:
		return PresignedURLTTL
	case ttl > MaxPresignTTL:
		return MaxPresignTTL
	default:
		return ttl
	}
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

var _ Store = (*MinIOStore)(nil)
