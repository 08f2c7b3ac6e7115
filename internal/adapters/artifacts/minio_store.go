package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/ports"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignedURLTTL bounds how long a released-but-cached URL can still be fetched.
const PresignedURLTTL = 15 * time.Minute

// MinIOConfig holds the object storage settings.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Prefix is prepended to every object key.
	Prefix string
}

// MinIOStore keeps rendered documents in S3-compatible object storage and
// hands out presigned GET URLs. Releasing a handle removes the object.
type MinIOStore struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinIOStore(ctx context.Context, cfg MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &MinIOStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinIOStore) objectKey(id string) string {
	return s.prefix + "maps/" + id + ".html"
}

func (s *MinIOStore) Create(ctx context.Context, doc domain.Document) (ports.ArtifactHandle, error) {
	if len(doc.Body) == 0 {
		return nil, fmt.Errorf("create artifact: empty document")
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = domain.DefaultDocumentContentType
	}

	id := uuid.NewString()
	key := s.objectKey(id)

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(doc.Body), int64(len(doc.Body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload artifact %s: %w", key, err)
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, PresignedURLTTL, nil)
	if err != nil {
		// Do not leave an unreachable object behind.
		_ = s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
		return nil, fmt.Errorf("presign artifact %s: %w", key, err)
	}

	return &minioHandle{store: s, id: id, key: key, url: u.String()}, nil
}

type minioHandle struct {
	store    *MinIOStore
	id       string
	key      string
	url      string
	released atomic.Bool
}

func (h *minioHandle) ID() string  { return h.id }
func (h *minioHandle) URL() string { return h.url }

func (h *minioHandle) Release(ctx context.Context) error {
	if !h.released.CompareAndSwap(false, true) {
		return fmt.Errorf("release artifact %s: %w", h.id, ErrReleased)
	}
	if err := h.store.client.RemoveObject(ctx, h.store.bucket, h.key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove artifact %s: %w", h.key, err)
	}
	return nil
}

var _ ports.ArtifactStore = (*MinIOStore)(nil)
