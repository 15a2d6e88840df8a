package gcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/ctxutil"
	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/pkg/logger"
)

// Bucket fetches uploaded candidate documents (resumes) by storage key.
type Bucket interface {
	Download(ctx context.Context, objectKey string) ([]byte, string, error)
	Close() error
}

type bucketService struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

func NewBucket(log *logger.Logger) (Bucket, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	name := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if name == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET")
	}

	ctx := context.Background()
	c, err := storage.NewClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	return &bucketService{
		log:    log.With("service", "gcp.Bucket"),
		client: c,
		bucket: name,
	}, nil
}

func (b *bucketService) Download(ctx context.Context, objectKey string) ([]byte, string, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	objectKey = strings.TrimPrefix(strings.TrimSpace(objectKey), "/")
	if objectKey == "" {
		return nil, "", fmt.Errorf("missing object key")
	}

	obj := b.client.Bucket(b.bucket).Object(objectKey)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("object attrs %q: %w", objectKey, err)
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("object reader %q: %w", objectKey, err)
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("object read %q: %w", objectKey, err)
	}
	return raw, attrs.ContentType, nil
}

func (b *bucketService) Close() error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Close()
}
