package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"fileapi/internal/config"
)

// Package storage contains object storage abstractions for S3-compatible stores.
// Implementations rely on streaming I/O only and never touch local disk.

// ErrBucketMissing is returned by Ping when the configured bucket does not exist.
var ErrBucketMissing = errors.New("bucket does not exist")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// StatStatus tells whether a stat call located the object.
type StatStatus int

const (
	StatNotFound StatStatus = iota
	StatFound
)

func (s StatStatus) String() string {
	if s == StatFound {
		return "found"
	}
	return "not_found"
}

// StatResult is the outcome of a successful stat call. A missing object is a
// StatNotFound result, never an error; errors are reserved for failed calls.
type StatResult struct {
	Status StatStatus
	Info   ObjectInfo
}

// Exists reports whether the object was found.
func (r StatResult) Exists() bool { return r.Status == StatFound }

// Found builds a StatFound result.
func Found(info ObjectInfo) StatResult { return StatResult{Status: StatFound, Info: info} }

// NotFound builds a StatNotFound result for key.
func NotFound(key string) StatResult {
	return StatResult{Status: StatNotFound, Info: ObjectInfo{Key: key}}
}

// Storage is a reusable, S3-compatible object storage client interface bound to one bucket.
// Implementations are safe for concurrent use.
type Storage interface {
	// Put uploads an object under the given key, overwriting any existing object.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Stat reads object metadata without fetching its content.
	Stat(ctx context.Context, key string) (StatResult, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Ping checks that the store is reachable and the bucket exists.
	Ping(ctx context.Context) error
}

// New builds the client selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "minio":
		return NewMinIO(ctx, cfg)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func validate(cfg config.StorageConfig) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("storage endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return fmt.Errorf("storage credentials are required")
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	return nil
}

// tracedTransport wraps base so every storage request carries a client span.
func tracedTransport(base http.RoundTripper) http.RoundTripper {
	return otelhttp.NewTransport(base,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "storage " + r.Method
		}),
	)
}
