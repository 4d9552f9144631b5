// Package storage persists carrier documents to a local directory or an
// object storage bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNoDestination indicates neither a local path nor a bucket is configured.
var ErrNoDestination = errors.New("no document destination configured")

// Store writes named binary documents and returns where they were written.
// Writing a name twice overwrites the previous document.
type Store interface {
	// Put writes data under name and returns its location (path or key).
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Backend returns the backend identifier ("local", "s3", "memory").
	Backend() string
}

// Config selects and configures the document destination.
type Config struct {
	LocalPath string

	S3Bucket          string
	S3Path            string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// New returns the store matching cfg: a configured bucket selects object
// storage, otherwise the local path is used.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch {
	case cfg.S3Bucket != "":
		return NewS3Store(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Path,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	case cfg.LocalPath != "":
		return NewLocalStore(cfg.LocalPath), nil
	default:
		return nil, ErrNoDestination
	}
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".zpl", ".dpl":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

func validateName(name string) error {
	if name == "" || strings.Contains(name, "..") {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}
