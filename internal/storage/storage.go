// Package storage reads catalog documents from the local filesystem or an
// S3-compatible bucket.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for document storage.
type Storage interface {
	// Get retrieves a document by its key.
	// Returns an io.ReadCloser that must be closed by the caller.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks if a document exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// Config selects and configures a backend.
type Config struct {
	// Provider is "local" (default) or "r2".
	Provider string

	// LocalPath is the root directory for the local provider.
	LocalPath string

	R2AccountID   string
	R2AccessKeyID string
	R2SecretKey   string
	R2BucketName  string
}

// NewStorage creates a Storage implementation based on configuration.
// Returns LocalStorage for "local" provider, R2Storage for "r2" provider.
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalStorage(cfg.LocalPath), nil
	case "r2":
		return NewR2Storage(R2Config{
			AccountID:   cfg.R2AccountID,
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretKey,
			BucketName:  cfg.R2BucketName,
		})
	default:
		return nil, ErrUnknownProvider(cfg.Provider)
	}
}
