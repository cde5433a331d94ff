package storage

import (
	"fmt"

	"github.com/dukerupert/shopcore/internal/domain"
)

// ============================================================================
// STORAGE DOMAIN ERRORS
// ============================================================================

var (
	// ErrR2AccountIDRequired is returned when R2 account ID is missing.
	ErrR2AccountIDRequired = domain.Errorf(domain.EINVALID, "storage.r2", "R2 account ID is required")

	// ErrR2CredentialsRequired is returned when R2 credentials are missing.
	ErrR2CredentialsRequired = domain.Errorf(domain.EINVALID, "storage.r2", "R2 credentials are required")

	// ErrR2BucketRequired is returned when R2 bucket name is missing.
	ErrR2BucketRequired = domain.Errorf(domain.EINVALID, "storage.r2", "R2 bucket name is required")
)

// ErrFileNotFound creates an error for when a document is not found.
func ErrFileNotFound(key string) error {
	return domain.NotFound("storage.get", "document", key)
}

// ErrUnknownProvider creates an error for unknown storage providers.
func ErrUnknownProvider(provider string) error {
	return domain.Invalid("storage.new", fmt.Sprintf("unknown storage provider: %s", provider))
}
