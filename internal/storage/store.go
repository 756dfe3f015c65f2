// Package storage persists benchmark report artifacts in object storage.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/benchkit/pkg/config"
)

// ArtifactStore is the interface for report artifact storage backends.
type ArtifactStore interface {
	// Put writes data from reader under the given key.
	Put(ctx context.Context, key string, reader io.Reader) error

	// PutFile uploads a local file under the given key.
	PutFile(ctx context.Context, key string, localPath string) error

	// Get opens the artifact stored under key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the artifact stored under key.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an artifact is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the address of the artifact under key.
	URL(key string) string
}

// StoreType represents the storage backend.
type StoreType string

const (
	StoreTypeLocal StoreType = "local"
	StoreTypeCOS   StoreType = "cos"
)

// NewStore creates an ArtifactStore based on the configuration.
func NewStore(cfg *config.StorageConfig) (ArtifactStore, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	switch StoreType(cfg.Type) {
	case StoreTypeCOS:
		return NewCOSStore(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	default:
		return NewLocalStore(cfg.LocalPath)
	}
}

// ValidateConfig validates the storage configuration.
func ValidateConfig(cfg *config.StorageConfig) error {
	if cfg == nil {
		return fmt.Errorf("storage config is nil")
	}

	storeType := StoreType(cfg.Type)

	// Empty type defaults to local
	if storeType == "" {
		storeType = StoreTypeLocal
	}

	if storeType != StoreTypeCOS && storeType != StoreTypeLocal {
		return fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}

	if storeType == StoreTypeCOS {
		if cfg.Bucket == "" {
			return fmt.Errorf("COS bucket is required")
		}
		if cfg.Region == "" {
			return fmt.Errorf("COS region is required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return fmt.Errorf("COS credentials are required")
		}
	}

	if storeType == StoreTypeLocal && cfg.LocalPath == "" {
		return fmt.Errorf("local storage path is required")
	}

	return nil
}

// RunKey builds the canonical object key for a run artifact.
func RunKey(runUUID, filename string) string {
	return fmt.Sprintf("runs/%s/%s", runUUID, filename)
}
