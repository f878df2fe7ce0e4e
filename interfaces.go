// Package shopstate defines interfaces for storage, caching, and encryption used by the state stores.
package shopstate

import (
	"context"
	"time"
)

// Storage defines the methods required for a durable storage backend.
// A backend holds one opaque blob per (profileID, namespace) pair.
type Storage interface {
	// Load returns the blob stored under namespace, or ErrNotFound.
	Load(ctx context.Context, profileID, namespace string) ([]byte, error)
	Save(ctx context.Context, profileID, namespace string, data []byte) error
	Delete(ctx context.Context, profileID, namespace string) error
	// Namespaces lists the namespaces holding a blob for profileID.
	Namespaces(ctx context.Context, profileID string) ([]string, error)
	Close() error
}

// Cache defines the methods required for a caching backend.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Encryptor encrypts persisted blobs at rest.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encrypted string) (string, error)
}
