// Package storage is the object storage layer: a capability interface with a
// local filesystem backend and a remote backend that talks to the object store
// over presigned HTTP requests.
package storage

import (
	"context"
	"time"
)

// BackendType names a storage backend variant.
type BackendType string

const (
	BackendLocal  BackendType = "local"
	BackendRemote BackendType = "remote"
)

// DefaultSignedURLExpiry applies when no expiry is configured.
const DefaultSignedURLExpiry = 600 * time.Second

// MaxSignedURLExpiry is the longest lifetime the object store accepts for a presigned URL.
const MaxSignedURLExpiry = 7 * 24 * time.Hour

// ObjectMetadata is what a metadata request learned about an object.
// ContentLength is nil when the size could not be determined.
type ObjectMetadata struct {
	ContentLength *int64 `json:"contentLength,omitempty"`
	ContentType   string `json:"contentType,omitempty"`
	ETag          string `json:"etag,omitempty"`
}

// TemporaryCredentials are short-lived keys scoped to writing one object.
// They are created per request and never persisted.
type TemporaryCredentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	AccessKeySecret string `json:"accessKeySecret"`
	SecurityToken   string `json:"securityToken"`
	Expiration      string `json:"expiration"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	UploadKey       string `json:"uploadKey"`
	ExpiresIn       int64  `json:"expiresIn"`
}

// Storage is the capability set shared by every backend. Implementations are
// safe for concurrent use and hold no mutable state after construction.
//
// An empty contentType means no hint. A zero expires or duration means the
// backend's configured default.
type Storage interface {
	// SaveFile writes data and returns the key actually used.
	SaveFile(ctx context.Context, key string, data []byte, contentType string) (string, error)
	ReadFile(ctx context.Context, key string) ([]byte, error)
	// WriteFile overwrites the object at key.
	WriteFile(ctx context.Context, key string, data []byte, contentType string) error
	// DeleteFile succeeds when the object does not exist.
	DeleteFile(ctx context.Context, key string) error
	FileURL(ctx context.Context, key string, expires time.Duration) (string, error)
	// DownloadURL is like FileURL but asks the client to save the object as filename.
	DownloadURL(ctx context.Context, key, filename string, expires time.Duration) (string, error)
	UploadURL(ctx context.Context, key string, expires time.Duration, contentType string) (string, error)
	HeadFile(ctx context.Context, key string) (ObjectMetadata, error)
	// FileExists never reports a missing object as an error.
	FileExists(ctx context.Context, key string) (bool, error)
	STSToken(ctx context.Context, key string, duration time.Duration) (*TemporaryCredentials, error)
	BackendType() BackendType
	SupportsSTS() bool
	DefaultSignedURLExpiry() time.Duration
}

// compile-time checks
var (
	_ Storage = (*LocalStorage)(nil)
	_ Storage = (*RemoteStorage)(nil)
)
