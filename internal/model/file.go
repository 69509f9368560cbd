package model

import "time"

// File scopes. Each scope is a key prefix in the object store and carries its own size limit.
const (
	ScopeResources = "resources"
	ScopeImages    = "images"
)

// StoredFile is the database record of an object held by the storage backend.
type StoredFile struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Scope        string    `json:"scope"`
	OriginalName string    `json:"original_name"`
	StorageKey   string    `json:"storage_key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
