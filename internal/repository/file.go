package repository

import (
	"context"
	"errors"

	"shareapi/internal/model"
)

// ErrDuplicateKey is returned by Create when another record already owns the storage key.
var ErrDuplicateKey = errors.New("storage key already recorded")

// FileRepository defines data access for stored file records using SQL queries only.
type FileRepository interface {
	// Create inserts a new record. The caller provides ID and CreatedAt.
	// Returns the stored record as read back from the database, or ErrDuplicateKey.
	Create(ctx context.Context, f *model.StoredFile) (*model.StoredFile, error)

	// FindByID returns a record by its ID.
	FindByID(ctx context.Context, id string) (*model.StoredFile, error)

	// FindByStorageKey returns the record that owns key.
	FindByStorageKey(ctx context.Context, key string) (*model.StoredFile, error)

	// List returns a page of records and the total row count for the filter.
	List(ctx context.Context, filter FileFilter, pq PageQuery) (*PageResult[model.StoredFile], error)

	// Delete removes a record by ID. It returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}

// FileFilter narrows List. Empty fields match everything.
type FileFilter struct {
	OwnerID string
	Scope   string
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
