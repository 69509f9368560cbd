package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"shareapi/internal/model"
	"shareapi/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const fileColumns = `id, owner_id, scope, original_name, storage_key, size, content_type, etag, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*model.StoredFile, error) {
	var f model.StoredFile
	if err := s.Scan(
		&f.ID,
		&f.OwnerID,
		&f.Scope,
		&f.OriginalName,
		&f.StorageKey,
		&f.Size,
		&f.ContentType,
		&f.ETag,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.StoredFile) (*model.StoredFile, error) {
	const q = `
		INSERT INTO stored_files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.OwnerID,
		f.Scope,
		f.OriginalName,
		f.StorageKey,
		f.Size,
		f.ContentType,
		f.ETag,
		f.CreatedAt,
	)
	stored, err := scanFile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, repository.ErrDuplicateKey
		}
		return nil, err
	}
	return stored, nil
}

// FindByID fetches a single record. A missing row yields sql.ErrNoRows.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.StoredFile, error) {
	const q = `SELECT ` + fileColumns + ` FROM stored_files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// FindByStorageKey fetches the record for an object key. A missing row yields sql.ErrNoRows.
func (r *FilePostgres) FindByStorageKey(ctx context.Context, key string) (*model.StoredFile, error) {
	const q = `SELECT ` + fileColumns + ` FROM stored_files WHERE storage_key = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, key))
}

// List returns records matching filter using LIMIT/OFFSET pagination and a total count.
func (r *FilePostgres) List(ctx context.Context, filter repository.FileFilter, pq repository.PageQuery) (*repository.PageResult[model.StoredFile], error) {
	const where = `WHERE ($1 = '' OR owner_id = $1) AND ($2 = '' OR scope = $2)`

	const qCount = `SELECT COUNT(*) FROM stored_files ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, filter.OwnerID, filter.Scope).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + fileColumns + ` FROM stored_files ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, qList, filter.OwnerID, filter.Scope, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.StoredFile, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.StoredFile]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a record by ID. It does not return an error if the row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM stored_files WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
