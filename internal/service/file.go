package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shareapi/internal/model"
	"shareapi/internal/repository"
	"shareapi/internal/storage"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrNotFound         = errors.New("file not found")
	ErrReaderNil        = errors.New("reader is nil")
	ErrFileNameRequired = errors.New("file name is required")
	ErrInvalidScope     = errors.New("scope must be resources or images")
	ErrKeyOutOfScope    = errors.New("key is outside the allowed scope")
	ErrFileTooLarge     = errors.New("file exceeds the size limit")
	ErrEmptyFile        = errors.New("file is empty")
	ErrUnsupportedMode  = errors.New("operation requires the remote storage backend")
	ErrUploadMissing    = errors.New("uploaded object is missing or inaccessible")
	ErrUnsupportedType  = errors.New("file type is not allowed in this scope")
	ErrSizeUnknown      = errors.New("uploaded object size is unknown")
	ErrAlreadyRecorded  = errors.New("object is already recorded")
)

// Upload modes returned with an upload credential.
const (
	UploadModeSTS       = "sts"
	UploadModeSignedURL = "signed_url"
)

// UploadInput describes a server-mediated upload.
type UploadInput struct {
	OwnerID     string
	Scope       string
	FileName    string
	ContentType string
	// Size is the declared size; it is checked before reading when positive.
	Size   int64
	Reader io.Reader
}

// CredentialInput describes a client that wants to upload straight to the object store.
type CredentialInput struct {
	OwnerID     string
	Scope       string
	FileName    string
	ContentType string
	Size        *int64
}

// UploadCredential tells the client how to upload. Exactly one of UploadURL
// and Credentials is set, matching UploadMode.
type UploadCredential struct {
	UploadMode     string                        `json:"uploadMode"`
	UploadKey      string                        `json:"uploadKey"`
	ExpiresIn      int64                         `json:"expiresIn"`
	StorageBackend string                        `json:"storageBackend"`
	UploadURL      string                        `json:"uploadUrl,omitempty"`
	Credentials    *storage.TemporaryCredentials `json:"credentials,omitempty"`
}

// ConfirmInput is the upload callback: the client reports the key it wrote.
type ConfirmInput struct {
	OwnerID      string
	Scope        string
	Key          string
	OriginalName string
}

// FileListResult is the service-level DTO for paginated files.
type FileListResult struct {
	Items []model.StoredFile `json:"data"`
	Total int                `json:"total"`
}

// StorageStatus describes the active backend to clients.
type StorageStatus struct {
	StorageBackend  string `json:"storageBackend"`
	STSEnabled      bool   `json:"stsEnabled"`
	SignedURLExpiry int64  `json:"signedUrlExpiry"`
}

// FileService defines the file ingestion and retrieval use cases.
type FileService interface {
	// Upload stores the content and records it. The object is deleted again if the record cannot be saved.
	Upload(ctx context.Context, in UploadInput) (*model.StoredFile, error)

	// IssueUploadCredential prepares a direct upload to the remote backend,
	// preferring STS credentials and falling back to a presigned PUT URL.
	IssueUploadCredential(ctx context.Context, in CredentialInput) (*UploadCredential, error)

	// ConfirmUpload records an object the client uploaded directly, once it is visible.
	ConfirmUpload(ctx context.Context, in ConfirmInput) (*model.StoredFile, error)

	Get(ctx context.Context, id string) (*model.StoredFile, error)
	List(ctx context.Context, filter repository.FileFilter, limit, offset int) (*FileListResult, error)

	// Content returns the record and the object bytes.
	Content(ctx context.Context, id string) (*model.StoredFile, []byte, error)

	// DownloadURL returns a URL that downloads the object under its original name.
	DownloadURL(ctx context.Context, id string, expires time.Duration) (string, error)

	// Delete removes the record, then the object. A failed object delete is only logged.
	Delete(ctx context.Context, id string) error

	Status(ctx context.Context) StorageStatus
}

type fileService struct {
	store storage.Storage
	repo  repository.FileRepository
	log   zerolog.Logger
	retry []storage.RetryOption
	now   func() time.Time
}

// NewFileService constructs a FileService. retry customizes the visibility
// check run by ConfirmUpload; the service logger is always passed to it.
func NewFileService(store storage.Storage, repo repository.FileRepository, log zerolog.Logger, retry ...storage.RetryOption) FileService {
	opts := append([]storage.RetryOption{storage.WithRetryLogger(log)}, retry...)
	return &fileService{store: store, repo: repo, log: log, retry: opts, now: time.Now}
}

func (s *fileService) Upload(ctx context.Context, in UploadInput) (*model.StoredFile, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	scope, err := NormalizeScope(in.Scope)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.FileName)
	if name == "" {
		return nil, ErrFileNameRequired
	}
	ext := PickExtension(scope, name, in.ContentType)
	if !ExtensionAllowed(scope, ext) {
		return nil, ErrUnsupportedType
	}
	limit := ScopeLimit(scope)
	if in.Size > limit {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(in.Reader, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	switch {
	case len(data) == 0:
		return nil, ErrEmptyFile
	case int64(len(data)) > limit:
		return nil, ErrFileTooLarge
	}

	contentType := ContentTypeFor(ext)

	id := uuid.NewString()
	key, err := s.store.SaveFile(ctx, fmt.Sprintf("%s/%s.%s", scope, id, ext), data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	rec := &model.StoredFile{
		ID:           id,
		OwnerID:      in.OwnerID,
		Scope:        scope,
		OriginalName: name,
		StorageKey:   key,
		Size:         int64(len(data)),
		ContentType:  contentType,
		CreatedAt:    s.now().UTC(),
	}
	return s.record(ctx, rec)
}

func (s *fileService) IssueUploadCredential(ctx context.Context, in CredentialInput) (*UploadCredential, error) {
	if s.store.BackendType() != storage.BackendRemote {
		return nil, ErrUnsupportedMode
	}
	scope, err := NormalizeScope(in.Scope)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FileName) == "" {
		return nil, ErrFileNameRequired
	}
	ext := PickExtension(scope, in.FileName, in.ContentType)
	if !ExtensionAllowed(scope, ext) {
		return nil, ErrUnsupportedType
	}
	if in.Size != nil {
		if *in.Size == 0 {
			return nil, ErrEmptyFile
		}
		if *in.Size > ScopeLimit(scope) {
			return nil, ErrFileTooLarge
		}
	}

	key := fmt.Sprintf("%s/%s.%s", scope, uuid.NewString(), ext)
	log := s.log.With().Str("owner_id", in.OwnerID).Str("scope", scope).Str("key", key).Logger()
	backend := string(s.store.BackendType())

	if s.store.SupportsSTS() {
		creds, err := s.store.STSToken(ctx, key, 0)
		if err == nil {
			log.Info().Str("mode", UploadModeSTS).Msg("issued upload credential")
			return &UploadCredential{
				UploadMode:     UploadModeSTS,
				UploadKey:      creds.UploadKey,
				ExpiresIn:      creds.ExpiresIn,
				StorageBackend: backend,
				Credentials:    creds,
			}, nil
		}
		log.Warn().Err(err).Msg("sts credential failed, falling back to signed url")
	} else {
		log.Warn().Msg("sts disabled, falling back to signed url")
	}

	expiry := s.store.DefaultSignedURLExpiry()
	u, err := s.store.UploadURL(ctx, key, expiry, ContentTypeFor(ext))
	if err != nil {
		return nil, fmt.Errorf("upload url: %w", err)
	}
	log.Info().Str("mode", UploadModeSignedURL).Msg("issued upload credential")
	return &UploadCredential{
		UploadMode:     UploadModeSignedURL,
		UploadKey:      key,
		ExpiresIn:      int64(expiry / time.Second),
		StorageBackend: backend,
		UploadURL:      u,
	}, nil
}

func (s *fileService) ConfirmUpload(ctx context.Context, in ConfirmInput) (*model.StoredFile, error) {
	if s.store.BackendType() != storage.BackendRemote {
		return nil, ErrUnsupportedMode
	}
	scope, err := NormalizeScope(in.Scope)
	if err != nil {
		return nil, err
	}
	if !KeyInScope(in.Key, scope) {
		return nil, ErrKeyOutOfScope
	}
	key := strings.TrimLeft(in.Key, "/")
	ext := strings.TrimPrefix(path.Ext(key), ".")
	if !ExtensionAllowed(scope, ext) {
		return nil, ErrUnsupportedType
	}

	// Only an unrecorded object may be discarded below; a recorded one belongs to someone.
	switch _, err := s.repo.FindByStorageKey(ctx, key); {
	case err == nil:
		return nil, ErrAlreadyRecorded
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("lookup record: %w", err)
	}

	meta, err := storage.HeadWithRetry(ctx, s.store, key, s.retry...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUploadMissing, err)
	}

	if meta.ContentLength == nil {
		return nil, ErrSizeUnknown
	}
	size := *meta.ContentLength
	switch {
	case size == 0:
		return nil, ErrEmptyFile
	case size > ScopeLimit(scope):
		s.discard(ctx, key, "uploaded object exceeds the size limit")
		return nil, ErrFileTooLarge
	}

	name := strings.TrimSpace(in.OriginalName)
	if name == "" {
		name = path.Base(key)
	}

	rec := &model.StoredFile{
		ID:           uuid.NewString(),
		OwnerID:      in.OwnerID,
		Scope:        scope,
		OriginalName: name,
		StorageKey:   key,
		Size:         size,
		ContentType:  ContentTypeFor(ext),
		ETag:         meta.ETag,
		CreatedAt:    s.now().UTC(),
	}
	return s.record(ctx, rec)
}

// record inserts rec and deletes its object when the insert fails. A
// duplicate key means another record owns the object, so it is left alone.
func (s *fileService) record(ctx context.Context, rec *model.StoredFile) (*model.StoredFile, error) {
	stored, err := s.repo.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrAlreadyRecorded
		}
		s.discard(ctx, rec.StorageKey, "db save failed")
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// discard deletes an object best-effort. Failures are logged and never returned.
func (s *fileService) discard(ctx context.Context, key, reason string) {
	s.log.Warn().Str("key", key).Str("reason", reason).Msg("removing stored object")
	if err := s.store.DeleteFile(ctx, key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("cleanup delete failed")
	}
}

func (s *fileService) Get(ctx context.Context, id string) (*model.StoredFile, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *fileService) List(ctx context.Context, filter repository.FileFilter, limit, offset int) (*FileListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, filter, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &FileListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *fileService) Content(ctx context.Context, id string) (*model.StoredFile, []byte, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.store.ReadFile(ctx, f.StorageKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("read storage: %w", err)
	}
	return f, data, nil
}

func (s *fileService) DownloadURL(ctx context.Context, id string, expires time.Duration) (string, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.DownloadURL(ctx, f.StorageKey, f.OriginalName, expires)
	if err != nil {
		return "", fmt.Errorf("download url: %w", err)
	}
	return u, nil
}

func (s *fileService) Delete(ctx context.Context, id string) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if err := s.store.DeleteFile(ctx, f.StorageKey); err != nil {
		s.log.Error().Err(err).Str("id", id).Str("key", f.StorageKey).Msg("object delete failed after record removal")
	}
	return nil
}

func (s *fileService) Status(ctx context.Context) StorageStatus {
	return StorageStatus{
		StorageBackend:  string(s.store.BackendType()),
		STSEnabled:      s.store.BackendType() == storage.BackendRemote && s.store.SupportsSTS(),
		SignedURLExpiry: int64(s.store.DefaultSignedURLExpiry() / time.Second),
	}
}
