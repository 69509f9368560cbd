package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shareapi/internal/config"
)

// LocalStorage keeps objects as files under a root directory.
type LocalStorage struct {
	root    string
	baseURL string
	log     zerolog.Logger
	metrics *Metrics
}

// NewLocalStorage makes the root absolute and creates it if missing.
func NewLocalStorage(cfg config.LocalStorageConfig, opts ...Option) (*LocalStorage, error) {
	o := buildOptions(opts)
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, newError(KindConfig, "new", "", errors.New("local root is required"))
	}
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, newError(KindConfig, "new", "", fmt.Errorf("resolve root: %w", err))
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, newError(KindIO, "new", "", fmt.Errorf("create root: %w", err))
	}
	return &LocalStorage{
		root:    abs,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     o.log.With().Str("component", "storage").Str("backend", string(BackendLocal)).Logger(),
		metrics: o.metrics,
	}, nil
}

// Root returns the absolute directory objects are stored under.
func (s *LocalStorage) Root() string { return s.root }

// resolve maps key to a root-relative key and its path on disk. Keys that
// would escape the root are rejected. An absolute path already under the root
// is accepted and converted back to its key.
func (s *LocalStorage) resolve(op, key string) (string, string, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return "", "", validationError(op, key, "key is empty")
	}
	if filepath.IsAbs(k) {
		if rel, err := filepath.Rel(s.root, filepath.Clean(k)); err == nil && !escapes(filepath.ToSlash(rel)) {
			k = filepath.ToSlash(rel)
		}
	}
	k = strings.TrimLeft(k, "/")
	if k == "" {
		return "", "", validationError(op, key, "key is empty")
	}
	cleaned := path.Clean(k)
	if cleaned == "." || escapes(cleaned) {
		return "", "", validationError(op, key, "key escapes the storage root")
	}
	return cleaned, filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../")
}

func (s *LocalStorage) done(op string, err error) error {
	s.metrics.observe(BackendLocal, op, err)
	if err != nil && KindOf(err) != KindNotFound {
		s.log.Debug().Err(err).Str("op", op).Msg("storage operation failed")
	}
	return err
}

func (s *LocalStorage) SaveFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	k, err := s.write("save", key, data)
	return k, s.done("save", err)
}

func (s *LocalStorage) WriteFile(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.write("write", key, data)
	return s.done("write", err)
}

func (s *LocalStorage) write(op, key string, data []byte) (string, error) {
	k, full, err := s.resolve(op, key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", newError(KindIO, op, k, fmt.Errorf("create directory: %w", err))
	}
	if err := os.WriteFile(full, data, 0o640); err != nil {
		return "", newError(KindIO, op, k, fmt.Errorf("write file: %w", err))
	}
	return k, nil
}

func (s *LocalStorage) ReadFile(ctx context.Context, key string) ([]byte, error) {
	k, full, err := s.resolve("read", key)
	if err != nil {
		return nil, s.done("read", err)
	}
	data, err := os.ReadFile(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, s.done("read", newError(KindNotFound, "read", k, err))
	case err != nil:
		return nil, s.done("read", newError(KindIO, "read", k, err))
	}
	return data, s.done("read", nil)
}

func (s *LocalStorage) DeleteFile(ctx context.Context, key string) error {
	k, full, err := s.resolve("delete", key)
	if err != nil {
		return s.done("delete", err)
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return s.done("delete", newError(KindIO, "delete", k, err))
	}
	return s.done("delete", nil)
}

// FileURL returns the public static path of key; expires is ignored.
func (s *LocalStorage) FileURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	k, _, err := s.resolve("url", key)
	if err != nil {
		return "", s.done("url", err)
	}
	return s.baseURL + "/" + k, nil
}

// DownloadURL is FileURL; static serving cannot set a download filename.
func (s *LocalStorage) DownloadURL(ctx context.Context, key, filename string, expires time.Duration) (string, error) {
	return s.FileURL(ctx, key, expires)
}

func (s *LocalStorage) UploadURL(ctx context.Context, key string, expires time.Duration, contentType string) (string, error) {
	return "", s.done("upload_url", unsupported("upload_url", key))
}

func (s *LocalStorage) HeadFile(ctx context.Context, key string) (ObjectMetadata, error) {
	k, full, err := s.resolve("head", key)
	if err != nil {
		return ObjectMetadata{}, s.done("head", err)
	}
	info, err := os.Stat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ObjectMetadata{}, s.done("head", newError(KindNotFound, "head", k, err))
	case err != nil:
		return ObjectMetadata{}, s.done("head", newError(KindIO, "head", k, err))
	case info.IsDir():
		return ObjectMetadata{}, s.done("head", newError(KindNotFound, "head", k, errors.New("is a directory")))
	}
	size := info.Size()
	return ObjectMetadata{
		ContentLength: &size,
		ContentType:   mime.TypeByExtension(path.Ext(k)),
	}, s.done("head", nil)
}

func (s *LocalStorage) FileExists(ctx context.Context, key string) (bool, error) {
	k, full, err := s.resolve("exists", key)
	if err != nil {
		return false, s.done("exists", err)
	}
	info, err := os.Stat(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, s.done("exists", nil)
	case err != nil:
		return false, s.done("exists", newError(KindIO, "exists", k, err))
	}
	return !info.IsDir(), s.done("exists", nil)
}

func (s *LocalStorage) STSToken(ctx context.Context, key string, duration time.Duration) (*TemporaryCredentials, error) {
	return nil, s.done("sts", unsupported("sts", key))
}

func (s *LocalStorage) BackendType() BackendType { return BackendLocal }

func (s *LocalStorage) SupportsSTS() bool { return false }

func (s *LocalStorage) DefaultSignedURLExpiry() time.Duration { return DefaultSignedURLExpiry }
