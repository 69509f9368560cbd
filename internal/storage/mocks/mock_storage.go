package mocks

import (
	"context"
	"time"

	"shareapi/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	if f, ok := args.Get(0).(func(context.Context, string, []byte, string) string); ok {
		return f(ctx, key, data, contentType), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ReadFile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) WriteFile(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockStorage) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) FileURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	args := m.Called(ctx, key, expires)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) DownloadURL(ctx context.Context, key, filename string, expires time.Duration) (string, error) {
	args := m.Called(ctx, key, filename, expires)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) UploadURL(ctx context.Context, key string, expires time.Duration, contentType string) (string, error) {
	args := m.Called(ctx, key, expires, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) HeadFile(ctx context.Context, key string) (storage.ObjectMetadata, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(storage.ObjectMetadata), args.Error(1)
}

func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) STSToken(ctx context.Context, key string, duration time.Duration) (*storage.TemporaryCredentials, error) {
	args := m.Called(ctx, key, duration)
	if c, ok := args.Get(0).(*storage.TemporaryCredentials); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) BackendType() storage.BackendType {
	args := m.Called()
	return args.Get(0).(storage.BackendType)
}

func (m *MockStorage) SupportsSTS() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockStorage) DefaultSignedURLExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

var _ storage.Storage = (*MockStorage)(nil)
