package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"shareapi/internal/model"
	"shareapi/internal/repository"
	"shareapi/internal/service"
)

type MockFileService struct {
	mock.Mock
}

var _ service.FileService = (*MockFileService)(nil)

func (m *MockFileService) Upload(ctx context.Context, in service.UploadInput) (*model.StoredFile, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockFileService) IssueUploadCredential(ctx context.Context, in service.CredentialInput) (*service.UploadCredential, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadCredential), args.Error(1)
}

func (m *MockFileService) ConfirmUpload(ctx context.Context, in service.ConfirmInput) (*model.StoredFile, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, id string) (*model.StoredFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, filter repository.FileFilter, limit, offset int) (*service.FileListResult, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileListResult), args.Error(1)
}

func (m *MockFileService) Content(ctx context.Context, id string) (*model.StoredFile, []byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	data, _ := args.Get(1).([]byte)
	return args.Get(0).(*model.StoredFile), data, args.Error(2)
}

func (m *MockFileService) DownloadURL(ctx context.Context, id string, expires time.Duration) (string, error) {
	args := m.Called(ctx, id, expires)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileService) Status(ctx context.Context) service.StorageStatus {
	args := m.Called(ctx)
	return args.Get(0).(service.StorageStatus)
}
