package mocks

import (
	"context"

	"fileapi/internal/model"
	"fileapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, in service.UploadInput) (*model.FileView, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileView), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, viewer model.User) ([]model.FileView, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileView), args.Error(1)
}

func (m *MockFileService) ResolveDownload(ctx context.Context, identifier string, viewer model.User) (string, error) {
	args := m.Called(ctx, identifier, viewer)
	return args.String(0), args.Error(1)
}
