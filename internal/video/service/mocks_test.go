package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/romariotrain/video-platform/internal/upstream/filestore"
	"github.com/romariotrain/video-platform/internal/upstream/muxvideo"
	"github.com/romariotrain/video-platform/internal/video/models"
)

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) Create(ctx context.Context, v *models.Video) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *StoreMock) GetByOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Video, error) {
	args := m.Called(ctx, id, ownerID)
	if v := args.Get(0); v != nil {
		return v.(*models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) UpdateDetails(ctx context.Context, id, ownerID uuid.UUID, upd models.VideoUpdate) (*models.Video, error) {
	args := m.Called(ctx, id, ownerID, upd)
	if v := args.Get(0); v != nil {
		return v.(*models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) DeleteByOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Video, error) {
	args := m.Called(ctx, id, ownerID)
	if v := args.Get(0); v != nil {
		return v.(*models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) SetThumbnail(ctx context.Context, id, ownerID uuid.UUID, url, key *string) (*models.Video, error) {
	args := m.Called(ctx, id, ownerID, url, key)
	if v := args.Get(0); v != nil {
		return v.(*models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

type UploadsMock struct {
	mock.Mock
}

func (m *UploadsMock) CreateDirectUpload(ctx context.Context, passthrough string) (muxvideo.DirectUpload, error) {
	args := m.Called(ctx, passthrough)
	return args.Get(0).(muxvideo.DirectUpload), args.Error(1)
}

type FilesMock struct {
	mock.Mock
}

func (m *FilesMock) UploadFromURL(ctx context.Context, srcURL string) (filestore.StoredFile, error) {
	args := m.Called(ctx, srcURL)
	return args.Get(0).(filestore.StoredFile), args.Error(1)
}

func (m *FilesMock) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
