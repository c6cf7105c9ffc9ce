package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/romariotrain/video-platform/internal/upstream/filestore"
	"github.com/romariotrain/video-platform/internal/upstream/muxvideo"
	"github.com/romariotrain/video-platform/internal/video/models"
)

func newService(st *StoreMock, up *UploadsMock, fs *FilesMock) *Service {
	return New(st, up, fs, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestCreateUploadSlot_InvalidOwner(t *testing.T) {
	ctx := context.Background()
	st := new(StoreMock)
	up := new(UploadsMock)
	svc := newService(st, up, new(FilesMock))

	got, uploadURL, err := svc.CreateUploadSlot(ctx, uuid.Nil)
	require.ErrorIs(t, err, models.ErrInvalidArgument)
	require.Nil(t, got)
	require.Empty(t, uploadURL)
	up.AssertNotCalled(t, "CreateDirectUpload", mock.Anything, mock.Anything)
}

func TestCreateUploadSlot_SetsFieldsAndPersists(t *testing.T) {
	ctx := context.Background()
	st := new(StoreMock)
	up := new(UploadsMock)
	svc := newService(st, up, new(FilesMock))

	fixedID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	fixedTime := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	svc.idGen = func() uuid.UUID { return fixedID }
	svc.clock = func() time.Time { return fixedTime }

	ownerID := uuid.New()
	up.On("CreateDirectUpload", mock.Anything, ownerID.String()).
		Return(muxvideo.DirectUpload{ID: "up_123", URL: "https://upload.example/put"}, nil).
		Once()

	var persisted *models.Video
	st.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*models.Video)
		}).
		Return(nil).
		Once()

	got, uploadURL, err := svc.CreateUploadSlot(ctx, ownerID)
	require.NoError(t, err)
	require.Equal(t, persisted, got)
	require.Equal(t, "https://upload.example/put", uploadURL)

	require.Equal(t, fixedID, got.ID)
	require.Equal(t, ownerID, got.OwnerID)
	require.Equal(t, "Untitled", got.Title)
	require.Equal(t, models.PrivateVisibility, got.Visibility)
	require.Equal(t, models.AwaitingUploadStatus, got.Status)
	require.Equal(t, "up_123", got.UploadID)
	require.Equal(t, fixedTime, got.CreatedAt)
	require.Equal(t, fixedTime, got.UpdatedAt)
	st.AssertExpectations(t)
	up.AssertExpectations(t)
}

func TestCreateUploadSlot_ProviderFailure(t *testing.T) {
	ctx := context.Background()
	st := new(StoreMock)
	up := new(UploadsMock)
	svc := newService(st, up, new(FilesMock))

	up.On("CreateDirectUpload", mock.Anything, mock.Anything).
		Return(muxvideo.DirectUpload{}, errors.New("connection refused")).
		Once()

	got, _, err := svc.CreateUploadSlot(ctx, uuid.New())
	require.ErrorIs(t, err, models.ErrUpstream)
	require.Nil(t, got)
	st.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetVideo_Delegates(t *testing.T) {
	ctx := context.Background()
	st := new(StoreMock)
	svc := newService(st, new(UploadsMock), new(FilesMock))

	id, ownerID := uuid.New(), uuid.New()
	want := &models.Video{ID: id, OwnerID: ownerID, Status: models.ReadyStatus}
	st.On("GetByOwner", mock.Anything, id, ownerID).Return(want, nil).Once()

	got, err := svc.GetVideo(ctx, id, ownerID)
	require.NoError(t, err)
	require.Equal(t, want, got)
	st.AssertExpectations(t)
}

func TestUpdateVideo_Validation(t *testing.T) {
	ctx := context.Background()
	badVis := models.Visibility("unlisted")

	cases := []struct {
		name string
		upd  models.VideoUpdate
	}{
		{name: "no fields set", upd: models.VideoUpdate{}},
		{name: "empty title", upd: models.VideoUpdate{Title: strPtr("")}},
		{name: "unknown visibility", upd: models.VideoUpdate{Visibility: &badVis}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := new(StoreMock)
			svc := newService(st, new(UploadsMock), new(FilesMock))

			got, err := svc.UpdateVideo(ctx, uuid.New(), uuid.New(), tc.upd)
			require.ErrorIs(t, err, models.ErrInvalidArgument)
			require.Nil(t, got)
			st.AssertNotCalled(t, "UpdateDetails", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateVideo_Delegates(t *testing.T) {
	ctx := context.Background()
	st := new(StoreMock)
	svc := newService(st, new(UploadsMock), new(FilesMock))

	id, ownerID := uuid.New(), uuid.New()
	upd := models.VideoUpdate{Title: strPtr("Launch day")}
	want := &models.Video{ID: id, OwnerID: ownerID, Title: "Launch day"}
	st.On("UpdateDetails", mock.Anything, id, ownerID, upd).Return(want, nil).Once()

	got, err := svc.UpdateVideo(ctx, id, ownerID, upd)
	require.NoError(t, err)
	require.Equal(t, want, got)
	st.AssertExpectations(t)
}

func TestRemoveVideo_CleansUpStoredFiles(t *testing.T) {
	ctx := context.Background()
	st := new(StoreMock)
	fs := new(FilesMock)
	svc := newService(st, new(UploadsMock), fs)

	id, ownerID := uuid.New(), uuid.New()
	deleted := &models.Video{
		ID:           id,
		OwnerID:      ownerID,
		ThumbnailKey: strPtr("thumb-key"),
		PreviewKey:   strPtr("preview-key"),
	}
	st.On("DeleteByOwner", mock.Anything, id, ownerID).Return(deleted, nil).Once()
	fs.On("Delete", mock.Anything, "thumb-key").Return(nil).Once()
	fs.On("Delete", mock.Anything, "preview-key").Return(nil).Once()

	got, err := svc.RemoveVideo(ctx, id, ownerID)
	require.NoError(t, err)
	require.Equal(t, deleted, got)
	st.AssertExpectations(t)
	fs.AssertExpectations(t)
}

func TestRemoveVideo_CleanupFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	st := new(StoreMock)
	fs := new(FilesMock)
	svc := newService(st, new(UploadsMock), fs)

	id, ownerID := uuid.New(), uuid.New()
	deleted := &models.Video{ID: id, OwnerID: ownerID, ThumbnailKey: strPtr("thumb-key")}
	st.On("DeleteByOwner", mock.Anything, id, ownerID).Return(deleted, nil).Once()
	fs.On("Delete", mock.Anything, "thumb-key").Return(errors.New("storage down")).Once()

	// The row is gone; stored file cleanup failing must not surface.
	got, err := svc.RemoveVideo(ctx, id, ownerID)
	require.NoError(t, err)
	require.Equal(t, deleted, got)
	fs.AssertExpectations(t)
}

func TestRemoveVideo_NotFoundPropagated(t *testing.T) {
	ctx := context.Background()
	st := new(StoreMock)
	fs := new(FilesMock)
	svc := newService(st, new(UploadsMock), fs)

	id, ownerID := uuid.New(), uuid.New()
	st.On("DeleteByOwner", mock.Anything, id, ownerID).Return(nil, models.ErrNotFound).Once()

	got, err := svc.RemoveVideo(ctx, id, ownerID)
	require.ErrorIs(t, err, models.ErrNotFound)
	require.Nil(t, got)
	fs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRestoreThumbnail_RequiresPlaybackID(t *testing.T) {
	ctx := context.Background()
	st := new(StoreMock)
	fs := new(FilesMock)
	svc := newService(st, new(UploadsMock), fs)

	id, ownerID := uuid.New(), uuid.New()
	st.On("GetByOwner", mock.Anything, id, ownerID).
		Return(&models.Video{ID: id, OwnerID: ownerID, Status: models.ProcessingStatus}, nil).
		Once()

	got, err := svc.RestoreThumbnail(ctx, id, ownerID)
	require.ErrorIs(t, err, models.ErrInvalidArgument)
	require.NotErrorIs(t, err, models.ErrConflict)
	require.Nil(t, got)
	// No storage traffic before the playback id check passes.
	fs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	fs.AssertNotCalled(t, "UploadFromURL", mock.Anything, mock.Anything)
}

func TestRestoreThumbnail_ReplacesStoredCopy(t *testing.T) {
	ctx := context.Background()
	st := new(StoreMock)
	fs := new(FilesMock)
	svc := newService(st, new(UploadsMock), fs)

	id, ownerID := uuid.New(), uuid.New()
	current := &models.Video{
		ID:           id,
		OwnerID:      ownerID,
		Status:       models.ReadyStatus,
		PlaybackID:   strPtr("pb_abc"),
		ThumbnailKey: strPtr("old-key"),
	}
	st.On("GetByOwner", mock.Anything, id, ownerID).Return(current, nil).Once()
	fs.On("Delete", mock.Anything, "old-key").Return(nil).Once()
	fs.On("UploadFromURL", mock.Anything, "https://image.mux.com/pb_abc/thumbnail.jpg").
		Return(filestore.StoredFile{Key: "new-key", URL: "https://files.example/new-key"}, nil).
		Once()

	want := &models.Video{ID: id, OwnerID: ownerID}
	st.On("SetThumbnail", mock.Anything, id, ownerID,
		strPtr("https://files.example/new-key"), strPtr("new-key")).
		Return(want, nil).
		Once()

	got, err := svc.RestoreThumbnail(ctx, id, ownerID)
	require.NoError(t, err)
	require.Equal(t, want, got)
	st.AssertExpectations(t)
	fs.AssertExpectations(t)
}

func TestRestoreThumbnail_ImportFailure(t *testing.T) {
	ctx := context.Background()
	st := new(StoreMock)
	fs := new(FilesMock)
	svc := newService(st, new(UploadsMock), fs)

	id, ownerID := uuid.New(), uuid.New()
	current := &models.Video{ID: id, OwnerID: ownerID, PlaybackID: strPtr("pb_abc")}
	st.On("GetByOwner", mock.Anything, id, ownerID).Return(current, nil).Once()
	fs.On("UploadFromURL", mock.Anything, mock.Anything).
		Return(filestore.StoredFile{}, errors.New("timeout")).
		Once()

	got, err := svc.RestoreThumbnail(ctx, id, ownerID)
	require.ErrorIs(t, err, models.ErrUpstream)
	require.Nil(t, got)
	st.AssertNotCalled(t, "SetThumbnail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
