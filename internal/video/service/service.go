package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/romariotrain/video-platform/internal/upstream/filestore"
	"github.com/romariotrain/video-platform/internal/upstream/muxvideo"
	"github.com/romariotrain/video-platform/internal/video/models"
	"github.com/romariotrain/video-platform/internal/video/repository"
)

// UploadProvider creates upload slots with the media processing provider.
type UploadProvider interface {
	CreateDirectUpload(ctx context.Context, passthrough string) (muxvideo.DirectUpload, error)
}

// FileStore keeps durable copies of images referenced by video rows.
type FileStore interface {
	UploadFromURL(ctx context.Context, srcURL string) (filestore.StoredFile, error)
	Delete(ctx context.Context, key string) error
}

// Service owns the studio-facing operations: creating upload slots and the
// owner-scoped reads and mutations. Webhook-driven transitions never pass
// through here; they go straight to the lifecycle repository.
type Service struct {
	repo    repository.VideoRepository
	uploads UploadProvider
	files   FileStore
	logger  zerolog.Logger
	clock   func() time.Time
	idGen   func() uuid.UUID
}

func New(repo repository.VideoRepository, uploads UploadProvider, files FileStore, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		uploads: uploads,
		files:   files,
		logger:  logger.With().Str("component", "video_service").Logger(),
		clock:   time.Now,
		idGen:   uuid.New,
	}
}

// CreateUploadSlot provisions a direct upload with the provider and records
// the pending video row. The returned string is the one-time upload URL; it
// is handed to the client and never persisted.
func (s *Service) CreateUploadSlot(ctx context.Context, ownerID uuid.UUID) (*models.Video, string, error) {
	if ownerID == uuid.Nil {
		return nil, "", models.ErrInvalidArgument
	}

	du, err := s.uploads.CreateDirectUpload(ctx, ownerID.String())
	if err != nil {
		return nil, "", fmt.Errorf("create upload slot: %w: %w", models.ErrUpstream, err)
	}

	now := s.clock()
	v := &models.Video{
		ID:         s.idGen(),
		OwnerID:    ownerID,
		Title:      "Untitled",
		Visibility: models.PrivateVisibility,
		Status:     models.AwaitingUploadStatus,
		UploadID:   du.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, "", err
	}
	return v, du.URL, nil
}

// GetVideo returns the owner's video. Ownership mismatch is indistinguishable
// from a missing row.
func (s *Service) GetVideo(ctx context.Context, id, ownerID uuid.UUID) (*models.Video, error) {
	if id == uuid.Nil || ownerID == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	return s.repo.GetByOwner(ctx, id, ownerID)
}

// UpdateVideo applies the owner-editable fields. Nil fields stay unchanged;
// a request that changes nothing is rejected.
func (s *Service) UpdateVideo(ctx context.Context, id, ownerID uuid.UUID, upd models.VideoUpdate) (*models.Video, error) {
	if id == uuid.Nil || ownerID == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if upd.Title == nil && upd.Description == nil && upd.CategoryID == nil && upd.Visibility == nil {
		return nil, models.ErrInvalidArgument
	}
	if upd.Title != nil && *upd.Title == "" {
		return nil, models.ErrInvalidArgument
	}
	if upd.Visibility != nil &&
		*upd.Visibility != models.PrivateVisibility && *upd.Visibility != models.PublicVisibility {
		return nil, models.ErrInvalidArgument
	}
	return s.repo.UpdateDetails(ctx, id, ownerID, upd)
}

// RemoveVideo deletes the owner's video row and returns the removed record,
// then cleans up any stored image copies. Cleanup is best effort: the row is
// already gone and the provider tolerates repeated deletes.
func (s *Service) RemoveVideo(ctx context.Context, id, ownerID uuid.UUID) (*models.Video, error) {
	if id == uuid.Nil || ownerID == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}

	v, err := s.repo.DeleteByOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	for _, key := range []*string{v.ThumbnailKey, v.PreviewKey} {
		if key == nil {
			continue
		}
		if err := s.files.Delete(ctx, *key); err != nil {
			s.logger.Warn().Err(err).
				Str("video_id", id.String()).
				Str("file_key", *key).
				Msg("failed to delete stored file")
		}
	}
	return v, nil
}

// RestoreThumbnail re-imports the playback-derived thumbnail into durable
// storage and points the row at the fresh copy. Requires a playback id, so
// the video must have reached ready at least once.
func (s *Service) RestoreThumbnail(ctx context.Context, id, ownerID uuid.UUID) (*models.Video, error) {
	if id == uuid.Nil || ownerID == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}

	v, err := s.repo.GetByOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if v.PlaybackID == nil || *v.PlaybackID == "" {
		return nil, fmt.Errorf("no playback id: %w", models.ErrInvalidArgument)
	}

	if v.ThumbnailKey != nil {
		if err := s.files.Delete(ctx, *v.ThumbnailKey); err != nil {
			s.logger.Warn().Err(err).
				Str("video_id", id.String()).
				Str("file_key", *v.ThumbnailKey).
				Msg("failed to delete previous thumbnail")
		}
	}

	stored, err := s.files.UploadFromURL(ctx, muxvideo.ThumbnailURL(*v.PlaybackID))
	if err != nil {
		return nil, fmt.Errorf("import thumbnail: %w: %w", models.ErrUpstream, err)
	}

	return s.repo.SetThumbnail(ctx, id, ownerID, &stored.URL, &stored.Key)
}
