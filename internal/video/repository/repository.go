package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/romariotrain/video-platform/internal/video/models"
)

// Outcome describes how applying a webhook event ended up. Duplicate, Stale
// and Noop are acknowledged to the provider as success: it retries on
// anything else, and a retry cannot change either verdict.
type Outcome int

const (
	OutcomeApplied   Outcome = iota
	OutcomeDuplicate         // event id already in the processed ledger
	OutcomeStale             // guarded write skipped: entity already terminal
	OutcomeNoop              // recognized event with nothing left to do
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeStale:
		return "stale"
	case OutcomeNoop:
		return "noop"
	default:
		return "unknown"
	}
}

// VideoRepository covers the owner-scoped studio operations. An ownership
// mismatch is reported as models.ErrNotFound, indistinguishable from a
// missing row, so handlers cannot leak the existence of other users' videos.
type VideoRepository interface {
	Create(ctx context.Context, v *models.Video) error
	GetByOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Video, error)
	UpdateDetails(ctx context.Context, id, ownerID uuid.UUID, upd models.VideoUpdate) (*models.Video, error)
	DeleteByOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Video, error)
	SetThumbnail(ctx context.Context, id, ownerID uuid.UUID, url, key *string) (*models.Video, error)
}

// AssetReadyFields is everything an asset.ready delivery pins onto the row.
type AssetReadyFields struct {
	AssetID      string
	PlaybackID   string
	ThumbnailURL string
	PreviewURL   string
	DurationMS   int64
}

// LifecycleRepository applies media provider webhook transitions. Every
// method records eventKey in the processed-event ledger atomically with its
// write and reports OutcomeDuplicate when the key was already recorded.
// Implementations must make each write a single conditional statement so
// concurrent deliveries for the same asset cannot interleave a lost update.
type LifecycleRepository interface {
	ApplyAssetCreated(ctx context.Context, eventKey, uploadID, assetID string) (Outcome, error)
	ApplyAssetReady(ctx context.Context, eventKey, uploadID string, fields AssetReadyFields) (Outcome, error)
	ApplyAssetErrored(ctx context.Context, eventKey, uploadID string) (Outcome, error)
	ApplyAssetDeleted(ctx context.Context, eventKey, uploadID string) (Outcome, error)
	ApplyTrackReady(ctx context.Context, eventKey, assetID, trackID, trackStatus string) (Outcome, error)
}

// IdentityRepository applies identity provider webhook transitions with the
// same ledger discipline as LifecycleRepository.
type IdentityRepository interface {
	ApplyIdentityCreated(ctx context.Context, eventKey, externalID, name, imageURL string) (Outcome, error)
	ApplyIdentityUpdated(ctx context.Context, eventKey, externalID, name, imageURL string) (Outcome, error)
	ApplyIdentityDeleted(ctx context.Context, eventKey, externalID string) (Outcome, error)
}
