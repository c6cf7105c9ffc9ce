package models

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	AwaitingUploadStatus Status = "awaiting_upload"
	ProcessingStatus     Status = "processing"
	ReadyStatus          Status = "ready"
	ErroredStatus        Status = "errored"
)

type Visibility string

const (
	PrivateVisibility Visibility = "private"
	PublicVisibility  Visibility = "public"
)

// Video is the local projection of an asset hosted by the media processing
// provider. UploadID is assigned exactly once when the upload slot is created
// and is the correlation key for every later webhook event; AssetID becomes a
// second join key once the provider reports the asset created (track events
// reference it instead of the upload id).
type Video struct {
	ID           uuid.UUID  `db:"id"`
	OwnerID      uuid.UUID  `db:"owner_id"`
	CategoryID   *uuid.UUID `db:"category_id"`
	Title        string     `db:"title"`
	Description  *string    `db:"description"`
	Visibility   Visibility `db:"visibility"`
	Status       Status     `db:"status"`
	UploadID     string     `db:"upload_id"`
	AssetID      *string    `db:"asset_id"`
	PlaybackID   *string    `db:"playback_id"`
	TrackID      *string    `db:"track_id"`
	TrackStatus  *string    `db:"track_status"`
	ThumbnailURL *string    `db:"thumbnail_url"`
	ThumbnailKey *string    `db:"thumbnail_key"`
	PreviewURL   *string    `db:"preview_url"`
	PreviewKey   *string    `db:"preview_key"`
	DurationMS   int64      `db:"duration_ms"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// VideoUpdate carries the owner-editable fields. Nil means "leave unchanged".
type VideoUpdate struct {
	Title       *string
	Description *string
	CategoryID  *uuid.UUID
	Visibility  *Visibility
}
