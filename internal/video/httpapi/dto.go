package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/video-platform/internal/video/models"
)

type UpdateVideoRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	CategoryID  *uuid.UUID         `json:"category_id"`
	Visibility  *models.Visibility `json:"visibility"`
}

type VideoResponse struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Visibility   string     `json:"visibility"`
	Status       string     `json:"status"`
	PlaybackID   *string    `json:"playback_id,omitempty"`
	TrackStatus  *string    `json:"track_status,omitempty"`
	ThumbnailURL *string    `json:"thumbnail_url,omitempty"`
	PreviewURL   *string    `json:"preview_url,omitempty"`
	DurationMS   int64      `json:"duration_ms"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UploadSlotResponse pairs the pending video with its one-time upload URL.
// The URL is never persisted, so this response is the only place it appears.
type UploadSlotResponse struct {
	Video     VideoResponse `json:"video"`
	UploadURL string        `json:"upload_url"`
}

func toVideoResponse(v *models.Video) VideoResponse {
	return VideoResponse{
		ID:           v.ID,
		OwnerID:      v.OwnerID,
		CategoryID:   v.CategoryID,
		Title:        v.Title,
		Description:  v.Description,
		Visibility:   string(v.Visibility),
		Status:       string(v.Status),
		PlaybackID:   v.PlaybackID,
		TrackStatus:  v.TrackStatus,
		ThumbnailURL: v.ThumbnailURL,
		PreviewURL:   v.PreviewURL,
		DurationMS:   v.DurationMS,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
