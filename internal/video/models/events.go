package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// VideoStatusChanged is recorded whenever a lifecycle transition lands,
// including transitions driven by provider webhooks. Downstream consumers
// (feed caches, search indexers) use it to invalidate their copies; delivery
// through the outbox is at-least-once, so consumers must be idempotent.
type VideoStatusChanged struct {
	eventID    uuid.UUID
	videoID    uuid.UUID
	from       Status
	to         Status
	occurredAt time.Time
}

func NewVideoStatusChanged(videoID uuid.UUID, from, to Status) *VideoStatusChanged {
	return &VideoStatusChanged{
		eventID:    uuid.New(),
		videoID:    videoID,
		from:       from,
		to:         to,
		occurredAt: time.Now(),
	}
}

func (e *VideoStatusChanged) EventID() uuid.UUID     { return e.eventID }
func (e *VideoStatusChanged) EventType() string      { return "VideoStatusChanged" }
func (e *VideoStatusChanged) AggregateID() uuid.UUID { return e.videoID }
func (e *VideoStatusChanged) OccurredAt() time.Time  { return e.occurredAt }

func (e *VideoStatusChanged) From() Status { return e.from }
func (e *VideoStatusChanged) To() Status   { return e.to }

func (e *VideoStatusChanged) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID `json:"event_id"`
		VideoID    uuid.UUID `json:"video_id"`
		From       Status    `json:"from"`
		To         Status    `json:"to"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		EventID:    e.eventID,
		VideoID:    e.videoID,
		From:       e.from,
		To:         e.to,
		OccurredAt: e.occurredAt,
	})
}

// VideoDeleted is recorded when an asset is removed, either by its owner or
// because the provider reported the remote asset deleted.
type VideoDeleted struct {
	eventID    uuid.UUID
	videoID    uuid.UUID
	occurredAt time.Time
}

func NewVideoDeleted(videoID uuid.UUID) *VideoDeleted {
	return &VideoDeleted{
		eventID:    uuid.New(),
		videoID:    videoID,
		occurredAt: time.Now(),
	}
}

func (e *VideoDeleted) EventID() uuid.UUID     { return e.eventID }
func (e *VideoDeleted) EventType() string      { return "VideoDeleted" }
func (e *VideoDeleted) AggregateID() uuid.UUID { return e.videoID }
func (e *VideoDeleted) OccurredAt() time.Time  { return e.occurredAt }

func (e *VideoDeleted) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID `json:"event_id"`
		VideoID    uuid.UUID `json:"video_id"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		EventID:    e.eventID,
		VideoID:    e.videoID,
		OccurredAt: e.occurredAt,
	})
}
