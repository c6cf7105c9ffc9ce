package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/romariotrain/video-platform/internal/video/domain"
	"github.com/romariotrain/video-platform/internal/video/models"
)

const (
	mediaProvider    = "media"
	identityProvider = "identity"
)

// Memory keeps the whole store behind one mutex and mirrors the transactional
// semantics of the postgres implementation: ledger mark, conditional write
// and outbox event land together or not at all. Used by reconciler, service
// and handler tests.
type Memory struct {
	mu     sync.RWMutex
	videos map[uuid.UUID]*models.Video
	users  map[uuid.UUID]*models.User
	ledger map[string]struct{}
	events []models.DomainEvent
}

func NewMemory() *Memory {
	return &Memory{
		videos: make(map[uuid.UUID]*models.Video),
		users:  make(map[uuid.UUID]*models.User),
		ledger: make(map[string]struct{}),
	}
}

// Events returns the outbox records accumulated so far.
func (r *Memory) Events() []models.DomainEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

// VideoByUploadID is a test helper for asserting reconciler effects.
func (r *Memory) VideoByUploadID(uploadID string) (*models.Video, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v := r.findByUploadID(uploadID)
	if v == nil {
		return nil, false
	}
	cp := *v
	return &cp, true
}

// UserByExternalID is a test helper for asserting identity effects.
func (r *Memory) UserByExternalID(externalID string) (*models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u := r.findUserByExternalID(externalID)
	if u == nil {
		return nil, false
	}
	cp := *u
	return &cp, true
}

// SeedUser inserts a user directly, bypassing the webhook path.
func (r *Memory) SeedUser(u models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := u
	r.users[u.ID] = &cp
}

func (r *Memory) findByUploadID(uploadID string) *models.Video {
	for _, v := range r.videos {
		if v.UploadID == uploadID {
			return v
		}
	}
	return nil
}

func (r *Memory) findByAssetID(assetID string) *models.Video {
	for _, v := range r.videos {
		if v.AssetID != nil && *v.AssetID == assetID {
			return v
		}
	}
	return nil
}

func (r *Memory) findUserByExternalID(externalID string) *models.User {
	for _, u := range r.users {
		if u.ExternalID == externalID {
			return u
		}
	}
	return nil
}

func (r *Memory) seen(provider, eventKey string) bool {
	_, ok := r.ledger[provider+"/"+eventKey]
	return ok
}

func (r *Memory) mark(provider, eventKey string) {
	r.ledger[provider+"/"+eventKey] = struct{}{}
}

// --- VideoRepository ---

func (r *Memory) Create(ctx context.Context, v *models.Video) error {
	if v == nil || v.ID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[v.ID]; exists {
		return models.ErrConflict
	}
	if r.findByUploadID(v.UploadID) != nil {
		return models.ErrConflict
	}

	// Defensive copy so the caller cannot mutate the stored object.
	cp := *v
	r.videos[v.ID] = &cp
	return nil
}

func (r *Memory) GetByOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.videos[id]
	if !ok || v.OwnerID != ownerID {
		return nil, models.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *Memory) UpdateDetails(ctx context.Context, id, ownerID uuid.UUID, upd models.VideoUpdate) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[id]
	if !ok || v.OwnerID != ownerID {
		return nil, models.ErrNotFound
	}
	if upd.Title != nil {
		v.Title = *upd.Title
	}
	if upd.Description != nil {
		v.Description = upd.Description
	}
	if upd.CategoryID != nil {
		v.CategoryID = upd.CategoryID
	}
	if upd.Visibility != nil {
		v.Visibility = *upd.Visibility
	}
	cp := *v
	return &cp, nil
}

func (r *Memory) DeleteByOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[id]
	if !ok || v.OwnerID != ownerID {
		return nil, models.ErrNotFound
	}
	delete(r.videos, id)
	r.events = append(r.events, models.NewVideoDeleted(id))
	cp := *v
	return &cp, nil
}

func (r *Memory) SetThumbnail(ctx context.Context, id, ownerID uuid.UUID, url, key *string) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[id]
	if !ok || v.OwnerID != ownerID {
		return nil, models.ErrNotFound
	}
	v.ThumbnailURL = url
	v.ThumbnailKey = key
	cp := *v
	return &cp, nil
}

// --- LifecycleRepository ---

func (r *Memory) ApplyAssetCreated(ctx context.Context, eventKey, uploadID, assetID string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen(mediaProvider, eventKey) {
		return OutcomeDuplicate, nil
	}
	v := r.findByUploadID(uploadID)
	if v == nil {
		return 0, models.ErrNotFound
	}
	if domain.IsTerminal(v.Status) {
		// Stale delivery ordered after the terminal write; record it so an
		// identical redelivery short-circuits.
		r.mark(mediaProvider, eventKey)
		return OutcomeStale, nil
	}
	prev := v.Status
	v.AssetID = &assetID
	v.Status = models.ProcessingStatus
	r.mark(mediaProvider, eventKey)
	if prev != v.Status {
		r.events = append(r.events, models.NewVideoStatusChanged(v.ID, prev, v.Status))
	}
	return OutcomeApplied, nil
}

func (r *Memory) ApplyAssetReady(ctx context.Context, eventKey, uploadID string, fields AssetReadyFields) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen(mediaProvider, eventKey) {
		return OutcomeDuplicate, nil
	}
	v := r.findByUploadID(uploadID)
	if v == nil {
		return 0, models.ErrNotFound
	}
	prev := v.Status
	v.Status = models.ReadyStatus
	v.AssetID = &fields.AssetID
	v.PlaybackID = &fields.PlaybackID
	v.ThumbnailURL = &fields.ThumbnailURL
	v.PreviewURL = &fields.PreviewURL
	v.DurationMS = fields.DurationMS
	r.mark(mediaProvider, eventKey)
	if prev != v.Status {
		r.events = append(r.events, models.NewVideoStatusChanged(v.ID, prev, v.Status))
	}
	return OutcomeApplied, nil
}

func (r *Memory) ApplyAssetErrored(ctx context.Context, eventKey, uploadID string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen(mediaProvider, eventKey) {
		return OutcomeDuplicate, nil
	}
	v := r.findByUploadID(uploadID)
	if v == nil {
		return 0, models.ErrNotFound
	}
	prev := v.Status
	v.Status = models.ErroredStatus
	r.mark(mediaProvider, eventKey)
	if prev != v.Status {
		r.events = append(r.events, models.NewVideoStatusChanged(v.ID, prev, v.Status))
	}
	return OutcomeApplied, nil
}

func (r *Memory) ApplyAssetDeleted(ctx context.Context, eventKey, uploadID string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen(mediaProvider, eventKey) {
		return OutcomeDuplicate, nil
	}
	v := r.findByUploadID(uploadID)
	if v == nil {
		return 0, models.ErrNotFound
	}
	delete(r.videos, v.ID)
	r.mark(mediaProvider, eventKey)
	r.events = append(r.events, models.NewVideoDeleted(v.ID))
	return OutcomeApplied, nil
}

func (r *Memory) ApplyTrackReady(ctx context.Context, eventKey, assetID, trackID, trackStatus string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen(mediaProvider, eventKey) {
		return OutcomeDuplicate, nil
	}
	v := r.findByAssetID(assetID)
	if v == nil {
		return 0, models.ErrNotFound
	}
	v.TrackID = &trackID
	v.TrackStatus = &trackStatus
	r.mark(mediaProvider, eventKey)
	return OutcomeApplied, nil
}

// --- IdentityRepository ---

func (r *Memory) ApplyIdentityCreated(ctx context.Context, eventKey, externalID, name, imageURL string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen(identityProvider, eventKey) {
		return OutcomeDuplicate, nil
	}
	r.mark(identityProvider, eventKey)
	if r.findUserByExternalID(externalID) != nil {
		// A retried create is expected; the record already exists.
		return OutcomeNoop, nil
	}
	u := &models.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Name:       name,
		ImageURL:   imageURL,
	}
	r.users[u.ID] = u
	return OutcomeApplied, nil
}

func (r *Memory) ApplyIdentityUpdated(ctx context.Context, eventKey, externalID, name, imageURL string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen(identityProvider, eventKey) {
		return OutcomeDuplicate, nil
	}
	r.mark(identityProvider, eventKey)
	u := r.findUserByExternalID(externalID)
	if u == nil {
		// Update delivered before (or instead of) its create; nothing to do.
		return OutcomeNoop, nil
	}
	u.Name = name
	u.ImageURL = imageURL
	return OutcomeApplied, nil
}

func (r *Memory) ApplyIdentityDeleted(ctx context.Context, eventKey, externalID string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen(identityProvider, eventKey) {
		return OutcomeDuplicate, nil
	}
	r.mark(identityProvider, eventKey)
	u := r.findUserByExternalID(externalID)
	if u == nil {
		return OutcomeNoop, nil
	}
	// Cascade: the user's videos go with the account.
	for id, v := range r.videos {
		if v.OwnerID == u.ID {
			delete(r.videos, id)
			r.events = append(r.events, models.NewVideoDeleted(id))
		}
	}
	delete(r.users, u.ID)
	return OutcomeApplied, nil
}
