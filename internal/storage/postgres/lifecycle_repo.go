package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/video-platform/internal/video/models"
	"github.com/romariotrain/video-platform/internal/video/repository"
)

// LifecycleRepo applies media provider webhook transitions. Each Apply runs
// one transaction: ledger mark, a single conditional UPDATE (row-locked via
// the FROM subquery, so concurrent deliveries for the same asset serialize),
// and the outbox record for any status change.
type LifecycleRepo struct {
	db     *sqlx.DB
	outbox *OutboxRepo
}

func NewLifecycleRepo(db *sqlx.DB) *LifecycleRepo {
	return &LifecycleRepo{db: db, outbox: NewOutboxRepo(db)}
}

type transitionRow struct {
	ID         uuid.UUID     `db:"id"`
	PrevStatus models.Status `db:"prev_status"`
}

func (r *LifecycleRepo) ApplyAssetCreated(ctx context.Context, eventKey, uploadID, assetID string) (repository.Outcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fresh, err := markProcessed(ctx, tx, mediaProvider, eventKey)
	if err != nil {
		return 0, err
	}
	if !fresh {
		return repository.OutcomeDuplicate, nil
	}

	// The status guard is what protects terminal states from stale,
	// re-ordered created events.
	const q = `
		UPDATE videos v
		SET asset_id = $2, status = 'processing', updated_at = now()
		FROM (SELECT id, status AS prev_status FROM videos WHERE upload_id = $1 FOR UPDATE) prev
		WHERE v.id = prev.id AND prev.prev_status NOT IN ('ready', 'errored')
		RETURNING v.id, prev.prev_status
	`
	var row transitionRow
	if err := tx.GetContext(ctx, &row, q, uploadID, assetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.resolveSkipped(ctx, tx, uploadID)
		}
		return 0, fmt.Errorf("apply asset created: %w", err)
	}

	if row.PrevStatus != models.ProcessingStatus {
		ev := models.NewVideoStatusChanged(row.ID, row.PrevStatus, models.ProcessingStatus)
		if err := r.outbox.Add(ctx, tx, ev); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return repository.OutcomeApplied, nil
}

// resolveSkipped decides why a guarded update matched nothing: a terminal
// row means the event is stale (commit so the ledger keeps the mark), no row
// means the reference is unknown.
func (r *LifecycleRepo) resolveSkipped(ctx context.Context, tx *sqlx.Tx, uploadID string) (repository.Outcome, error) {
	var status models.Status
	err := tx.GetContext(ctx, &status, `SELECT status FROM videos WHERE upload_id = $1`, uploadID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolve skipped update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return repository.OutcomeStale, nil
}

func (r *LifecycleRepo) ApplyAssetReady(ctx context.Context, eventKey, uploadID string, fields repository.AssetReadyFields) (repository.Outcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fresh, err := markProcessed(ctx, tx, mediaProvider, eventKey)
	if err != nil {
		return 0, err
	}
	if !fresh {
		return repository.OutcomeDuplicate, nil
	}

	// Terminal write, authoritative: no status guard. A later ready event
	// with fresh data overrides an earlier one.
	const q = `
		UPDATE videos v
		SET status = 'ready', asset_id = $2, playback_id = $3,
		    thumbnail_url = $4, preview_url = $5, duration_ms = $6,
		    updated_at = now()
		FROM (SELECT id, status AS prev_status FROM videos WHERE upload_id = $1 FOR UPDATE) prev
		WHERE v.id = prev.id
		RETURNING v.id, prev.prev_status
	`
	var row transitionRow
	if err := tx.GetContext(ctx, &row, q,
		uploadID, fields.AssetID, fields.PlaybackID,
		fields.ThumbnailURL, fields.PreviewURL, fields.DurationMS,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("apply asset ready: %w", err)
	}

	if row.PrevStatus != models.ReadyStatus {
		ev := models.NewVideoStatusChanged(row.ID, row.PrevStatus, models.ReadyStatus)
		if err := r.outbox.Add(ctx, tx, ev); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return repository.OutcomeApplied, nil
}

func (r *LifecycleRepo) ApplyAssetErrored(ctx context.Context, eventKey, uploadID string) (repository.Outcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fresh, err := markProcessed(ctx, tx, mediaProvider, eventKey)
	if err != nil {
		return 0, err
	}
	if !fresh {
		return repository.OutcomeDuplicate, nil
	}

	const q = `
		UPDATE videos v
		SET status = 'errored', updated_at = now()
		FROM (SELECT id, status AS prev_status FROM videos WHERE upload_id = $1 FOR UPDATE) prev
		WHERE v.id = prev.id
		RETURNING v.id, prev.prev_status
	`
	var row transitionRow
	if err := tx.GetContext(ctx, &row, q, uploadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("apply asset errored: %w", err)
	}

	if row.PrevStatus != models.ErroredStatus {
		ev := models.NewVideoStatusChanged(row.ID, row.PrevStatus, models.ErroredStatus)
		if err := r.outbox.Add(ctx, tx, ev); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return repository.OutcomeApplied, nil
}

func (r *LifecycleRepo) ApplyAssetDeleted(ctx context.Context, eventKey, uploadID string) (repository.Outcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fresh, err := markProcessed(ctx, tx, mediaProvider, eventKey)
	if err != nil {
		return 0, err
	}
	if !fresh {
		return repository.OutcomeDuplicate, nil
	}

	// Dependent rows (comments, reactions, views, playlist entries) go via
	// the schema's ON DELETE CASCADE before the row itself is gone.
	var id uuid.UUID
	err = tx.GetContext(ctx, &id, `DELETE FROM videos WHERE upload_id = $1 RETURNING id`, uploadID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("apply asset deleted: %w", err)
	}

	if err := r.outbox.Add(ctx, tx, models.NewVideoDeleted(id)); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return repository.OutcomeApplied, nil
}

func (r *LifecycleRepo) ApplyTrackReady(ctx context.Context, eventKey, assetID, trackID, trackStatus string) (repository.Outcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fresh, err := markProcessed(ctx, tx, mediaProvider, eventKey)
	if err != nil {
		return 0, err
	}
	if !fresh {
		return repository.OutcomeDuplicate, nil
	}

	// Track state is independent of the primary lifecycle and joins on the
	// provider asset id.
	const q = `
		UPDATE videos
		SET track_id = $2, track_status = $3, updated_at = now()
		WHERE asset_id = $1
		RETURNING id
	`
	var id uuid.UUID
	err = tx.GetContext(ctx, &id, q, assetID, trackID, trackStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("apply track ready: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return repository.OutcomeApplied, nil
}
