package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/video-platform/internal/video/models"
)

const videoColumns = `
	id, owner_id, category_id, title, description, visibility, status,
	upload_id, asset_id, playback_id, track_id, track_status,
	thumbnail_url, thumbnail_key, preview_url, preview_key,
	duration_ms, created_at, updated_at
`

// VideoRepo covers the owner-scoped studio operations. Every mutation is a
// single statement conditioned on (id, owner_id), so an ownership mismatch
// surfaces exactly like a missing row.
type VideoRepo struct {
	db     *sqlx.DB
	outbox *OutboxRepo
}

func NewVideoRepo(db *sqlx.DB) *VideoRepo {
	return &VideoRepo{db: db, outbox: NewOutboxRepo(db)}
}

func (r *VideoRepo) Create(ctx context.Context, v *models.Video) error {
	const q = `
		INSERT INTO videos (
			id, owner_id, category_id, title, description, visibility, status,
			upload_id, duration_ms, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, q,
		v.ID, v.OwnerID, v.CategoryID, v.Title, v.Description, v.Visibility,
		v.Status, v.UploadID, v.DurationMS, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("video create: %w", err)
	}
	return nil
}

func (r *VideoRepo) GetByOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Video, error) {
	q := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1 AND owner_id = $2`

	var v models.Video
	if err := r.db.GetContext(ctx, &v, q, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("video get by owner: %w", err)
	}
	return &v, nil
}

func (r *VideoRepo) UpdateDetails(ctx context.Context, id, ownerID uuid.UUID, upd models.VideoUpdate) (*models.Video, error) {
	q := `
		UPDATE videos
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    category_id = COALESCE($5, category_id),
		    visibility = COALESCE($6, visibility),
		    updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + videoColumns

	var v models.Video
	if err := r.db.GetContext(ctx, &v, q, id, ownerID, upd.Title, upd.Description, upd.CategoryID, upd.Visibility); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("video update details: %w", err)
	}
	return &v, nil
}

func (r *VideoRepo) DeleteByOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Video, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := `DELETE FROM videos WHERE id = $1 AND owner_id = $2 RETURNING ` + videoColumns

	var v models.Video
	if err := tx.GetContext(ctx, &v, q, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("video delete by owner: %w", err)
	}

	if err := r.outbox.Add(ctx, tx, models.NewVideoDeleted(v.ID)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &v, nil
}

func (r *VideoRepo) SetThumbnail(ctx context.Context, id, ownerID uuid.UUID, url, key *string) (*models.Video, error) {
	q := `
		UPDATE videos
		SET thumbnail_url = $3, thumbnail_key = $4, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + videoColumns

	var v models.Video
	if err := r.db.GetContext(ctx, &v, q, id, ownerID, url, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("video set thumbnail: %w", err)
	}
	return &v, nil
}
