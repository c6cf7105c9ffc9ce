package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/video-platform/internal/video/repository"
)

// UserRepo applies identity provider webhook transitions. Account rows only
// ever change through this path; the writes are shaped so that retried and
// re-ordered deliveries cannot corrupt anything.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) ApplyIdentityCreated(ctx context.Context, eventKey, externalID, name, imageURL string) (repository.Outcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fresh, err := markProcessed(ctx, tx, identityProvider, eventKey)
	if err != nil {
		return 0, err
	}
	if !fresh {
		return repository.OutcomeDuplicate, nil
	}

	// A conflicting insert is a retried create delivered under a different
	// delivery id; the record already being there is the desired end state.
	const q = `
		INSERT INTO users (external_id, name, image_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, q, externalID, name, imageURL)
	if err != nil {
		return 0, fmt.Errorf("apply identity created: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("apply identity created rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	if rows == 0 {
		return repository.OutcomeNoop, nil
	}
	return repository.OutcomeApplied, nil
}

func (r *UserRepo) ApplyIdentityUpdated(ctx context.Context, eventKey, externalID, name, imageURL string) (repository.Outcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fresh, err := markProcessed(ctx, tx, identityProvider, eventKey)
	if err != nil {
		return 0, err
	}
	if !fresh {
		return repository.OutcomeDuplicate, nil
	}

	const q = `
		UPDATE users
		SET name = $2, image_url = $3, updated_at = now()
		WHERE external_id = $1
	`
	res, err := tx.ExecContext(ctx, q, externalID, name, imageURL)
	if err != nil {
		return 0, fmt.Errorf("apply identity updated: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("apply identity updated rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	if rows == 0 {
		// Update raced ahead of (or outlived) its create; tolerated.
		return repository.OutcomeNoop, nil
	}
	return repository.OutcomeApplied, nil
}

func (r *UserRepo) ApplyIdentityDeleted(ctx context.Context, eventKey, externalID string) (repository.Outcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fresh, err := markProcessed(ctx, tx, identityProvider, eventKey)
	if err != nil {
		return 0, err
	}
	if !fresh {
		return repository.OutcomeDuplicate, nil
	}

	// The schema cascades to every owned row: videos, comments, reactions,
	// views, subscriptions, playlists.
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE external_id = $1`, externalID)
	if err != nil {
		return 0, fmt.Errorf("apply identity deleted: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("apply identity deleted rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	if rows == 0 {
		return repository.OutcomeNoop, nil
	}
	return repository.OutcomeApplied, nil
}
