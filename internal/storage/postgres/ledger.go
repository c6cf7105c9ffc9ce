package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	mediaProvider    = "media"
	identityProvider = "identity"
)

// markProcessed records an event id in the processed-event ledger inside the
// caller's transaction. A false return means the id was already recorded:
// the delivery is a duplicate and the surrounding transaction should not
// apply its write again.
func markProcessed(ctx context.Context, tx *sqlx.Tx, provider, eventID string) (bool, error) {
	const q = `
		INSERT INTO processed_events (provider, event_id)
		VALUES ($1, $2)
		ON CONFLICT (provider, event_id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, q, provider, eventID)
	if err != nil {
		return false, fmt.Errorf("mark processed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark processed rows: %w", err)
	}
	return rows == 1, nil
}

// LedgerRepo prunes the processed-event ledger. Providers retry for a
// bounded window, so entries older than that window can never dedupe
// anything again.
type LedgerRepo struct {
	db *sqlx.DB
}

func NewLedgerRepo(db *sqlx.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func (r *LedgerRepo) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM processed_events WHERE processed_at < $1`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune processed events: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune processed events rows: %w", err)
	}
	return rows, nil
}
