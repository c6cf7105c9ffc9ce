package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	pg "github.com/romariotrain/video-platform/internal/storage/postgres"
	webhookapi "github.com/romariotrain/video-platform/internal/webhook/httpapi"
	"github.com/romariotrain/video-platform/internal/webhook/reconcile"
	"github.com/romariotrain/video-platform/internal/webhook/signature"
)

func run(ctx context.Context, logger zerolog.Logger) error {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	mediaSecret := os.Getenv("MUX_WEBHOOK_SECRET")
	if mediaSecret == "" {
		return fmt.Errorf("MUX_WEBHOOK_SECRET is empty")
	}
	identitySecret := os.Getenv("IDENTITY_WEBHOOK_SECRET")
	if identitySecret == "" {
		return fmt.Errorf("IDENTITY_WEBHOOK_SECRET is empty")
	}
	addr := envOr("WEBHOOK_ADDR", ":8082")
	retention, err := time.ParseDuration(envOr("LEDGER_RETENTION", "72h"))
	if err != nil {
		return fmt.Errorf("parse LEDGER_RETENTION: %w", err)
	}

	db, err := pg.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	identityVerifier, err := signature.NewSvixVerifier(identitySecret)
	if err != nil {
		return fmt.Errorf("identity webhook secret: %w", err)
	}

	h := webhookapi.New(
		signature.NewMuxVerifier(mediaSecret),
		identityVerifier,
		reconcile.NewMedia(pg.NewLifecycleRepo(db), logger),
		reconcile.NewIdentity(pg.NewUserRepo(db), logger),
		logger,
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           webhookapi.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go pruneLedger(ctx, pg.NewLedgerRepo(db), retention, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("webhook listener started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	}
}

// pruneLedger drops processed-event rows older than the provider's retry
// horizon; they can never dedupe another delivery.
func pruneLedger(ctx context.Context, repo *pg.LedgerRepo, retention time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.PruneBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				logger.Warn().Err(err).Msg("ledger prune failed")
				continue
			}
			if n > 0 {
				logger.Info().Int64("pruned", n).Msg("ledger pruned")
			}
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
