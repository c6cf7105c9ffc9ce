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
	"github.com/romariotrain/video-platform/internal/upstream/filestore"
	"github.com/romariotrain/video-platform/internal/upstream/muxvideo"
	"github.com/romariotrain/video-platform/internal/video/httpapi"
	"github.com/romariotrain/video-platform/internal/video/service"
)

func run(ctx context.Context, logger zerolog.Logger) error {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	tokenID := os.Getenv("MUX_TOKEN_ID")
	tokenSecret := os.Getenv("MUX_TOKEN_SECRET")
	if tokenID == "" || tokenSecret == "" {
		return fmt.Errorf("MUX_TOKEN_ID and MUX_TOKEN_SECRET are required")
	}
	filesBaseURL := os.Getenv("FILESTORE_BASE_URL")
	if filesBaseURL == "" {
		return fmt.Errorf("FILESTORE_BASE_URL is empty")
	}
	addr := envOr("STUDIO_ADDR", ":8081")

	db, err := pg.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	uploads := muxvideo.NewClient(os.Getenv("MUX_BASE_URL"), tokenID, tokenSecret)
	files := filestore.NewClient(filesBaseURL, os.Getenv("FILESTORE_API_KEY"))

	svc := service.New(pg.NewVideoRepo(db), uploads, files, logger)
	h := httpapi.New(svc, httpapi.HeaderAuth("X-User-ID"), logger)

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("studio api started")
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

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
