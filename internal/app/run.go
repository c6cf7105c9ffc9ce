// Package app hosts the shared process lifecycle: signal handling, the root
// logger and the exit-code contract every cmd binary follows.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Runner is a service entrypoint. It must return promptly once ctx is
// cancelled; the process gives it a bounded grace period.
type Runner func(ctx context.Context, logger zerolog.Logger) error

const shutdownGrace = 15 * time.Second

func Run(serviceName string, run Runner) int {
	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("starting")

	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx, logger) }()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("shutdown finished with error")
				return 1
			}
		case <-time.After(shutdownGrace):
			logger.Error().Msg("shutdown grace period exceeded")
			return 1
		}
		logger.Info().Msg("stopped")
		return 0

	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("failed")
			return 1
		}
		logger.Info().Msg("stopped")
		return 0
	}
}
