package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TokenCleaner removes auth tokens past their expiry
type TokenCleaner interface {
	CleanExpiredTokens(ctx context.Context) (int64, error)
}

// RunTokenCleanup calls cleaner every interval until ctx is done.
func RunTokenCleanup(ctx context.Context, cleaner TokenCleaner, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := cleaner.CleanExpiredTokens(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("Expired token cleanup failed", zap.Error(err))
			}
		}
	}
}
