package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"foodgram/internal/api/repository"
)

// PurgeRevokedTokens deletes expired revocation entries once immediately
// and then every interval until ctx is cancelled.
func PurgeRevokedTokens(ctx context.Context, repo repository.RevokedTokenRepository, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		purgeOnce(ctx, repo, log)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func purgeOnce(ctx context.Context, repo repository.RevokedTokenRepository, log *zap.Logger) {
	n, err := repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("failed to purge revoked tokens", zap.Error(err))
		}
		return
	}
	if n > 0 {
		log.Info("purged expired revoked tokens", zap.Int64("count", n))
	}
}
