package cleanup

import (
	"context"
	"time"

	authrepo "github.com/Soodgit/ai-code-documenter/internal/auth/repository"
	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
	"github.com/Soodgit/ai-code-documenter/internal/observability/metrics"
)

type clearFunc func(ctx context.Context) (int64, error)

// StartTokenCleanup periodically clears refresh and reset token hashes whose
// expiry has passed. Expired tokens are already unusable, this keeps the
// columns from holding stale hashes forever.
func StartTokenCleanup(ctx context.Context, repo authrepo.UserRepository, log *logger.Logger) {
	ticker := time.NewTicker(constants.TokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCleanup(ctx, log, "refresh", repo.ClearExpiredRefreshTokens)
			runCleanup(ctx, log, "reset", repo.ClearExpiredResetTokens)
		}
	}
}

func runCleanup(ctx context.Context, log *logger.Logger, kind string, clear clearFunc) {
	cleared, err := clear(ctx)
	if err != nil {
		log.Errorf("%s token cleanup failed: %v", kind, err)
		return
	}

	if cleared > 0 {
		metrics.TokensCleanupCleared.WithLabelValues(kind).Add(float64(cleared))
		log.Infof("%s token cleanup: cleared %d expired tokens", kind, cleared)
	}
}
