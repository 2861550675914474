package service

import (
	"github.com/Soodgit/ai-code-documenter/internal/observability/metrics"
)

func incrementAccessTokensIssued() {
	metrics.AccessTokensIssued.Inc()
}

func incrementRefreshTokensIssued() {
	metrics.RefreshTokensIssued.Inc()
}

func incrementRefreshTokensRotated() {
	metrics.RefreshTokensRotated.Inc()
}

func incrementRefreshRotationConflicts() {
	metrics.RefreshRotationConflicts.Inc()
}

func incrementRefreshTokensRevoked() {
	metrics.RefreshTokensRevoked.Inc()
}

func incrementRefreshTokensExpired() {
	metrics.RefreshTokensExpired.Inc()
}

func incrementPasswordResetsRequested() {
	metrics.PasswordResetsRequested.Inc()
}

func incrementPasswordResetsCompleted() {
	metrics.PasswordResetsCompleted.Inc()
}
