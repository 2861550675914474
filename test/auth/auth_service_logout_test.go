package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "github.com/Soodgit/ai-code-documenter/internal/auth/domain"
	commonerrors "github.com/Soodgit/ai-code-documenter/internal/common/errors"
)

func TestAuthService_Logout_ClearsSession(t *testing.T) {
	svc, issuer, repo, _, _, _, _ := setupAuthService(t)

	user, token := sessionUser(t, issuer)

	var clearedID authdomain.UserID
	repo.clearRefreshTokenFunc = func(ctx context.Context, id authdomain.UserID) error {
		clearedID = id
		return nil
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if clearedID != user.ID {
		t.Errorf("cleared user %q, want %q", clearedID, user.ID)
	}
}

func TestAuthService_Logout_ExpiredCookieStillClears(t *testing.T) {
	svc, issuer, repo, _, _, _, mockClock := setupAuthService(t)

	// Issue a token that is already past its exp claim. Logout decodes the
	// subject without verification, so it must still clear the session.
	mockClock.SetTime(time.Now().Add(-8 * 24 * time.Hour))
	user, token := sessionUser(t, issuer)
	mockClock.SetTime(time.Now())

	var clearedID authdomain.UserID
	repo.clearRefreshTokenFunc = func(ctx context.Context, id authdomain.UserID) error {
		clearedID = id
		return nil
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if clearedID != user.ID {
		t.Errorf("cleared user %q, want %q", clearedID, user.ID)
	}
}

func TestAuthService_Logout_IgnoresUselessTokens(t *testing.T) {
	svc, _, repo, _, _, _, _ := setupAuthService(t)

	cleared := false
	repo.clearRefreshTokenFunc = func(ctx context.Context, id authdomain.UserID) error {
		cleared = true
		return nil
	}

	for _, token := range []string{"", "not-a-jwt"} {
		if err := svc.Logout(context.Background(), token); err != nil {
			t.Errorf("token %q: Logout returned %v, want nil", token, err)
		}
	}
	if cleared {
		t.Error("undecodable tokens must not touch the repository")
	}
}

func TestAuthService_Logout_RepoError(t *testing.T) {
	svc, issuer, repo, _, _, _, _ := setupAuthService(t)

	_, token := sessionUser(t, issuer)
	repo.clearRefreshTokenFunc = func(ctx context.Context, id authdomain.UserID) error {
		return errors.New("connection refused")
	}

	err := svc.Logout(context.Background(), token)
	if err == nil {
		t.Fatal("expected error")
	}

	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %T", err)
	}
	if de.Code() != "DB_ERROR" {
		t.Errorf("error code = %q, want DB_ERROR", de.Code())
	}
}
