package auth

import (
	"context"
	"testing"
	"time"

	authdomain "github.com/Soodgit/ai-code-documenter/internal/auth/domain"
	authrepo "github.com/Soodgit/ai-code-documenter/internal/auth/repository"
	"github.com/Soodgit/ai-code-documenter/internal/auth/service"
	"github.com/Soodgit/ai-code-documenter/internal/common/clock"
	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	commoncrypto "github.com/Soodgit/ai-code-documenter/internal/common/crypto"
	commonerrors "github.com/Soodgit/ai-code-documenter/internal/common/errors"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
)

const (
	testAccessSecret  = "test-access-secret-0123456789abcdef"
	testRefreshSecret = "test-refresh-secret-0123456789abcdef"
)

// The mock clock is anchored at the real current time because token parsing
// validates expiry against the wall clock.
func setupAuthService(t *testing.T) (*service.AuthService, *service.TokenIssuer, *mockUserRepo, *mockHasher, *mockIDGenerator, *mockEmailSender, *clock.MockClock) {
	_ = t
	mockUserRepo := &mockUserRepo{}
	mockHasher := &mockHasher{}
	mockIDGenerator := &mockIDGenerator{}
	mockEmailSender := &mockEmailSender{}
	mockClock := clock.NewMockClock(time.Now())

	log, _ := logger.New("", "test", "info")

	issuer := service.NewTokenIssuer(
		testAccessSecret,
		testRefreshSecret,
		mockIDGenerator,
		constants.DefaultAccessTokenTTL,
		constants.DefaultRefreshTokenTTL,
		mockClock,
	)

	authService := service.NewAuthService(
		mockUserRepo,
		mockHasher,
		mockIDGenerator,
		issuer,
		mockEmailSender,
		mockClock,
		log,
	)

	return authService, issuer, mockUserRepo, mockHasher, mockIDGenerator, mockEmailSender, mockClock
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, issuer, repo, _, _, _, mockClock := setupAuthService(t)

	var createdUser authdomain.User
	repo.createFunc = func(ctx context.Context, user authdomain.User) error {
		createdUser = user
		return nil
	}

	var storedHash string
	var storedExpiry time.Time
	repo.updateRefreshTokenFunc = func(ctx context.Context, id authdomain.UserID, tokenHash string, expiresAt time.Time) error {
		if id != createdUser.ID {
			t.Errorf("refresh token stored for user %q, want %q", id, createdUser.ID)
		}
		storedHash = tokenHash
		storedExpiry = expiresAt
		return nil
	}

	result, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Email:    "  Alice@Example.COM ",
		Password: "password1",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if createdUser.ID != "test-id-123" {
		t.Errorf("user ID = %q, want %q", createdUser.ID, "test-id-123")
	}
	if createdUser.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", createdUser.Email)
	}
	if createdUser.PasswordHash != "hashed_password1" {
		t.Errorf("password hash = %q, want %q", createdUser.PasswordHash, "hashed_password1")
	}
	if !createdUser.CreatedAt.Equal(mockClock.Now()) {
		t.Errorf("created at = %v, want %v", createdUser.CreatedAt, mockClock.Now())
	}

	if result.AccessToken == "" {
		t.Error("expected access token")
	}
	if result.RefreshToken == "" {
		t.Error("expected refresh token")
	}
	if result.User.Username != "alice" {
		t.Errorf("result user = %q, want alice", result.User.Username)
	}

	claims, err := issuer.ParseAccessToken(result.AccessToken)
	if err != nil {
		t.Fatalf("issued access token does not verify: %v", err)
	}
	if claims.UserID != "test-id-123" || claims.Username != "alice" {
		t.Errorf("access token claims = %+v", claims)
	}

	if storedHash != commoncrypto.HashToken(result.RefreshToken) {
		t.Error("stored refresh token hash does not match the issued token")
	}
	wantExpiry := mockClock.Now().Add(constants.DefaultRefreshTokenTTL)
	if !storedExpiry.Equal(wantExpiry) {
		t.Errorf("refresh expiry = %v, want %v", storedExpiry, wantExpiry)
	}
	if !result.RefreshExpiresAt.Equal(wantExpiry) {
		t.Errorf("result refresh expiry = %v, want %v", result.RefreshExpiresAt, wantExpiry)
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, _, repo, _, _, _, _ := setupAuthService(t)

	repo.createFunc = func(ctx context.Context, user authdomain.User) error {
		return authrepo.ErrEmailAlreadyExists
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password1",
	})
	if err == nil {
		t.Fatal("expected error")
	}

	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %T", err)
	}
	if de.Code() != "EMAIL_TAKEN" {
		t.Errorf("error code = %q, want EMAIL_TAKEN", de.Code())
	}
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	svc, _, repo, _, _, _, _ := setupAuthService(t)

	repo.createFunc = func(ctx context.Context, user authdomain.User) error {
		return authrepo.ErrUsernameAlreadyExists
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password1",
	})
	if err == nil {
		t.Fatal("expected error")
	}

	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %T", err)
	}
	if de.Code() != "USERNAME_TAKEN" {
		t.Errorf("error code = %q, want USERNAME_TAKEN", de.Code())
	}
}

func TestAuthService_Register_ValidationFailed(t *testing.T) {
	tests := []struct {
		name        string
		input       service.RegisterInput
		detailField string
	}{
		{
			name:        "username too short",
			input:       service.RegisterInput{Username: "ab", Email: "a@b.com", Password: "password1"},
			detailField: "username",
		},
		{
			name:        "username with bad characters",
			input:       service.RegisterInput{Username: "bad name!", Email: "a@b.com", Password: "password1"},
			detailField: "username",
		},
		{
			name:        "username with leading dash",
			input:       service.RegisterInput{Username: "-alice", Email: "a@b.com", Password: "password1"},
			detailField: "username",
		},
		{
			name:        "invalid email",
			input:       service.RegisterInput{Username: "alice", Email: "not-an-email", Password: "password1"},
			detailField: "email",
		},
		{
			name:        "password too short",
			input:       service.RegisterInput{Username: "alice", Email: "a@b.com", Password: "pw1"},
			detailField: "password",
		},
		{
			name:        "password without digits",
			input:       service.RegisterInput{Username: "alice", Email: "a@b.com", Password: "passwordonly"},
			detailField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, repo, _, _, _, _ := setupAuthService(t)

			created := false
			repo.createFunc = func(ctx context.Context, user authdomain.User) error {
				created = true
				return nil
			}

			_, err := svc.Register(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}

			de, ok := commonerrors.AsDomainError(err)
			if !ok {
				t.Fatalf("expected domain error, got %T", err)
			}
			if de.Code() != "VALIDATION_FAILED" {
				t.Errorf("error code = %q, want VALIDATION_FAILED", de.Code())
			}
			if _, has := de.Details()[tt.detailField]; !has {
				t.Errorf("details = %v, want field %q", de.Details(), tt.detailField)
			}
			if created {
				t.Error("user must not be created on validation failure")
			}
		})
	}
}

func TestAuthService_Register_HashError(t *testing.T) {
	svc, _, repo, hasher, _, _, _ := setupAuthService(t)

	hasher.hashFunc = func(password string) (string, error) {
		return "", commonerrors.ErrInternalError
	}

	created := false
	repo.createFunc = func(ctx context.Context, user authdomain.User) error {
		created = true
		return nil
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password1",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if created {
		t.Error("user must not be created when hashing fails")
	}
}
