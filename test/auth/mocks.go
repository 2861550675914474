package auth

import (
	"context"
	"time"

	authdomain "github.com/Soodgit/ai-code-documenter/internal/auth/domain"
	authrepo "github.com/Soodgit/ai-code-documenter/internal/auth/repository"
)

type mockUserRepo struct {
	createFunc                    func(ctx context.Context, user authdomain.User) error
	findByEmailFunc               func(ctx context.Context, email string) (authdomain.User, error)
	findByUsernameFunc            func(ctx context.Context, username string) (authdomain.User, error)
	findByIDFunc                  func(ctx context.Context, id authdomain.UserID) (authdomain.User, error)
	updateRefreshTokenFunc        func(ctx context.Context, id authdomain.UserID, tokenHash string, expiresAt time.Time) error
	rotateRefreshTokenFunc        func(ctx context.Context, id authdomain.UserID, oldHash, newHash string, expiresAt time.Time) (bool, error)
	clearRefreshTokenFunc         func(ctx context.Context, id authdomain.UserID) error
	setResetTokenFunc             func(ctx context.Context, id authdomain.UserID, tokenHash string, expiresAt time.Time) error
	findByResetTokenHashFunc      func(ctx context.Context, tokenHash string) (authdomain.User, error)
	updatePasswordFunc            func(ctx context.Context, id authdomain.UserID, passwordHash string) error
	clearExpiredRefreshTokensFunc func(ctx context.Context) (int64, error)
	clearExpiredResetTokensFunc   func(ctx context.Context) (int64, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user authdomain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (authdomain.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return authdomain.User{}, authrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (authdomain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return authdomain.User{}, authrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id authdomain.UserID) (authdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return authdomain.User{}, authrepo.ErrUserNotFound
}

func (m *mockUserRepo) UpdateRefreshToken(ctx context.Context, id authdomain.UserID, tokenHash string, expiresAt time.Time) error {
	if m.updateRefreshTokenFunc != nil {
		return m.updateRefreshTokenFunc(ctx, id, tokenHash, expiresAt)
	}
	return nil
}

func (m *mockUserRepo) RotateRefreshToken(ctx context.Context, id authdomain.UserID, oldHash, newHash string, expiresAt time.Time) (bool, error) {
	if m.rotateRefreshTokenFunc != nil {
		return m.rotateRefreshTokenFunc(ctx, id, oldHash, newHash, expiresAt)
	}
	return true, nil
}

func (m *mockUserRepo) ClearRefreshToken(ctx context.Context, id authdomain.UserID) error {
	if m.clearRefreshTokenFunc != nil {
		return m.clearRefreshTokenFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) SetResetToken(ctx context.Context, id authdomain.UserID, tokenHash string, expiresAt time.Time) error {
	if m.setResetTokenFunc != nil {
		return m.setResetTokenFunc(ctx, id, tokenHash, expiresAt)
	}
	return nil
}

func (m *mockUserRepo) FindByResetTokenHash(ctx context.Context, tokenHash string) (authdomain.User, error) {
	if m.findByResetTokenHashFunc != nil {
		return m.findByResetTokenHashFunc(ctx, tokenHash)
	}
	return authdomain.User{}, authrepo.ErrUserNotFound
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id authdomain.UserID, passwordHash string) error {
	if m.updatePasswordFunc != nil {
		return m.updatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *mockUserRepo) ClearExpiredRefreshTokens(ctx context.Context) (int64, error) {
	if m.clearExpiredRefreshTokensFunc != nil {
		return m.clearExpiredRefreshTokensFunc(ctx)
	}
	return 0, nil
}

func (m *mockUserRepo) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	if m.clearExpiredResetTokensFunc != nil {
		return m.clearExpiredResetTokensFunc(ctx)
	}
	return 0, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "test-id-123", nil
}

type mockEmailSender struct {
	sendPasswordResetFunc func(ctx context.Context, to, token string) error
}

func (m *mockEmailSender) SendPasswordReset(ctx context.Context, to, token string) error {
	if m.sendPasswordResetFunc != nil {
		return m.sendPasswordResetFunc(ctx, to, token)
	}
	return nil
}
