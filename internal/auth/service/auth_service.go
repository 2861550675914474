package service

import (
	"context"
	"errors"
	"strings"
	"time"

	authdomain "github.com/Soodgit/ai-code-documenter/internal/auth/domain"
	authrepo "github.com/Soodgit/ai-code-documenter/internal/auth/repository"
	"github.com/Soodgit/ai-code-documenter/internal/common/clock"
	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	commoncrypto "github.com/Soodgit/ai-code-documenter/internal/common/crypto"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
)

// AuthService owns the session lifecycle. A user has at most one active
// refresh token, stored hashed on the user row. Login and register overwrite
// it, refresh rotates it with a compare-and-swap, logout clears it.
type AuthService struct {
	repo        authrepo.UserRepository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	tokens      *TokenIssuer
	emails      EmailSender
	clock       clock.Clock
	log         *logger.Logger
}

func NewAuthService(
	repo authrepo.UserRepository,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	tokens *TokenIssuer,
	emails EmailSender,
	clock clock.Clock,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		idGenerator: idGenerator,
		tokens:      tokens,
		emails:      emails,
		clock:       clock,
		log:         log,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Identifier string
	Password   string
}

type AuthResult struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             authdomain.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := validateRegistration(input.Username, input.Email, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return AuthResult{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		return AuthResult{}, err
	}

	user := authdomain.User{
		ID:           authdomain.UserID(id),
		Username:     input.Username,
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, authrepo.ErrEmailAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_email_exists",
			}).Warn("register failed: email already registered")
			return AuthResult{}, ErrEmailTaken
		}
		if errors.Is(err, authrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: username already taken")
			return AuthResult{}, ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return AuthResult{}, newInternalError("DB_ERROR", "failed to create user", err)
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"user_id":  string(user.ID),
			"action":   "register_token_issue_failed",
		}).Errorf("register failed: token issue error: %v", err)
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")

	return result, nil
}

// Login accepts an email address or a username as the identifier. A value
// containing "@" is looked up as an email. All credential failures return
// ErrInvalidCredentials so callers cannot probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	identifier := strings.TrimSpace(input.Identifier)

	s.log.WithFields(ctx, logger.Fields{
		"identifier": identifier,
		"action":     "login_attempt",
	}).Info("login attempt")

	if identifier == "" || input.Password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, authrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"identifier": identifier,
				"action":     "login_user_not_found",
			}).Warn("login failed: not found")
			return AuthResult{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"identifier": identifier,
			"action":     "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		return AuthResult{}, newInternalError("DB_ERROR", "failed to fetch user", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"identifier": identifier,
			"action":     "login_invalid_password",
		}).Warn("login failed: invalid password")
		return AuthResult{}, ErrInvalidCredentials
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"identifier": identifier,
			"user_id":    string(user.ID),
			"action":     "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")

	return result, nil
}

func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (authdomain.User, error) {
	if strings.Contains(identifier, "@") {
		return s.repo.FindByEmail(ctx, normalizeEmail(identifier))
	}
	return s.repo.FindByUsername(ctx, identifier)
}

// issueSession mints a fresh token pair and stores the refresh token hash,
// replacing whatever token was active before.
func (s *AuthService) issueSession(ctx context.Context, user authdomain.User) (AuthResult, error) {
	accessToken, _, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return AuthResult{}, err
	}

	refreshToken, expiresAt, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return AuthResult{}, err
	}

	hash := commoncrypto.HashToken(refreshToken)
	if err := s.repo.UpdateRefreshToken(ctx, user.ID, hash, expiresAt); err != nil {
		return AuthResult{}, newInternalError("DB_ERROR", "failed to store refresh token", err)
	}

	return AuthResult{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: expiresAt,
		User:             user,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The stored
// hash is swapped only if it still matches the presented token, so when two
// requests race with the same token exactly one wins and the loser gets
// ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"action": "refresh_attempt",
	}).Info("refresh attempt")

	if refreshToken == "" {
		return AuthResult{}, ErrInvalidRefreshToken
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "refresh_token_invalid",
		}).Warnf("refresh failed: %v", err)
		return AuthResult{}, ErrInvalidRefreshToken
	}

	user, err := s.repo.FindByID(ctx, authdomain.UserID(claims.UserID))
	if err != nil {
		if errors.Is(err, authrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": claims.UserID,
				"action":  "refresh_user_not_found",
			}).Warn("refresh failed: user not found")
			return AuthResult{}, ErrInvalidRefreshToken
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": claims.UserID,
			"action":  "refresh_fetch_failed",
		}).Errorf("refresh failed: %v", err)
		return AuthResult{}, newInternalError("DB_ERROR", "failed to fetch user", err)
	}

	presentedHash := commoncrypto.HashToken(refreshToken)
	if user.RefreshTokenHash == "" || !commoncrypto.TokensEqual(user.RefreshTokenHash, presentedHash) {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "refresh_token_mismatch",
		}).Warn("refresh failed: token is not the active one")
		return AuthResult{}, ErrInvalidRefreshToken
	}

	if s.clock.Now().After(user.RefreshTokenExpiresAt) {
		incrementRefreshTokensExpired()
		if err := s.repo.ClearRefreshToken(ctx, user.ID); err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": string(user.ID),
				"action":  "refresh_clear_expired_failed",
			}).Warnf("failed to clear expired refresh token: %v", err)
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "refresh_token_expired",
		}).Warn("refresh failed: token expired")
		return AuthResult{}, ErrRefreshTokenExpired
	}

	accessToken, _, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "refresh_token_issue_failed",
		}).Errorf("refresh failed: token issue error: %v", err)
		return AuthResult{}, err
	}

	newRefreshToken, expiresAt, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "refresh_token_issue_failed",
		}).Errorf("refresh failed: token issue error: %v", err)
		return AuthResult{}, err
	}

	rotated, err := s.repo.RotateRefreshToken(ctx, user.ID, presentedHash, commoncrypto.HashToken(newRefreshToken), expiresAt)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "refresh_rotate_failed",
		}).Errorf("refresh failed: %v", err)
		return AuthResult{}, newInternalError("DB_ERROR", "failed to rotate refresh token", err)
	}
	if !rotated {
		incrementRefreshRotationConflicts()
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "refresh_rotation_conflict",
		}).Warn("refresh failed: token was rotated by a concurrent request")
		return AuthResult{}, ErrInvalidRefreshToken
	}

	incrementRefreshTokensRotated()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "refresh_success",
	}).Info("refresh success")

	return AuthResult{
		AccessToken:      accessToken,
		RefreshToken:     newRefreshToken,
		RefreshExpiresAt: expiresAt,
		User:             user,
	}, nil
}

// Logout clears the stored refresh token for the subject carried by the
// cookie. The token is decoded without signature verification so even a stale
// or expired cookie still ends the right session. Errors are reported back
// but callers are expected to treat logout as best-effort.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	sub, err := s.tokens.DecodeSubjectUnverified(refreshToken)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "logout_token_undecodable",
		}).Debugf("logout: ignoring undecodable refresh token: %v", err)
		return nil
	}

	if err := s.repo.ClearRefreshToken(ctx, authdomain.UserID(sub)); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": sub,
			"action":  "logout_clear_failed",
		}).Errorf("logout failed: %v", err)
		return newInternalError("DB_ERROR", "failed to clear refresh token", err)
	}

	incrementRefreshTokensRevoked()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": sub,
		"action":  "logout_success",
	}).Info("refresh token revoked")

	return nil
}

// ForgotPassword issues a reset token for the account behind the email.
// Unknown addresses return success so the endpoint does not reveal which
// emails are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	s.log.WithFields(ctx, logger.Fields{
		"action": "password_reset_requested",
	}).Info("password reset requested")

	if !isValidEmail(email) {
		return ErrValidationEmail
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, authrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"action": "password_reset_unknown_email",
			}).Info("password reset requested for unknown email")
			return nil
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "password_reset_fetch_failed",
		}).Errorf("password reset failed: %v", err)
		return newInternalError("DB_ERROR", "failed to fetch user", err)
	}

	token, err := commoncrypto.NewResetToken()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "password_reset_token_failed",
		}).Errorf("password reset failed: token generation error: %v", err)
		return err
	}

	expiresAt := s.clock.Now().Add(constants.ResetTokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, commoncrypto.HashToken(token), expiresAt); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "password_reset_store_failed",
		}).Errorf("password reset failed: %v", err)
		return newInternalError("DB_ERROR", "failed to store reset token", err)
	}

	if err := s.emails.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "password_reset_email_failed",
		}).Errorf("password reset failed: email error: %v", err)
		return newInternalError("EMAIL_ERROR", "failed to send reset email", err)
	}

	incrementPasswordResetsRequested()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "password_reset_token_issued",
	}).Info("password reset token issued")

	return nil
}

// ResetPassword sets a new password for the account holding the reset token
// and revokes the active session, forcing a fresh login everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	s.log.WithFields(ctx, logger.Fields{
		"action": "password_reset_attempt",
	}).Info("password reset attempt")

	if token == "" {
		return ErrInvalidResetToken
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.repo.FindByResetTokenHash(ctx, commoncrypto.HashToken(token))
	if err != nil {
		if errors.Is(err, authrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"action": "password_reset_token_unknown",
			}).Warn("password reset failed: unknown token")
			return ErrInvalidResetToken
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "password_reset_fetch_failed",
		}).Errorf("password reset failed: %v", err)
		return newInternalError("DB_ERROR", "failed to fetch user", err)
	}

	if !user.HasActiveResetToken(s.clock.Now()) {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "password_reset_token_expired",
		}).Warn("password reset failed: token expired")
		return ErrInvalidResetToken
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "password_reset_hash_failed",
		}).Errorf("password reset failed: password hash error: %v", err)
		return err
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "password_reset_update_failed",
		}).Errorf("password reset failed: %v", err)
		return newInternalError("DB_ERROR", "failed to update password", err)
	}

	incrementPasswordResetsCompleted()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "password_reset_success",
	}).Info("password reset success")

	return nil
}

func (s *AuthService) GetUser(ctx context.Context, id authdomain.UserID) (authdomain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, authrepo.ErrUserNotFound) {
			return authdomain.User{}, ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(id),
			"action":  "get_user_failed",
		}).Errorf("get user failed: %v", err)
		return authdomain.User{}, newInternalError("DB_ERROR", "failed to fetch user", err)
	}

	return user, nil
}
