package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	authdomain "github.com/Soodgit/ai-code-documenter/internal/auth/domain"
	"github.com/Soodgit/ai-code-documenter/internal/common/clock"
	commoncrypto "github.com/Soodgit/ai-code-documenter/internal/common/crypto"
	commonerrors "github.com/Soodgit/ai-code-documenter/internal/common/errors"
	"github.com/Soodgit/ai-code-documenter/internal/common/jwtverify"
)

// TokenIssuer signs access and refresh tokens with separate secrets, so a
// token minted for one purpose never verifies as the other.
type TokenIssuer struct {
	accessSecret    []byte
	refreshSecret   []byte
	idGenerator     commoncrypto.IDGenerator
	clock           clock.Clock
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewTokenIssuer(
	accessSecret string,
	refreshSecret string,
	idGenerator commoncrypto.IDGenerator,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
	clock clock.Clock,
) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:    []byte(accessSecret),
		refreshSecret:   []byte(refreshSecret),
		idGenerator:     idGenerator,
		clock:           clock,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (ti *TokenIssuer) IssueAccessToken(user authdomain.User) (string, string, error) {
	tokenString, jti, _, err := ti.issue(user, ti.accessSecret, ti.accessTokenTTL)
	if err != nil {
		return "", "", err
	}

	incrementAccessTokensIssued()
	return tokenString, jti, nil
}

func (ti *TokenIssuer) IssueRefreshToken(user authdomain.User) (string, time.Time, error) {
	tokenString, _, expiresAt, err := ti.issue(user, ti.refreshSecret, ti.refreshTokenTTL)
	if err != nil {
		return "", time.Time{}, err
	}

	incrementRefreshTokensIssued()
	return tokenString, expiresAt, nil
}

func (ti *TokenIssuer) issue(user authdomain.User, secret []byte, ttl time.Duration) (string, string, time.Time, error) {
	jti, err := ti.idGenerator.NewID()
	if err != nil {
		return "", "", time.Time{}, err
	}

	now := ti.clock.Now()
	expiresAt := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": string(user.ID),
		"usr": user.Username,
		"jti": jti,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(secret)
	if err != nil {
		return "", "", time.Time{}, err
	}

	return tokenString, jti, expiresAt, nil
}

func (ti *TokenIssuer) ParseAccessToken(tokenString string) (jwtverify.Claims, error) {
	return jwtverify.ParseToken(tokenString, ti.accessSecret)
}

func (ti *TokenIssuer) ParseRefreshToken(tokenString string) (jwtverify.Claims, error) {
	return jwtverify.ParseToken(tokenString, ti.refreshSecret)
}

// DecodeSubjectUnverified extracts the subject claim without checking the
// signature or expiry. Logout uses it so a stale cookie still clears the
// right session.
func (ti *TokenIssuer) DecodeSubjectUnverified(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", err
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", commonerrors.ErrMissingTokenClaims
	}
	return sub, nil
}
