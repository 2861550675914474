package domain

import "time"

type UserID string

// User carries the single active refresh token for the account. Issuing a
// new refresh token overwrites the previous one, so at most one session can
// refresh at a time.
type User struct {
	ID                     UserID
	Username               string
	Email                  string
	PasswordHash           string
	RefreshTokenHash       string
	RefreshTokenExpiresAt  time.Time
	ResetPasswordTokenHash string
	ResetPasswordExpiresAt time.Time
	CreatedAt              time.Time
}

func (u *User) HasActiveRefreshToken(now time.Time) bool {
	return u.RefreshTokenHash != "" && now.Before(u.RefreshTokenExpiresAt)
}

func (u *User) HasActiveResetToken(now time.Time) bool {
	return u.ResetPasswordTokenHash != "" && now.Before(u.ResetPasswordExpiresAt)
}
