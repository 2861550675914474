package service

import (
	"net/http"

	commonerrors "github.com/Soodgit/ai-code-documenter/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryAuth,
		http.StatusUnauthorized,
		"invalid credentials",
	)

	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"email already registered",
	)

	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"username already taken",
	)

	ErrInvalidRefreshToken = commonerrors.NewDomainError(
		"INVALID_REFRESH_TOKEN",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid refresh token",
	)

	ErrRefreshTokenExpired = commonerrors.NewDomainError(
		"REFRESH_TOKEN_EXPIRED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"refresh token expired",
	)

	ErrInvalidResetToken = commonerrors.NewDomainError(
		"INVALID_RESET_TOKEN",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid or expired reset token",
	)

	ErrUserNotFound = commonerrors.NewDomainError(
		"USER_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrServiceUnavailable = commonerrors.NewDomainError(
		"SERVICE_UNAVAILABLE",
		commonerrors.CategoryExternal,
		http.StatusServiceUnavailable,
		"service temporarily unavailable",
	)
)

var (
	ErrValidationUsernameLength = newValidationError("username", "must be 3-32 characters")
	ErrValidationUsernameChars  = newValidationError("username", "may contain letters, digits, underscores and dashes and must start and end with a letter or digit")
	ErrValidationPasswordLength = newValidationError("password", "must be 8-72 characters")
	ErrValidationPasswordWeak   = newValidationError("password", "must contain at least one letter and one digit")
	ErrValidationEmail          = newValidationError("email", "must be a valid email address")
)

func newValidationError(field, message string) commonerrors.DomainError {
	return commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusUnprocessableEntity,
		"validation failed",
	).WithDetails(map[string]string{field: message})
}
