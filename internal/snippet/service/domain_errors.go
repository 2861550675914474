package service

import (
	"net/http"

	commonerrors "github.com/Soodgit/ai-code-documenter/internal/common/errors"
)

var (
	ErrSnippetNotFound = commonerrors.NewDomainError(
		"NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"snippet not found",
	)
)

var (
	ErrValidationTitle    = newValidationError("title", "must be 1-200 characters")
	ErrValidationLanguage = newValidationError("language", "must be 1-40 characters")
	ErrValidationCode     = newValidationError("code", "must not be empty")
	ErrValidationCodeSize = newValidationError("code", "exceeds the maximum size of 100KB")
)

func newValidationError(field, message string) commonerrors.DomainError {
	return commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusUnprocessableEntity,
		"validation failed",
	).WithDetails(map[string]string{field: message})
}
