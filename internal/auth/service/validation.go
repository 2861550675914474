package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

func validateRegistration(username, email, password string) error {
	if err := validateUsername(username); err != nil {
		return err
	}

	if !isValidEmail(email) {
		return ErrValidationEmail
	}

	return validatePassword(password)
}

func validateUsername(value string) error {
	if len(value) < constants.UsernameMinLength || len(value) > constants.UsernameMaxLength {
		return ErrValidationUsernameLength
	}

	if !isValidUsername(value) {
		return ErrValidationUsernameChars
	}

	return nil
}

func validatePassword(value string) error {
	if len(value) < constants.PasswordMinLength || len(value) > constants.PasswordMaxLength {
		return ErrValidationPasswordLength
	}

	if !isValidPassword(value) {
		return ErrValidationPasswordWeak
	}

	return nil
}

func isValidUsername(value string) bool {
	if !usernameRegex.MatchString(value) {
		return false
	}

	if !unicode.IsLetter(rune(value[0])) && !unicode.IsDigit(rune(value[0])) {
		return false
	}

	if !unicode.IsLetter(rune(value[len(value)-1])) && !unicode.IsDigit(rune(value[len(value)-1])) {
		return false
	}

	return true
}

func isValidPassword(value string) bool {
	hasLetter := false
	hasDigit := false

	for _, r := range value {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if hasLetter && hasDigit {
			return true
		}
	}

	return false
}

func isValidEmail(value string) bool {
	if value == "" || len(value) > constants.EmailMaxLength {
		return false
	}

	return emailRegex.MatchString(value)
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
