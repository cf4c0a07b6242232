package auth

import (
	"strings"
	"unicode"

	goerrors "github.com/goliatone/go-errors"
)

// passwordSymbols is the fixed punctuation set a password must draw at least
// one character from.
const passwordSymbols = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

const minPasswordLength = 8

// ValidatePassword applies the password policy rules in a fixed order and
// returns a validation error for the first violated rule, or nil. Callers rely
// on the short-circuit order: whitespace, length, identity substrings, then
// lowercase, uppercase, digit, and symbol presence.
func ValidatePassword(password, email, firstName, lastName string) error {
	if strings.IndexFunc(password, unicode.IsSpace) >= 0 {
		return policyViolation("password must not contain whitespace")
	}
	if len(password) < minPasswordLength {
		return policyViolation("password must be at least 8 characters long")
	}
	for _, field := range []string{email, firstName, lastName} {
		if field == "" {
			continue
		}
		if strings.Contains(password, field) {
			return policyViolation("password must not contain your email or name")
		}
	}
	if !strings.ContainsFunc(password, unicode.IsLower) {
		return policyViolation("password must contain at least one lowercase letter")
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return policyViolation("password must contain at least one uppercase letter")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return policyViolation("password must contain at least one digit")
	}
	if !strings.ContainsAny(password, passwordSymbols) {
		return policyViolation("password must contain at least one symbol")
	}
	return nil
}

func policyViolation(message string) error {
	return goerrors.New(message, goerrors.CategoryValidation)
}
