package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when an empty string is submitted for hashing.
var ErrEmptyPassword = errors.New("auth: password must not be empty")

// HashPassword generates a bcrypt digest with an embedded random salt. Two
// calls with the same input produce different digests that verify
// interchangeably.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether the cleartext password matches the digest.
// Malformed digests report false rather than an error, and mismatch detection
// runs in constant time inside bcrypt.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
