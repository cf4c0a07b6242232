package domain

import "time"

// User represents a registered account. The password field always holds a
// bcrypt digest, never plaintext, and email is stored lower-cased.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	ModifiedAt   time.Time
}
