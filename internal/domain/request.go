package domain

import "time"

// Request is a user's wish for a movie that is not yet in the catalogue, so
// other users can see it and add the wanted movie. Names are unique.
type Request struct {
	ID         string
	UserID     string
	Name       string
	CreatedAt  time.Time
	ModifiedAt time.Time
}
