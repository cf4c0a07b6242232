package domain

import "time"

// Rating represents a single user's rating for a movie. A user may rate a
// given movie exactly once; ratings are never edited or deleted.
type Rating struct {
	ID         string
	UserID     string
	MovieID    string
	Value      float64
	Review     *string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// MovieRating pairs a rating with the identity of the user who posted it, for
// listing all ratings under one movie.
type MovieRating struct {
	Rating
	FirstName string
	LastName  string
}

// UserRating pairs a rating with a summary of the rated movie, for listing all
// ratings posted by one user.
type UserRating struct {
	Rating
	MovieName string
	MovieYear int
}
