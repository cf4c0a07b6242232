package domain

import (
	"math"
	"time"
)

// Movie represents the canonical movie entity in the database/service.
// Movie names are unique throughout the application.
type Movie struct {
	ID          string
	AddedBy     string
	Name        string
	Year        int
	Description *string
	Extra       map[string]any
	Stats       RatingStats
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// RatingStats is the running (count, sum) pair summarizing all ratings for one
// movie. Both accumulators are stored unrounded; only one concurrent mutator
// may update them at a time.
type RatingStats struct {
	Count int64
	Sum   float64
}

// Average derives the mean rating rounded to two decimal places, or 0 when the
// movie has no ratings. Rounding is a presentation contract only.
func (s RatingStats) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return math.Round(s.Sum/float64(s.Count)*100) / 100
}
