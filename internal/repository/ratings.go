package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yify/yify-api/internal/domain"
)

// RatingsRepository provides helpers for movie ratings and owns the
// aggregate-update path.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// RatingSubmitParams captures the payload required to submit a rating.
type RatingSubmitParams struct {
	MovieID string
	UserID  string
	Value   float64
	Review  *string
}

// Submit inserts a rating and folds it into the movie's running statistics in
// one transaction. The movie row is locked FOR UPDATE before anything else
// touches it, so concurrent submissions against the same movie serialize here
// while submissions against different movies never block each other. The lock
// must precede the INSERT: inserting first would take the FK's KEY SHARE lock
// on the movie row, and two submitters each holding KEY SHARE while waiting
// for FOR UPDATE deadlock. A second rating for the same (user, movie) pair
// fails with ErrConflict; nothing is ever overwritten. Any failure aborts the
// whole transaction, so the rating row and the aggregate update are atomic
// together.
func (r *RatingsRepository) Submit(ctx context.Context, params RatingSubmitParams) (domain.Rating, domain.RatingStats, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Rating{}, domain.RatingStats{}, fmt.Errorf("begin rating tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Accumulators are read only after the row lock is held; reading before
	// acquiring it would race with other submitters.
	var stats domain.RatingStats
	err = tx.QueryRow(ctx, `
        SELECT ratings_count, ratings_sum FROM movies WHERE id = $1 FOR UPDATE
    `, params.MovieID).Scan(&stats.Count, &stats.Sum)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Rating{}, domain.RatingStats{}, ErrNotFound
		}
		return domain.Rating{}, domain.RatingStats{}, err
	}

	var rating domain.Rating
	err = tx.QueryRow(ctx, `
        INSERT INTO ratings (id, user_id, movie_id, rating, review)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, user_id, movie_id, rating, review, created_at, modified_at
    `, uuid.NewString(), params.UserID, params.MovieID, params.Value, params.Review).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.MovieID,
		&rating.Value,
		&rating.Review,
		&rating.CreatedAt,
		&rating.ModifiedAt,
	)
	if err != nil {
		return domain.Rating{}, domain.RatingStats{}, translateConstraint(err)
	}

	stats.Count++
	stats.Sum += params.Value

	_, err = tx.Exec(ctx, `
        UPDATE movies
        SET ratings_count = $2, ratings_sum = $3, modified_at = now()
        WHERE id = $1
    `, params.MovieID, stats.Count, stats.Sum)
	if err != nil {
		return domain.Rating{}, domain.RatingStats{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Rating{}, domain.RatingStats{}, fmt.Errorf("commit rating tx: %w", err)
	}
	return rating, stats, nil
}

// ListByMovie returns ratings for a movie together with each rater's name.
func (r *RatingsRepository) ListByMovie(ctx context.Context, movieID string, limit, offset int) ([]domain.MovieRating, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT r.id, r.user_id, r.movie_id, r.rating, r.review, r.created_at, r.modified_at,
               u.first_name, u.last_name
        FROM ratings r
        JOIN users u ON u.id = r.user_id
        WHERE r.movie_id = $1
        ORDER BY r.created_at DESC, r.id DESC
        LIMIT $2 OFFSET $3
    `, movieID, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MovieRating, 0)
	for rows.Next() {
		var item domain.MovieRating
		err := rows.Scan(
			&item.ID, &item.UserID, &item.MovieID, &item.Value, &item.Review,
			&item.CreatedAt, &item.ModifiedAt,
			&item.FirstName, &item.LastName,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByUser returns ratings posted by a user together with a movie summary.
func (r *RatingsRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.UserRating, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT r.id, r.user_id, r.movie_id, r.rating, r.review, r.created_at, r.modified_at,
               m.name, m.year
        FROM ratings r
        JOIN movies m ON m.id = r.movie_id
        WHERE r.user_id = $1
        ORDER BY r.created_at DESC, r.id DESC
        LIMIT $2 OFFSET $3
    `, userID, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.UserRating, 0)
	for rows.Next() {
		var item domain.UserRating
		err := rows.Scan(
			&item.ID, &item.UserID, &item.MovieID, &item.Value, &item.Review,
			&item.CreatedAt, &item.ModifiedAt,
			&item.MovieName, &item.MovieYear,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Get retrieves a rating for a specific user/movie combination.
func (r *RatingsRepository) Get(ctx context.Context, movieID, userID string) (domain.Rating, error) {
	var rating domain.Rating
	err := r.pool.QueryRow(ctx, `
        SELECT id, user_id, movie_id, rating, review, created_at, modified_at
        FROM ratings
        WHERE movie_id = $1 AND user_id = $2
    `, movieID, userID).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.MovieID,
		&rating.Value,
		&rating.Review,
		&rating.CreatedAt,
		&rating.ModifiedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}
