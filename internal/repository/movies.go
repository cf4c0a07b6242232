package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yify/yify-api/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    added_by,
    name,
    year,
    description,
    extra,
    ratings_count,
    ratings_sum,
    created_at,
    modified_at
`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	AddedBy     string
	Name        string
	Year        int
	Description *string
	Extra       map[string]any
}

// MovieUpdateParams carries the optional fields of a partial movie update.
type MovieUpdateParams struct {
	Name        *string
	Year        *int
	Description *string
	Extra       map[string]any
}

// Create inserts a new movie row and returns the stored entity. Duplicate
// names surface as ErrConflict.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	extraJSON, err := marshalExtra(params.Extra)
	if err != nil {
		return domain.Movie{}, err
	}

	query := fmt.Sprintf(`
        INSERT INTO movies (id, added_by, name, year, description, extra)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query,
		uuid.NewString(), params.AddedBy, params.Name, params.Year, params.Description, extraJSON)
	movie, err := scanMovie(row)
	if err != nil {
		return domain.Movie{}, translateConstraint(err)
	}
	return movie, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// GetByName fetches a movie by its unique name.
func (r *MoviesRepository) GetByName(ctx context.Context, name string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE name = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// List returns movies ordered by creation time, newest first.
func (r *MoviesRepository) List(ctx context.Context, limit, offset int) ([]domain.Movie, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM movies
        ORDER BY created_at DESC, id DESC
        LIMIT $1 OFFSET $2
    `, movieColumns)
	return r.queryMovies(ctx, query, clampLimit(limit), offset)
}

// ListByUser returns movies added by a specific user.
func (r *MoviesRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Movie, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM movies
        WHERE added_by = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, movieColumns)
	return r.queryMovies(ctx, query, userID, clampLimit(limit), offset)
}

// Update applies a partial update and returns the stored entity. A nil Extra
// leaves the stored blob untouched.
func (r *MoviesRepository) Update(ctx context.Context, id string, params MovieUpdateParams) (domain.Movie, error) {
	var extraJSON []byte
	if params.Extra != nil {
		payload, err := marshalExtra(params.Extra)
		if err != nil {
			return domain.Movie{}, err
		}
		extraJSON = payload
	}

	query := fmt.Sprintf(`
        UPDATE movies
        SET name = COALESCE($2, name),
            year = COALESCE($3, year),
            description = COALESCE($4, description),
            extra = COALESCE($5, extra),
            modified_at = now()
        WHERE id = $1
        RETURNING %s
    `, movieColumns)

	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id, params.Name, params.Year, params.Description, extraJSON))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, translateConstraint(err)
	}
	return movie, nil
}

// Delete removes a movie permanently; its ratings cascade in the database.
func (r *MoviesRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MoviesRepository) queryMovies(ctx context.Context, query string, args ...interface{}) ([]domain.Movie, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie     domain.Movie
		extraJSON []byte
	)

	err := row.Scan(
		&movie.ID,
		&movie.AddedBy,
		&movie.Name,
		&movie.Year,
		&movie.Description,
		&extraJSON,
		&movie.Stats.Count,
		&movie.Stats.Sum,
		&movie.CreatedAt,
		&movie.ModifiedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	if len(extraJSON) > 0 {
		if err := json.Unmarshal(extraJSON, &movie.Extra); err != nil {
			return domain.Movie{}, err
		}
	}
	return movie, nil
}

func marshalExtra(extra map[string]any) ([]byte, error) {
	if extra == nil {
		extra = map[string]any{}
	}
	return json.Marshal(extra)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
