package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yify/yify-api/internal/domain"
)

// RequestsRepository provides helpers for movie requests.
type RequestsRepository struct {
	pool *pgxpool.Pool
}

const requestColumns = `id, user_id, name, created_at, modified_at`

// Create inserts a new movie request. A duplicate name surfaces as ErrConflict.
func (r *RequestsRepository) Create(ctx context.Context, userID, name string) (domain.Request, error) {
	request, err := scanRequest(r.pool.QueryRow(ctx, `
        INSERT INTO requests (id, user_id, name)
        VALUES ($1,$2,$3)
        RETURNING `+requestColumns, uuid.NewString(), userID, name))
	if err != nil {
		return domain.Request{}, translateConstraint(err)
	}
	return request, nil
}

// GetByID fetches a request by its identifier.
func (r *RequestsRepository) GetByID(ctx context.Context, id string) (domain.Request, error) {
	request, err := scanRequest(r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Request{}, ErrNotFound
		}
		return domain.Request{}, err
	}
	return request, nil
}

// List returns requests whose movie name contains the search term. An empty
// search matches everything.
func (r *RequestsRepository) List(ctx context.Context, search string, limit, offset int) ([]domain.Request, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+requestColumns+` FROM requests
        WHERE name ILIKE $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, "%"+search+"%", clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Request, 0)
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByUser returns requests raised by the given user.
func (r *RequestsRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Request, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+requestColumns+` FROM requests
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, userID, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Request, 0)
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a request permanently.
func (r *RequestsRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRequest(row pgx.Row) (domain.Request, error) {
	var request domain.Request
	err := row.Scan(
		&request.ID,
		&request.UserID,
		&request.Name,
		&request.CreatedAt,
		&request.ModifiedAt,
	)
	if err != nil {
		return domain.Request{}, err
	}
	return request, nil
}
