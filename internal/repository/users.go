package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yify/yify-api/internal/domain"
)

// UsersRepository provides persistence helpers for user accounts.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `
    id,
    email,
    password,
    first_name,
    last_name,
    created_at,
    modified_at
`

// UserCreateParams bundles the fields required to create an account. Password
// must already be hashed by the caller.
type UserCreateParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

// UserUpdateParams carries the optional fields of a partial profile update.
type UserUpdateParams struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// Create inserts a new account row. Email is stored lower-cased; a duplicate
// email surfaces as ErrConflict from the storage constraint.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	query := fmt.Sprintf(`
        INSERT INTO users (id, email, password, first_name, last_name)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, userColumns)

	row := r.pool.QueryRow(ctx, query,
		uuid.NewString(),
		normalizeEmail(params.Email),
		params.PasswordHash,
		params.FirstName,
		params.LastName,
	)
	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, translateConstraint(err)
	}
	return user, nil
}

// GetByID fetches an account by its identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetByEmail fetches an account by email, case-insensitively.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	user, err := scanUser(r.pool.QueryRow(ctx, query, normalizeEmail(email)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Update applies a partial profile update and returns the stored entity.
func (r *UsersRepository) Update(ctx context.Context, id string, params UserUpdateParams) (domain.User, error) {
	var email *string
	if params.Email != nil {
		normalized := normalizeEmail(*params.Email)
		email = &normalized
	}

	query := fmt.Sprintf(`
        UPDATE users
        SET email = COALESCE($2, email),
            first_name = COALESCE($3, first_name),
            last_name = COALESCE($4, last_name),
            modified_at = now()
        WHERE id = $1
        RETURNING %s
    `, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, email, params.FirstName, params.LastName))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, translateConstraint(err)
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UsersRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
        UPDATE users SET password = $2, modified_at = now() WHERE id = $1
    `, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an account permanently. Dependent movies, ratings, and
// requests cascade in the database.
func (r *UsersRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
		&user.ModifiedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
