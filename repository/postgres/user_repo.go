package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
	SELECT id, name, email, created_at, updated_at
	FROM users
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (id, name, email, created_at, updated_at)
	VALUES ($1, $2, $3, NOW(), NOW())
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		email = EXCLUDED.email,
		updated_at = NOW()
	RETURNING created_at, updated_at
	`

	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query, user.ID, user.Name, user.Email).Scan(&createdAt, &updatedAt); err != nil {
		return err
	}
	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}
