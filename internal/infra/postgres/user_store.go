package postgres

import (
	"context"
	"errors"
	"fmt"

	"cquiz-service/internal/auth"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

// UserStore keeps accounts in the users table.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) CreateUser(ctx context.Context, user auth.User) error {
	query := `
	INSERT INTO users (uid, email, display_name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, query, user.UID, user.Email, user.DisplayName, user.PasswordHash, user.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return auth.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	query := `
	SELECT uid, email, display_name, password_hash, created_at FROM users WHERE email = $1
	`
	var user auth.User
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&user.UID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}
