// internal/api/auth/store.go
package auth

import (
	"context"
	"database/sql"
	"time"

	"membership-backend/internal/models"
)

// UserStore persists account records.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetVerified(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = sql.ErrNoRows

// PostgresUserStore implements UserStore against the users table.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, is_admin, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		u.ID, u.Email, u.PasswordHash, u.IsAdmin, u.IsVerified, u.CreatedAt,
	)
	return err
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_admin, is_verified, created_at, updated_at
		FROM users WHERE email = $1`, email))
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_admin, is_verified, created_at, updated_at
		FROM users WHERE id = $1`, id))
}

func (s *PostgresUserStore) SetVerified(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET is_verified = TRUE, updated_at = $2 WHERE email = $1`,
		email, time.Now().UTC(),
	)
	return err
}

func (s *PostgresUserStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = $3 WHERE email = $1`,
		email, passwordHash, time.Now().UTC(),
	)
	return err
}

func (s *PostgresUserStore) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.IsVerified,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}
