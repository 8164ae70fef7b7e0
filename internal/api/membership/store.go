// internal/api/membership/store.go
package membership

import (
	"context"
	"database/sql"

	"membership-backend/internal/models"
)

// Store persists membership records.
type Store interface {
	Create(ctx context.Context, m *models.Membership) error
	ListByUser(ctx context.Context, userID string) ([]*models.Membership, error)
	// NextSequence returns the next per-year counter used to build the
	// human-facing membership id.
	NextSequence(ctx context.Context, year int) (int, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, m *models.Membership) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memberships
			(id, user_id, membership_id, plan, payment_status, amount, start_date, expiry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.UserID, m.MembershipID, m.Plan, m.PaymentStatus, m.Amount,
		m.StartDate, m.ExpiryDate, m.CreatedAt,
	)
	return err
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*models.Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, membership_id, plan, payment_status, amount, start_date, expiry_date, created_at
		FROM memberships
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemberships(rows)
}

// NextSequence counts this year's memberships. The unique constraint on
// membership_id catches the rare collision from concurrent creates; the
// caller retries once on conflict.
func (s *PostgresStore) NextSequence(ctx context.Context, year int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM memberships
		WHERE EXTRACT(YEAR FROM created_at) = $1`, year,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

func scanMemberships(rows *sql.Rows) ([]*models.Membership, error) {
	out := []*models.Membership{}
	for rows.Next() {
		m := &models.Membership{}
		err := rows.Scan(
			&m.ID, &m.UserID, &m.MembershipID, &m.Plan, &m.PaymentStatus,
			&m.Amount, &m.StartDate, &m.ExpiryDate, &m.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
