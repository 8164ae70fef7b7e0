// internal/api/admin/store.go
package admin

import (
	"context"
	"database/sql"
	"time"

	"membership-backend/internal/models"
)

// UserRecord is a user joined with their profile name for the admin
// console listing.
type UserRecord struct {
	models.User
	FullName string `json:"fullName"`
}

// Store is the admin console's view over users, memberships and
// profiles.
type Store interface {
	ListUsers(ctx context.Context) ([]*UserRecord, error)
	GetUserEmail(ctx context.Context, userID string) (string, error)
	// DeleteUser removes the user; profiles, settings, memberships and
	// notification read rows follow via ON DELETE CASCADE.
	DeleteUser(ctx context.Context, userID string) (bool, error)

	ListMemberships(ctx context.Context) ([]*models.Membership, error)
	GetMembership(ctx context.Context, id string) (*models.Membership, error)
	UpdateMembership(ctx context.Context, id string, plan, paymentStatus string, expiry time.Time) (bool, error)
	DeleteMembership(ctx context.Context, id string) (bool, error)

	ListProfiles(ctx context.Context) ([]*models.Profile, error)
	GetProfile(ctx context.Context, profileID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) (bool, error)
	// GetProfileOwner resolves the user that owns a profile row.
	GetProfileOwner(ctx context.Context, profileID string) (string, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]*UserRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.email, u.is_admin, u.is_verified, u.created_at, u.updated_at,
		       COALESCE(p.full_name, '')
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*UserRecord{}
	for rows.Next() {
		r := &UserRecord{}
		err := rows.Scan(
			&r.ID, &r.Email, &r.IsAdmin, &r.IsVerified,
			&r.CreatedAt, &r.UpdatedAt, &r.FullName,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetUserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := s.db.QueryRowContext(ctx,
		`SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	return email, err
}

func (s *PostgresStore) DeleteUser(ctx context.Context, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (s *PostgresStore) ListMemberships(ctx context.Context) ([]*models.Membership, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, membership_id, plan, payment_status, amount, start_date, expiry_date, created_at
		FROM memberships
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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

func (s *PostgresStore) GetMembership(ctx context.Context, id string) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, membership_id, plan, payment_status, amount, start_date, expiry_date, created_at
		FROM memberships WHERE id = $1`, id,
	).Scan(
		&m.ID, &m.UserID, &m.MembershipID, &m.Plan, &m.PaymentStatus,
		&m.Amount, &m.StartDate, &m.ExpiryDate, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *PostgresStore) UpdateMembership(ctx context.Context, id string, plan, paymentStatus string, expiry time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE memberships
		SET plan = $2, payment_status = $3, expiry_date = $4
		WHERE id = $1`,
		id, plan, paymentStatus, expiry,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (s *PostgresStore) DeleteMembership(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, full_name, phone, address, city, state, pincode,
		       occupation, organization, avatar, avatar_type, created_at, updated_at
		FROM profiles
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Profile{}
	for rows.Next() {
		p := &models.Profile{}
		err := rows.Scan(
			&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.Address, &p.City,
			&p.State, &p.Pincode, &p.Occupation, &p.Organization,
			&p.Avatar, &p.AvatarType, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	p := &models.Profile{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, full_name, phone, address, city, state, pincode,
		       occupation, organization, avatar, avatar_type, created_at, updated_at
		FROM profiles WHERE id = $1`, profileID,
	).Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.Address, &p.City,
		&p.State, &p.Pincode, &p.Occupation, &p.Organization,
		&p.Avatar, &p.AvatarType, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProfile rewrites the editable text fields of a profile. The
// avatar is left untouched so a console edit cannot clobber an upload.
func (s *PostgresStore) UpdateProfile(ctx context.Context, p *models.Profile) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET full_name = $2, phone = $3, address = $4, city = $5, state = $6,
		    pincode = $7, occupation = $8, organization = $9, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.FullName, p.Phone, p.Address, p.City, p.State,
		p.Pincode, p.Occupation, p.Organization,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (s *PostgresStore) GetProfileOwner(ctx context.Context, profileID string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id FROM profiles WHERE id = $1`, profileID).Scan(&userID)
	return userID, err
}
