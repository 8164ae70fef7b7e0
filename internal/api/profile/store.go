// internal/api/profile/store.go
package profile

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"membership-backend/internal/models"
)

// Store persists profiles and user settings.
type Store interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) error
	GetSettings(ctx context.Context, userID string) (*models.UserSettings, error)
	SaveSettings(ctx context.Context, s *models.UserSettings) error
}

var ErrProfileNotFound = sql.ErrNoRows

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	p := &models.Profile{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, full_name, phone, address, city, state, pincode,
		       occupation, organization, avatar, avatar_type, created_at, updated_at
		FROM profiles WHERE user_id = $1`, userID,
	).Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.Address, &p.City, &p.State,
		&p.Pincode, &p.Occupation, &p.Organization, &p.Avatar, &p.AvatarType,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Upsert writes the profile keyed on user_id so a PUT works whether or
// not a row exists yet.
func (s *PostgresStore) Upsert(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles
			(id, user_id, full_name, phone, address, city, state, pincode,
			 occupation, organization, avatar, avatar_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			pincode = EXCLUDED.pincode,
			occupation = EXCLUDED.occupation,
			organization = EXCLUDED.organization,
			avatar = EXCLUDED.avatar,
			avatar_type = EXCLUDED.avatar_type,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.UserID, p.FullName, p.Phone, p.Address, p.City, p.State,
		p.Pincode, p.Occupation, p.Organization, p.Avatar, p.AvatarType, now,
	)
	return err
}

func (s *PostgresStore) GetSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	out := &models.UserSettings{}
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, email_notifications, event_reminders, newsletter, dark_mode, updated_at
		FROM user_settings WHERE user_id = $1`, userID,
	).Scan(
		&out.UserID, &out.EmailNotifications, &out.EventReminders,
		&out.Newsletter, &out.DarkMode, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) SaveSettings(ctx context.Context, st *models.UserSettings) error {
	st.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, email_notifications, event_reminders, newsletter, dark_mode, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			email_notifications = EXCLUDED.email_notifications,
			event_reminders = EXCLUDED.event_reminders,
			newsletter = EXCLUDED.newsletter,
			dark_mode = EXCLUDED.dark_mode,
			updated_at = EXCLUDED.updated_at`,
		st.UserID, st.EmailNotifications, st.EventReminders, st.Newsletter,
		st.DarkMode, st.UpdatedAt,
	)
	return err
}
