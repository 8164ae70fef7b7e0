// internal/api/notification/store.go
package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"membership-backend/internal/models"
)

// Store persists notifications and their per-user read state. The
// visibility predicate (broadcast flag OR explicit recipient row) is
// evaluated inside the store so feed queries stay a single round trip.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id string) (*models.Notification, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Notification, int, error)
	ListVisibleTo(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, int, error)
	CountUnreadFor(ctx context.Context, userID string) (int, error)
	ListUnreadIDsFor(ctx context.Context, userID string) ([]string, error)
	// AddRead atomically adds the user to the notification's read set.
	// It reports whether a new row was inserted (false means the user had
	// already read it).
	AddRead(ctx context.Context, notificationID, userID string) (bool, error)
}

// ErrNotFound is returned by Get when no notification has the given id.
var ErrNotFound = sql.ErrNoRows

// PostgresStore implements Store on top of PostgreSQL join tables.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Store backed by the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const visibleWhere = `(n.is_for_all_users
	OR EXISTS (
		SELECT 1 FROM notification_recipients r
		WHERE r.notification_id = n.id AND r.user_id = $1
	))`

// Create writes the notification and its recipient rows in one transaction.
// Either everything lands or nothing does.
func (s *PostgresStore) Create(ctx context.Context, n *models.Notification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create notification: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notifications
			(id, title, message, category, priority, link, image, image_type, is_for_all_users, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		n.ID, n.Title, n.Message, n.Category, n.Priority,
		nullable(n.Link), n.Image, n.ImageType, n.IsForAllUsers,
		nullable(n.CreatedBy), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	for _, userID := range n.Recipients {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO notification_recipients (notification_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			n.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("insert recipient: %w", err)
		}
	}

	return tx.Commit()
}

// Get loads a single notification with its recipient and read sets.
func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Notification, error) {
	n := &models.Notification{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, message, category, priority,
		       COALESCE(link, ''), image, image_type,
		       is_for_all_users, COALESCE(created_by::text, ''), created_at
		FROM notifications
		WHERE id = $1`, id,
	).Scan(
		&n.ID, &n.Title, &n.Message, &n.Category, &n.Priority,
		&n.Link, &n.Image, &n.ImageType,
		&n.IsForAllUsers, &n.CreatedBy, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if n.Recipients, err = s.listSet(ctx,
		`SELECT user_id FROM notification_recipients WHERE notification_id = $1`, id); err != nil {
		return nil, err
	}
	if n.ReadBy, err = s.listSet(ctx,
		`SELECT user_id FROM notification_reads WHERE notification_id = $1`, id); err != nil {
		return nil, err
	}

	return n, nil
}

// Delete removes the notification. Recipient and read rows go with it via
// ON DELETE CASCADE. Returns false when no row matched.
func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListAll returns every notification newest-first, for the admin listing.
func (s *PostgresStore) ListAll(ctx context.Context, limit, offset int) ([]*models.Notification, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.title, n.message, n.category, n.priority,
		       COALESCE(n.link, ''), n.image, n.image_type,
		       n.is_for_all_users, COALESCE(n.created_by::text, ''), n.created_at,
		       COALESCE(rec.user_ids, '{}'), COALESCE(rd.user_ids, '{}')
		FROM notifications n
		LEFT JOIN LATERAL (
			SELECT array_agg(user_id::text) AS user_ids
			FROM notification_recipients WHERE notification_id = n.id
		) rec ON true
		LEFT JOIN LATERAL (
			SELECT array_agg(user_id::text) AS user_ids
			FROM notification_reads WHERE notification_id = n.id
		) rd ON true
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items, err := scanNotifications(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListVisibleTo returns the user's feed newest-first with a total count of
// everything visible to them.
func (s *PostgresStore) ListVisibleTo(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications n WHERE `+visibleWhere, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count visible notifications: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.title, n.message, n.category, n.priority,
		       COALESCE(n.link, ''), n.image, n.image_type,
		       n.is_for_all_users, COALESCE(n.created_by::text, ''), n.created_at,
		       COALESCE(rec.user_ids, '{}'), COALESCE(rd.user_ids, '{}')
		FROM notifications n
		LEFT JOIN LATERAL (
			SELECT array_agg(user_id::text) AS user_ids
			FROM notification_recipients WHERE notification_id = n.id
		) rec ON true
		LEFT JOIN LATERAL (
			SELECT array_agg(user_id::text) AS user_ids
			FROM notification_reads WHERE notification_id = n.id
		) rd ON true
		WHERE `+visibleWhere+`
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list visible notifications: %w", err)
	}
	defer rows.Close()

	items, err := scanNotifications(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountUnreadFor counts notifications visible to the user that they have
// not yet read.
func (s *PostgresStore) CountUnreadFor(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM notifications n
		WHERE `+visibleWhere+`
		AND NOT EXISTS (
			SELECT 1 FROM notification_reads rd
			WHERE rd.notification_id = n.id AND rd.user_id = $1
		)`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// ListUnreadIDsFor returns the ids of every unread visible notification.
func (s *PostgresStore) ListUnreadIDsFor(ctx context.Context, userID string) ([]string, error) {
	return s.listSet(ctx, `
		SELECT n.id
		FROM notifications n
		WHERE `+visibleWhere+`
		AND NOT EXISTS (
			SELECT 1 FROM notification_reads rd
			WHERE rd.notification_id = n.id AND rd.user_id = $1
		)
		ORDER BY n.created_at DESC, n.id DESC`, userID)
}

// AddRead inserts into the read set. ON CONFLICT DO NOTHING makes the
// operation an atomic set-add: concurrent calls for the same pair cannot
// lose the update, and a repeat call is a no-op.
func (s *PostgresStore) AddRead(ctx context.Context, notificationID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_reads (notification_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		notificationID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("add read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *PostgresStore) listSet(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanNotifications(rows *sql.Rows) ([]*models.Notification, error) {
	items := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		var recipients, readBy pq.StringArray
		err := rows.Scan(
			&n.ID, &n.Title, &n.Message, &n.Category, &n.Priority,
			&n.Link, &n.Image, &n.ImageType,
			&n.IsForAllUsers, &n.CreatedBy, &n.CreatedAt,
			&recipients, &readBy,
		)
		if err != nil {
			return nil, err
		}
		n.Recipients = []string(recipients)
		n.ReadBy = []string(readBy)
		items = append(items, n)
	}
	return items, rows.Err()
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
