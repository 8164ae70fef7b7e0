// internal/api/notification/store_test.go
package notification

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/models"
)

func buildNotification(id string, recipients ...string) *models.Notification {
	return &models.Notification{
		ID:         id,
		Title:      "title",
		Message:    "message",
		Category:   models.CategorySystem,
		Priority:   models.PriorityMedium,
		Recipients: recipients,
		CreatedAt:  time.Now().UTC(),
	}
}

// ==========================
// Read-Set SQL Tests
// ==========================

func TestPostgresStore_AddRead_NewRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO notification_reads").
		WithArgs("notif-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgresStore(db)
	inserted, err := store.AddRead(context.Background(), "notif-1", "user-1")

	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AddRead_AlreadyRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// ON CONFLICT DO NOTHING reports zero affected rows on a repeat
	mock.ExpectExec("INSERT INTO notification_reads").
		WithArgs("notif-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPostgresStore(db)
	inserted, err := store.AddRead(context.Background(), "notif-1", "user-1")

	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Deletion SQL Tests
// ==========================

func TestPostgresStore_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantOK   bool
	}{
		{"existing row", 1, true},
		{"missing row", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec("DELETE FROM notifications").
				WithArgs("notif-1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			store := NewPostgresStore(db)
			ok, err := store.Delete(context.Background(), "notif-1")

			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ==========================
// Unread-Count SQL Tests
// ==========================

func TestPostgresStore_CountUnreadFor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	store := NewPostgresStore(db)
	count, err := store.CountUnreadFor(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Creation SQL Tests
// ==========================

func TestPostgresStore_Create_TransactionalWithRecipients(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notification_recipients").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notification_recipients").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewPostgresStore(db)
	n := buildNotification("notif-1", "user-a", "user-b")
	require.NoError(t, store.Create(context.Background(), n))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create_RollsBackOnRecipientFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notification_recipients").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	store := NewPostgresStore(db)
	n := buildNotification("notif-1", "user-a")
	assert.Error(t, store.Create(context.Background(), n))
	assert.NoError(t, mock.ExpectationsWereMet())
}
