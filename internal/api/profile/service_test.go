// internal/api/profile/service_test.go
package profile

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/common/logger"
	"membership-backend/internal/models"
)

// ==========================
// In-Memory Store
// ==========================

type memStore struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
	settings map[string]*models.UserSettings
}

func newMemStore() *memStore {
	return &memStore{
		profiles: map[string]*models.Profile{},
		settings: map[string]*models.UserSettings{},
	}
}

func (m *memStore) GetByUserID(_ context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Upsert(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *memStore) GetSettings(_ context.Context, userID string) (*models.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) SaveSettings(_ context.Context, s *models.UserSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.settings[s.UserID] = &cp
	return nil
}

// ==========================
// Profile Tests
// ==========================

func TestGet_CreatesEmptyProfileOnFirstAccess(t *testing.T) {
	svc := NewService(newMemStore(), logger.NewTestLogger(t))

	p, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.UserID)
	assert.Empty(t, p.FullName)

	// Second access returns the same row, not another fresh one
	again, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
}

func TestUpdate_RoundTripsFields(t *testing.T) {
	svc := NewService(newMemStore(), logger.NewTestLogger(t))

	p, err := svc.Update(context.Background(), "user-1", UpdateRequest{
		FullName:   "Asha Iyer",
		Phone:      "+915550001111",
		City:       "Chennai",
		Occupation: "Engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Iyer", p.FullName)

	got, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Chennai", got.City)
	assert.Equal(t, "Engineer", got.Occupation)
}

func TestUpdate_AvatarHandling(t *testing.T) {
	svc := NewService(newMemStore(), logger.NewTestLogger(t))

	p, err := svc.Update(context.Background(), "user-1", UpdateRequest{
		FullName: "A",
		Avatar:   "data:image/jpeg;base64,aGVsbG8=",
	})
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", p.Avatar)

	// Malformed avatar degrades to none rather than erroring
	p, err = svc.Update(context.Background(), "user-1", UpdateRequest{
		FullName: "A",
		Avatar:   "totally-not-a-data-uri",
	})
	require.NoError(t, err)
	assert.Empty(t, p.Avatar)
}

// ==========================
// Settings Tests
// ==========================

func TestSettings_DefaultsWhenNeverSaved(t *testing.T) {
	svc := NewService(newMemStore(), logger.NewTestLogger(t))

	st, err := svc.GetSettings(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, st.EmailNotifications)
	assert.True(t, st.EventReminders)
	assert.True(t, st.Newsletter)
	assert.False(t, st.DarkMode)
}

func TestSettings_PartialUpdateKeepsOtherFlags(t *testing.T) {
	svc := NewService(newMemStore(), logger.NewTestLogger(t))

	off := false
	st, err := svc.UpdateSettings(context.Background(), "user-1", SettingsRequest{
		EmailNotifications: &off,
	})
	require.NoError(t, err)
	assert.False(t, st.EmailNotifications)
	assert.True(t, st.Newsletter, "untouched flags keep their values")

	on := true
	st, err = svc.UpdateSettings(context.Background(), "user-1", SettingsRequest{DarkMode: &on})
	require.NoError(t, err)
	assert.True(t, st.DarkMode)
	assert.False(t, st.EmailNotifications, "earlier change persists")
}
