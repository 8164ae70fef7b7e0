// internal/api/notification/service_test.go
package notification

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/common/logger"
	"membership-backend/internal/models"
)

// ==========================
// In-Memory Store
// ==========================

// memStore is a Store backed by maps, with the same visibility and
// set-add semantics as the SQL implementation.
type memStore struct {
	mu    sync.Mutex
	items map[string]*models.Notification
	reads map[string]map[string]bool // notificationID -> userID -> read
	order []string                   // insertion order, oldest first
}

func newMemStore() *memStore {
	return &memStore{
		items: map[string]*models.Notification{},
		reads: map[string]map[string]bool{},
	}
}

func (m *memStore) Create(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.items[n.ID] = &cp
	m.reads[n.ID] = map[string]bool{}
	m.order = append(m.order, n.ID)
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	cp.ReadBy = nil
	for userID := range m.reads[id] {
		cp.ReadBy = append(cp.ReadBy, userID)
	}
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	delete(m.reads, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *memStore) ListAll(_ context.Context, limit, offset int) ([]*models.Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sortedLocked(func(*models.Notification) bool { return true })
	return pageOf(all, limit, offset), len(all), nil
}

func (m *memStore) ListVisibleTo(_ context.Context, userID string, limit, offset int) ([]*models.Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	visible := m.sortedLocked(func(n *models.Notification) bool { return n.VisibleTo(userID) })
	return pageOf(visible, limit, offset), len(visible), nil
}

func (m *memStore) CountUnreadFor(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for id, n := range m.items {
		if n.VisibleTo(userID) && !m.reads[id][userID] {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ListUnreadIDsFor(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []string{}
	for id, n := range m.items {
		if n.VisibleTo(userID) && !m.reads[id][userID] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memStore) AddRead(_ context.Context, notificationID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.reads[notificationID]
	if !ok {
		return false, nil
	}
	if set[userID] {
		return false, nil
	}
	set[userID] = true
	return true, nil
}

func (m *memStore) sortedLocked(keep func(*models.Notification) bool) []*models.Notification {
	out := []*models.Notification{}
	for _, id := range m.order {
		n := m.items[id]
		if keep(n) {
			cp := *n
			cp.ReadBy = nil
			for userID := range m.reads[id] {
				cp.ReadBy = append(cp.ReadBy, userID)
			}
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func pageOf(items []*models.Notification, limit, offset int) []*models.Notification {
	if offset >= len(items) {
		return []*models.Notification{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ==========================
// Test Helper Functions
// ==========================

func newTestService(t *testing.T) (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, nil, logger.NewTestLogger(t)), store
}

func createReq(title string, recipients ...string) CreateRequest {
	return CreateRequest{
		Title:      title,
		Message:    "message for " + title,
		Recipients: recipients,
	}
}

// ==========================
// Fan-out Tests
// ==========================

func TestCreate_BroadcastSetsAllUsersFlag(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Create(context.Background(), createReq("Maintenance", "all"), "admin-1")
	require.NoError(t, err)

	assert.True(t, n.IsForAllUsers)
	assert.Empty(t, n.Recipients, "broadcast must not carry explicit recipients")
}

func TestCreate_AllSentinelInsideListWinsOverIDs(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Create(context.Background(), createReq("Mixed", "user-a", "all", "user-b"), "admin-1")
	require.NoError(t, err)

	assert.True(t, n.IsForAllUsers)
	assert.Empty(t, n.Recipients)
}

func TestCreate_ExplicitRecipientsDeduplicated(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Create(context.Background(), createReq("Dupes", "user-a", "user-a", "user-b"), "admin-1")
	require.NoError(t, err)

	assert.False(t, n.IsForAllUsers)
	assert.Equal(t, []string{"user-a", "user-b"}, n.Recipients)
}

func TestCreate_SingleEntityPerBroadcast(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Create(context.Background(), createReq("One row", "all"), "admin-1")
	require.NoError(t, err)

	_, total, err := store.ListAll(context.Background(), 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCreate_ValidationFailures(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"empty title", CreateRequest{Title: "  ", Message: "m", Recipients: RecipientsDirective{"all"}}},
		{"empty message", CreateRequest{Title: "t", Message: "", Recipients: RecipientsDirective{"all"}}},
		{"unknown category", CreateRequest{Title: "t", Message: "m", Category: "spam", Recipients: RecipientsDirective{"all"}}},
		{"unknown priority", CreateRequest{Title: "t", Message: "m", Priority: "urgent", Recipients: RecipientsDirective{"all"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req, "admin-1")
			assert.Error(t, err)
		})
	}
}

func TestCreate_DefaultsApplied(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Create(context.Background(), createReq("Defaults", "user-a"), "admin-1")
	require.NoError(t, err)

	assert.Equal(t, models.CategorySystem, n.Category)
	assert.Equal(t, models.PriorityMedium, n.Priority)
}

func TestCreate_MalformedImageStoredAsNull(t *testing.T) {
	svc, _ := newTestService(t)

	req := createReq("Bad image", "all")
	req.Image = "not-a-data-uri"

	n, err := svc.Create(context.Background(), req, "admin-1")
	require.NoError(t, err, "malformed image must degrade, not fail the request")
	assert.Nil(t, n.Image)
	assert.Nil(t, n.ImageType)
	assert.Equal(t, "", n.ImageURL())
}

func TestCreate_ValidImageSplitIntoPayloadAndMime(t *testing.T) {
	svc, _ := newTestService(t)

	req := createReq("Good image", "all")
	req.Image = "data:image/png;base64,aGVsbG8="

	n, err := svc.Create(context.Background(), req, "admin-1")
	require.NoError(t, err)
	require.NotNil(t, n.Image)
	require.NotNil(t, n.ImageType)
	assert.Equal(t, "aGVsbG8=", *n.Image)
	assert.Equal(t, "image/png", *n.ImageType)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", n.ImageURL())
}

// ==========================
// Visibility Tests
// ==========================

func TestListForUser_BroadcastVisibleToEveryone(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), createReq("Broadcast", "all"), "admin-1")
	require.NoError(t, err)

	for _, user := range []string{"user-a", "user-b", "never-targeted"} {
		page, err := svc.ListForUser(context.Background(), user, 1, 10)
		require.NoError(t, err)
		assert.Len(t, page.Items, 1, "user %s should see the broadcast", user)
	}
}

func TestListForUser_ExplicitRecipientsOnly(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), createReq("Targeted", "user-a", "user-b"), "admin-1")
	require.NoError(t, err)

	pageA, err := svc.ListForUser(context.Background(), "user-a", 1, 10)
	require.NoError(t, err)
	assert.Len(t, pageA.Items, 1)

	pageC, err := svc.ListForUser(context.Background(), "user-c", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, pageC.Items)
	assert.Equal(t, 0, pageC.TotalCount)
}

func TestListForUser_AnnotatesReadState(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Create(context.Background(), createReq("Annotated", "user-a"), "admin-1")
	require.NoError(t, err)

	page, err := svc.ListForUser(context.Background(), "user-a", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.False(t, page.Items[0].IsRead)

	_, err = svc.MarkRead(context.Background(), n.ID, "user-a")
	require.NoError(t, err)

	page, err = svc.ListForUser(context.Background(), "user-a", 1, 10)
	require.NoError(t, err)
	assert.True(t, page.Items[0].IsRead)
}

// ==========================
// Pagination Tests
// ==========================

func TestListForUser_Pagination(t *testing.T) {
	svc, store := newTestService(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		n := &models.Notification{
			ID:            string(rune('a'+i%26)) + "-notif",
			Title:         "n",
			Message:       "m",
			Category:      models.CategorySystem,
			Priority:      models.PriorityMedium,
			IsForAllUsers: true,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.Create(context.Background(), n))
	}

	page2, err := svc.ListForUser(context.Background(), "user-x", 2, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, page2.Page)
	assert.Equal(t, 10, page2.PageSize)
	assert.Equal(t, 25, page2.TotalCount)
	assert.Equal(t, 3, page2.TotalPages)
	assert.Len(t, page2.Items, 10)

	// Newest-first: page 2 starts at the 11th newest
	page1, err := svc.ListForUser(context.Background(), "user-x", 1, 10)
	require.NoError(t, err)
	assert.True(t, page1.Items[0].CreatedAt.After(page2.Items[0].CreatedAt))
	for i := 1; i < len(page2.Items); i++ {
		assert.False(t, page2.Items[i].CreatedAt.After(page2.Items[i-1].CreatedAt))
	}
}

func TestListForUser_DefaultsForBadPageParams(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), createReq("One", "all"), "admin-1")
	require.NoError(t, err)

	page, err := svc.ListForUser(context.Background(), "user-a", 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.PageSize)
}

// ==========================
// Read-State Tests
// ==========================

func TestMarkRead_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Create(context.Background(), createReq("Once", "user-a"), "admin-1")
	require.NoError(t, err)

	first, err := svc.MarkRead(context.Background(), n.ID, "user-a")
	require.NoError(t, err)
	second, err := svc.MarkRead(context.Background(), n.ID, "user-a")
	require.NoError(t, err)

	assert.ElementsMatch(t, first.ReadBy, second.ReadBy)
	assert.Equal(t, []string{"user-a"}, second.ReadBy)

	count, err := svc.UnreadCount(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkRead_NotVisibleReturnsNotFound(t *testing.T) {
	svc, store := newTestService(t)

	n, err := svc.Create(context.Background(), createReq("Private", "user-a"), "admin-1")
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), n.ID, "user-b")
	assert.Error(t, err)

	// readBy must be untouched
	stored, err := store.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ReadBy)
}

func TestMarkRead_UnknownIDReturnsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.MarkRead(context.Background(), "does-not-exist", "user-a")
	assert.Error(t, err)
}

func TestMarkAllRead_ZeroesUnreadCount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), createReq("First", "all"), "admin-1")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), createReq("Second", "user-a"), "admin-1")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), createReq("Not mine", "user-b"), "admin-1")
	require.NoError(t, err)

	before, err := svc.UnreadCount(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, 2, before)

	affected, err := svc.MarkAllRead(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, 2, affected)

	after, err := svc.UnreadCount(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, 0, after)

	// Stays zero until something new arrives
	again, err := svc.MarkAllRead(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, 0, again)

	_, err = svc.Create(context.Background(), createReq("New", "all"), "admin-1")
	require.NoError(t, err)
	count, err := svc.UnreadCount(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUnreadCount_PerUserIndependence(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Create(context.Background(), createReq("Maintenance", "all"), "admin-1")
	require.NoError(t, err)

	countA, err := svc.UnreadCount(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, 1, countA)

	_, err = svc.MarkRead(context.Background(), n.ID, "user-a")
	require.NoError(t, err)

	countA, err = svc.UnreadCount(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, 0, countA)

	countB, err := svc.UnreadCount(context.Background(), "user-b")
	require.NoError(t, err)
	assert.Equal(t, 1, countB, "user B's unread state is independent of A's")
}

// ==========================
// Deletion Tests
// ==========================

func TestDelete_RemovesFromFeedsAndCounts(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Create(context.Background(), createReq("Doomed", "all"), "admin-1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), n.ID))

	page, err := svc.ListForUser(context.Background(), "user-a", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	all, err := svc.ListAll(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, all.Items)

	count, err := svc.UnreadCount(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDelete_UnknownIDReturnsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), "missing")
	assert.Error(t, err)
}
