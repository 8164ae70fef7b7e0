// internal/api/membership/service_test.go
package membership

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/common/logger"
	"membership-backend/internal/models"
)

// ==========================
// In-Memory Store
// ==========================

type memStore struct {
	mu    sync.Mutex
	items []*models.Membership
}

func (m *memStore) Create(_ context.Context, mem *models.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *mem
	m.items = append(m.items, &cp)
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]*models.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Membership{}
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			cp := *m.items[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) NextSequence(_ context.Context, year int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, it := range m.items {
		if it.CreatedAt.Year() == year {
			count++
		}
	}
	return count + 1, nil
}

// ==========================
// Membership Tests
// ==========================

func TestCreate_GeneratesSequentialIDsAndTerm(t *testing.T) {
	svc := NewService(&memStore{}, logger.NewTestLogger(t))
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	first, err := svc.Create(context.Background(), "user-1", CreateRequest{Plan: models.PlanAnnual, Amount: 1500})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "user-2", CreateRequest{Plan: models.PlanAnnual, Amount: 1500})
	require.NoError(t, err)

	assert.Equal(t, "CIS20260001", first.MembershipID)
	assert.Equal(t, "CIS20260002", second.MembershipID)
	assert.Equal(t, "completed", first.PaymentStatus)
	assert.Equal(t, time.Date(2027, 3, 15, 10, 0, 0, 0, time.UTC), first.ExpiryDate)
	assert.True(t, first.IsActive(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, first.IsActive(time.Date(2027, 4, 1, 0, 0, 0, 0, time.UTC)))
}

// collideOnceStore rejects the first insert with a unique violation, as
// a concurrent create winning the same sequence number would.
type collideOnceStore struct {
	memStore
	collided bool
}

func (c *collideOnceStore) Create(ctx context.Context, mem *models.Membership) error {
	if !c.collided {
		c.collided = true
		return &pq.Error{Code: "23505", Constraint: "memberships_membership_id_key"}
	}
	return c.memStore.Create(ctx, mem)
}

func TestCreate_RetriesOnSequenceCollision(t *testing.T) {
	svc := NewService(&collideOnceStore{}, logger.NewTestLogger(t))
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	m, err := svc.Create(context.Background(), "user-1", CreateRequest{Plan: models.PlanAnnual, Amount: 1500})
	require.NoError(t, err)
	assert.Equal(t, "CIS20260001", m.MembershipID)
}

func TestCreate_RejectsBadInput(t *testing.T) {
	svc := NewService(&memStore{}, logger.NewTestLogger(t))

	_, err := svc.Create(context.Background(), "user-1", CreateRequest{Plan: "platinum", Amount: 10})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), "user-1", CreateRequest{Plan: models.PlanAnnual, Amount: -5})
	assert.Error(t, err)
}

func TestListMine_OnlyOwnRecords(t *testing.T) {
	svc := NewService(&memStore{}, logger.NewTestLogger(t))

	_, err := svc.Create(context.Background(), "user-1", CreateRequest{Plan: models.PlanAnnual, Amount: 10})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "user-2", CreateRequest{Plan: models.PlanStudent, Amount: 5})
	require.NoError(t, err)

	mine, err := svc.ListMine(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "user-1", mine[0].UserID)
}

func TestFormatMembershipID(t *testing.T) {
	assert.Equal(t, "CIS20260042", FormatMembershipID(2026, 42))
	assert.Equal(t, "CIS20261234", FormatMembershipID(2026, 1234))
}
