// internal/api/membership/service.go
package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apierrors "membership-backend/internal/common/errors"
	"membership-backend/internal/common/logger"
	"membership-backend/internal/models"
)

// CreateRequest is the payload for taking out a membership. Payment is
// handled upstream; by the time this endpoint is called the payment has
// already completed.
type CreateRequest struct {
	Plan   string  `json:"plan"`
	Amount float64 `json:"amount"`
}

// Service creates and lists membership records.
type Service struct {
	store Store
	log   logger.Logger
	now   func() time.Time
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Create issues a new membership with a generated CIS id and a one-year
// term starting now.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*models.Membership, error) {
	if !validPlan(req.Plan) {
		return nil, apierrors.NewValidationError("unknown plan: " + req.Plan)
	}
	if req.Amount < 0 {
		return nil, apierrors.NewValidationError("amount cannot be negative")
	}

	now := s.now().UTC()

	var m *models.Membership
	// Two attempts: a concurrent create can win the same sequence
	// number, which the unique constraint on membership_id rejects.
	for attempt := 0; ; attempt++ {
		seq, err := s.store.NextSequence(ctx, now.Year())
		if err != nil {
			return nil, apierrors.NewStoreError(err)
		}

		m = &models.Membership{
			ID:            uuid.NewString(),
			UserID:        userID,
			MembershipID:  FormatMembershipID(now.Year(), seq),
			Plan:          req.Plan,
			PaymentStatus: "completed",
			Amount:        req.Amount,
			StartDate:     now,
			ExpiryDate:    now.AddDate(1, 0, 0),
			CreatedAt:     now,
		}

		err = s.store.Create(ctx, m)
		if err == nil {
			break
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && attempt == 0 {
			continue
		}
		return nil, apierrors.NewStoreError(err)
	}

	s.log.Info("membership created", map[string]interface{}{
		"membershipId": m.MembershipID,
		"plan":         m.Plan,
	})
	return m, nil
}

// ListMine returns the caller's memberships newest-first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]*models.Membership, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	return list, nil
}

// FormatMembershipID builds the human-facing id: CIS, the four-digit
// year, then a four-digit sequence (CIS20260042).
func FormatMembershipID(year, seq int) string {
	return fmt.Sprintf("CIS%d%04d", year, seq)
}

func validPlan(plan string) bool {
	switch plan {
	case models.PlanAnnual, models.PlanLifetime, models.PlanStudent:
		return true
	}
	return false
}
