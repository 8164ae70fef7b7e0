// internal/models/membership.go
package models

import "time"

// Membership plans offered to members.
const (
	PlanAnnual   = "annual"
	PlanLifetime = "lifetime"
	PlanStudent  = "student"
)

// Membership represents a paid membership record. MembershipID is the
// human-facing identifier (e.g. CIS20260042), distinct from the row ID.
type Membership struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"userId" db:"user_id"`
	MembershipID  string    `json:"membershipId" db:"membership_id"`
	Plan          string    `json:"plan" db:"plan"`
	PaymentStatus string    `json:"paymentStatus" db:"payment_status"`
	Amount        float64   `json:"amount" db:"amount"`
	StartDate     time.Time `json:"startDate" db:"start_date"`
	ExpiryDate    time.Time `json:"expiryDate" db:"expiry_date"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// IsActive reports whether the membership has not yet expired.
func (m *Membership) IsActive(now time.Time) bool {
	return now.Before(m.ExpiryDate)
}
