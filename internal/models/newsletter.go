// internal/models/newsletter.go
package models

import "time"

// NewsletterSubscriber is a standalone mailing-list entry. Subscription
// does not require an account.
type NewsletterSubscriber struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	SubscribedAt time.Time `json:"subscribedAt" db:"subscribed_at"`
}
