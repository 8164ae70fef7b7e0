// internal/models/notification.go
package models

import "time"

// Notification categories and priorities accepted on create.
const (
	CategorySystem       = "system"
	CategoryMembership   = "membership"
	CategoryEvent        = "event"
	CategoryAdmin        = "admin"
	CategoryAnnouncement = "announcement"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Notification is a single stored notification. A broadcast sets
// IsForAllUsers and keeps Recipients empty; a targeted notification lists
// its audience in Recipients. ReadBy grows as users mark it read, in both
// cases. There is exactly one row per notification regardless of how many
// users can see it.
type Notification struct {
	ID            string     `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Message       string     `json:"message" db:"message"`
	Category      string     `json:"category" db:"category"`
	Priority      string     `json:"priority" db:"priority"`
	Link          string     `json:"link,omitempty" db:"link"`
	Image         *string    `json:"-" db:"image"`
	ImageType     *string    `json:"-" db:"image_type"`
	IsForAllUsers bool       `json:"isForAllUsers" db:"is_for_all_users"`
	Recipients    []string   `json:"recipients,omitempty"`
	ReadBy        []string   `json:"-"`
	CreatedBy     string     `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// VisibleTo reports whether the notification belongs in the user's feed.
func (n *Notification) VisibleTo(userID string) bool {
	if n.IsForAllUsers {
		return true
	}
	for _, r := range n.Recipients {
		if r == userID {
			return true
		}
	}
	return false
}

// ReadByUser reports whether the user has marked this notification read.
func (n *Notification) ReadByUser(userID string) bool {
	for _, r := range n.ReadBy {
		if r == userID {
			return true
		}
	}
	return false
}

// ImageURL returns the attached image as a data URI, or empty when there
// is no image.
func (n *Notification) ImageURL() string {
	if n.Image == nil || n.ImageType == nil || *n.Image == "" {
		return ""
	}
	return "data:" + *n.ImageType + ";base64," + *n.Image
}

// ValidCategory reports whether the category is one of the accepted values.
func ValidCategory(c string) bool {
	switch c {
	case CategorySystem, CategoryMembership, CategoryEvent, CategoryAdmin, CategoryAnnouncement:
		return true
	}
	return false
}

// ValidPriority reports whether the priority is one of the accepted values.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
