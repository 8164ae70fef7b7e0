// internal/models/profile.go
package models

import "time"

// Profile holds the member-facing details attached to a user. Avatar is
// stored as a raw base64 payload plus MIME type; AvatarURL composes the
// data URI the frontend renders.
type Profile struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"userId" db:"user_id"`
	FullName     string    `json:"fullName" db:"full_name"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	City         string    `json:"city" db:"city"`
	State        string    `json:"state" db:"state"`
	Pincode      string    `json:"pincode" db:"pincode"`
	Occupation   string    `json:"occupation" db:"occupation"`
	Organization string    `json:"organization" db:"organization"`
	Avatar       *string   `json:"-" db:"avatar"`
	AvatarType   *string   `json:"-" db:"avatar_type"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// AvatarURL returns the avatar as a data URI, or empty when no avatar is set.
func (p *Profile) AvatarURL() string {
	if p.Avatar == nil || p.AvatarType == nil || *p.Avatar == "" {
		return ""
	}
	return "data:" + *p.AvatarType + ";base64," + *p.Avatar
}

// UserSettings holds per-user preferences. Defaults favor receiving
// everything except dark mode.
type UserSettings struct {
	UserID             string    `json:"userId" db:"user_id"`
	EmailNotifications bool      `json:"emailNotifications" db:"email_notifications"`
	EventReminders     bool      `json:"eventReminders" db:"event_reminders"`
	Newsletter         bool      `json:"newsletter" db:"newsletter"`
	DarkMode           bool      `json:"darkMode" db:"dark_mode"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// DefaultSettings returns the settings applied to a user who has never
// saved any.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:             userID,
		EmailNotifications: true,
		EventReminders:     true,
		Newsletter:         true,
		DarkMode:           false,
	}
}
