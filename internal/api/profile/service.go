// internal/api/profile/service.go
package profile

import (
	"context"
	"encoding/base64"
	"regexp"
	"time"

	"github.com/google/uuid"

	apierrors "membership-backend/internal/common/errors"
	"membership-backend/internal/common/logger"
	"membership-backend/internal/models"
)

var avatarPattern = regexp.MustCompile(`^data:([A-Za-z0-9.+/-]+);base64,(.+)$`)

// UpdateRequest is the PUT payload for a user's own profile. Avatar is an
// optional data URI.
type UpdateRequest struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Occupation   string `json:"occupation"`
	Organization string `json:"organization"`
	Avatar       string `json:"avatar,omitempty"`
}

// View is a profile response with the avatar composed as a data URI.
type View struct {
	models.Profile
	Avatar string `json:"avatar,omitempty"`
}

// SettingsRequest is the PUT payload for per-user preferences.
type SettingsRequest struct {
	EmailNotifications *bool `json:"emailNotifications"`
	EventReminders     *bool `json:"eventReminders"`
	Newsletter         *bool `json:"newsletter"`
	DarkMode           *bool `json:"darkMode"`
}

// Service handles the profile and settings of the authenticated user.
type Service struct {
	store Store
	log   logger.Logger
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// Get returns the user's profile, creating an empty one on first access
// so the frontend never deals with a missing-profile state.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	p, err := s.store.GetByUserID(ctx, userID)
	if err == ErrProfileNotFound {
		p = &models.Profile{
			ID:        uuid.NewString(),
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.Upsert(ctx, p); err != nil {
			return nil, apierrors.NewStoreError(err)
		}
	} else if err != nil {
		return nil, apierrors.NewStoreError(err)
	}

	return view(p), nil
}

// Update applies the full PUT payload to the user's profile. A malformed
// avatar clears the stored one instead of failing.
func (s *Service) Update(ctx context.Context, userID string, req UpdateRequest) (*View, error) {
	existing, err := s.store.GetByUserID(ctx, userID)
	if err != nil && err != ErrProfileNotFound {
		return nil, apierrors.NewStoreError(err)
	}

	p := &models.Profile{
		UserID:       userID,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		Occupation:   req.Occupation,
		Organization: req.Organization,
	}
	if existing != nil {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	}

	if m := avatarPattern.FindStringSubmatch(req.Avatar); m != nil {
		if _, err := base64.StdEncoding.DecodeString(m[2]); err == nil {
			p.Avatar = &m[2]
			p.AvatarType = &m[1]
		}
	} else if req.Avatar != "" {
		s.log.Warn("discarding malformed avatar", map[string]interface{}{"userId": userID})
	}

	if err := s.store.Upsert(ctx, p); err != nil {
		return nil, apierrors.NewStoreError(err)
	}

	return view(p), nil
}

// GetSettings returns the user's settings, falling back to defaults when
// they have never saved any.
func (s *Service) GetSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	st, err := s.store.GetSettings(ctx, userID)
	if err == ErrProfileNotFound {
		defaults := models.DefaultSettings(userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	return st, nil
}

// UpdateSettings merges the provided flags over the current settings.
// Omitted fields keep their existing value.
func (s *Service) UpdateSettings(ctx context.Context, userID string, req SettingsRequest) (*models.UserSettings, error) {
	current, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.EmailNotifications != nil {
		current.EmailNotifications = *req.EmailNotifications
	}
	if req.EventReminders != nil {
		current.EventReminders = *req.EventReminders
	}
	if req.Newsletter != nil {
		current.Newsletter = *req.Newsletter
	}
	if req.DarkMode != nil {
		current.DarkMode = *req.DarkMode
	}

	if err := s.store.SaveSettings(ctx, current); err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	return current, nil
}

func view(p *models.Profile) *View {
	return &View{Profile: *p, Avatar: p.AvatarURL()}
}
