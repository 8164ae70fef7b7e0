// internal/api/admin/service.go
package admin

import (
	"context"
	"database/sql"
	"time"

	"membership-backend/internal/api/notification"
	"membership-backend/internal/common/config"
	apierrors "membership-backend/internal/common/errors"
	"membership-backend/internal/common/logger"
	"membership-backend/internal/models"
)

// MembershipUpdateRequest is the admin PUT payload for a membership.
type MembershipUpdateRequest struct {
	Plan          string    `json:"plan"`
	PaymentStatus string    `json:"paymentStatus"`
	ExpiryDate    time.Time `json:"expiryDate"`
}

// ProfileUpdateRequest is the admin PUT payload for a profile. Avatars
// are only editable by the owning user.
type ProfileUpdateRequest struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Occupation   string `json:"occupation"`
	Organization string `json:"organization"`
}

// AnnouncementRequest is the payload for a site-wide announcement.
type AnnouncementRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority,omitempty"`
	Link     string `json:"link,omitempty"`
}

// Service implements the admin console operations. Notification creation
// is delegated to the notification service so announcements share the
// fan-out path.
type Service struct {
	store         Store
	notifications *notification.Service
	cfg           config.AuthConfig
	log           logger.Logger
}

func NewService(store Store, notifications *notification.Service, cfg config.AuthConfig, log logger.Logger) *Service {
	return &Service{store: store, notifications: notifications, cfg: cfg, log: log}
}

func (s *Service) ListUsers(ctx context.Context) ([]*UserRecord, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	return users, nil
}

// DeleteUser removes an account and everything hanging off it. Accounts
// on the configured admin list cannot be deleted through the console.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	email, err := s.store.GetUserEmail(ctx, userID)
	if err == sql.ErrNoRows {
		return apierrors.NewNotFoundError("user")
	}
	if err != nil {
		return apierrors.NewStoreError(err)
	}

	if s.cfg.IsAdminEmail(email) {
		return apierrors.NewForbiddenError("cannot delete a configured admin account")
	}

	ok, err := s.store.DeleteUser(ctx, userID)
	if err != nil {
		return apierrors.NewStoreError(err)
	}
	if !ok {
		return apierrors.NewNotFoundError("user")
	}

	s.log.Info("user deleted by admin", map[string]interface{}{"userId": userID})
	return nil
}

func (s *Service) ListMemberships(ctx context.Context) ([]*models.Membership, error) {
	list, err := s.store.ListMemberships(ctx)
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	return list, nil
}

func (s *Service) GetMembership(ctx context.Context, id string) (*models.Membership, error) {
	m, err := s.store.GetMembership(ctx, id)
	if err == sql.ErrNoRows {
		return nil, apierrors.NewNotFoundError("membership")
	}
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	return m, nil
}

func (s *Service) UpdateMembership(ctx context.Context, id string, req MembershipUpdateRequest) error {
	if req.Plan == "" || req.PaymentStatus == "" {
		return apierrors.NewValidationError("plan and paymentStatus are required")
	}

	ok, err := s.store.UpdateMembership(ctx, id, req.Plan, req.PaymentStatus, req.ExpiryDate)
	if err != nil {
		return apierrors.NewStoreError(err)
	}
	if !ok {
		return apierrors.NewNotFoundError("membership")
	}
	return nil
}

func (s *Service) DeleteMembership(ctx context.Context, id string) error {
	ok, err := s.store.DeleteMembership(ctx, id)
	if err != nil {
		return apierrors.NewStoreError(err)
	}
	if !ok {
		return apierrors.NewNotFoundError("membership")
	}
	return nil
}

func (s *Service) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	list, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	return list, nil
}

func (s *Service) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	p, err := s.store.GetProfile(ctx, profileID)
	if err == sql.ErrNoRows {
		return nil, apierrors.NewNotFoundError("profile")
	}
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	return p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, profileID string, req ProfileUpdateRequest) error {
	if req.FullName == "" {
		return apierrors.NewValidationError("fullName is required")
	}

	ok, err := s.store.UpdateProfile(ctx, &models.Profile{
		ID:           profileID,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		Occupation:   req.Occupation,
		Organization: req.Organization,
	})
	if err != nil {
		return apierrors.NewStoreError(err)
	}
	if !ok {
		return apierrors.NewNotFoundError("profile")
	}
	return nil
}

// DeleteProfile removes the user that owns the profile; the profile row
// itself goes with the cascade. Admin-list accounts are protected the
// same way as direct user deletion.
func (s *Service) DeleteProfile(ctx context.Context, profileID string) error {
	userID, err := s.store.GetProfileOwner(ctx, profileID)
	if err == sql.ErrNoRows {
		return apierrors.NewNotFoundError("profile")
	}
	if err != nil {
		return apierrors.NewStoreError(err)
	}
	return s.DeleteUser(ctx, userID)
}

// Announce publishes a site-wide broadcast. Exactly one notification row
// is written no matter how many users exist.
func (s *Service) Announce(ctx context.Context, createdBy string, req AnnouncementRequest) (*models.Notification, error) {
	return s.notifications.Create(ctx, notification.CreateRequest{
		Title:      req.Title,
		Message:    req.Message,
		Category:   models.CategoryAnnouncement,
		Priority:   req.Priority,
		Link:       req.Link,
		Recipients: notification.RecipientsDirective{"all"},
	}, createdBy)
}
