// internal/api/notification/service.go
package notification

import (
	"context"
	"encoding/base64"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	apierrors "membership-backend/internal/common/errors"
	"membership-backend/internal/common/logger"
	"membership-backend/internal/common/metrics"
	"membership-backend/internal/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100

	// Sentinel accepted in the recipients directive meaning "broadcast".
	recipientAll = "all"
)

// dataURIPattern matches "data:<mime>;base64,<payload>".
var dataURIPattern = regexp.MustCompile(`^data:([A-Za-z0-9.+/-]+);base64,(.+)$`)

// Service implements fan-out, feed queries and read-state mutation on top
// of a Store. Delivery (email/SMS) is delegated to an optional Dispatcher
// and never affects the outcome of Create.
type Service struct {
	store      Store
	dispatcher *Dispatcher
	log        logger.Logger
}

// NewService creates a notification Service. dispatcher may be nil when
// outbound delivery is disabled.
func NewService(store Store, dispatcher *Dispatcher, log logger.Logger) *Service {
	return &Service{store: store, dispatcher: dispatcher, log: log}
}

// Create translates a creation request into exactly one stored
// notification. Broadcast targeting is recorded as a flag, never as
// per-user copies.
func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy string) (*models.Notification, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apierrors.NewValidationError("title is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, apierrors.NewValidationError("message is required")
	}

	category := req.Category
	if category == "" {
		category = models.CategorySystem
	}
	if !models.ValidCategory(category) {
		return nil, apierrors.NewValidationError("unknown category: " + category)
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, apierrors.NewValidationError("unknown priority: " + priority)
	}

	n := &models.Notification{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Message:   req.Message,
		Category:  category,
		Priority:  priority,
		Link:      req.Link,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}

	// A malformed image degrades to no image rather than failing the
	// whole request.
	if payload, mime, ok := parseImage(req.Image); ok {
		n.Image = &payload
		n.ImageType = &mime
	} else if req.Image != "" {
		s.log.Warn("discarding malformed notification image", map[string]interface{}{
			"title": req.Title,
		})
	}

	if containsAll(req.Recipients) {
		n.IsForAllUsers = true
		n.Recipients = nil
	} else {
		// Recipient ids are not checked against the user directory: an
		// id that never existed simply never sees the notification.
		n.Recipients = dedupe(req.Recipients)
	}

	if err := s.store.Create(ctx, n); err != nil {
		return nil, apierrors.NewStoreError(err)
	}

	audience := "explicit"
	if n.IsForAllUsers {
		audience = "all"
	}
	metrics.NotificationsCreated.WithLabelValues(audience).Inc()

	s.log.Info("notification created", map[string]interface{}{
		"notificationId": n.ID,
		"audience":       audience,
		"recipients":     len(n.Recipients),
		"priority":       n.Priority,
	})

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, n)
	}

	return n, nil
}

// ListForUser returns the user's feed, newest first, annotated with their
// read state.
func (s *Service) ListForUser(ctx context.Context, userID string, page, pageSize int) (*Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	items, total, err := s.store.ListVisibleTo(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}

	views := make([]View, 0, len(items))
	for _, n := range items {
		views = append(views, toView(n, userID))
	}

	return &Page{
		Items:      views,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// ListAll returns every notification for the admin console, including
// targeting and read sets.
func (s *Service) ListAll(ctx context.Context, page, pageSize int) (*AdminPage, error) {
	page, pageSize = normalizePage(page, pageSize)

	items, total, err := s.store.ListAll(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}

	views := make([]AdminView, 0, len(items))
	for _, n := range items {
		views = append(views, toAdminView(n))
	}

	return &AdminPage{
		Items:      views,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// UnreadCount returns how many visible notifications the user has not read.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.store.CountUnreadFor(ctx, userID)
	if err != nil {
		return 0, apierrors.NewStoreError(err)
	}
	return count, nil
}

// MarkRead records that the user has seen the notification. The
// visibility check precedes the mutation: a user cannot mark-read a
// notification not targeted at them, and gets NotFound instead.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID string) (*models.Notification, error) {
	n, err := s.store.Get(ctx, notificationID)
	if err != nil {
		if err == ErrNotFound {
			return nil, apierrors.NewNotFoundError("notification")
		}
		return nil, apierrors.NewStoreError(err)
	}

	if !n.VisibleTo(userID) {
		return nil, apierrors.NewNotFoundError("notification")
	}

	inserted, err := s.store.AddRead(ctx, notificationID, userID)
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	if inserted {
		n.ReadBy = append(n.ReadBy, userID)
	}
	return n, nil
}

// MarkAllRead marks every currently-unread visible notification read for
// the user and returns how many were affected. Each per-notification
// update is individually atomic; on failure the count reflects only the
// updates that landed.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	ids, err := s.store.ListUnreadIDsFor(ctx, userID)
	if err != nil {
		return 0, apierrors.NewStoreError(err)
	}

	affected := 0
	for _, id := range ids {
		inserted, err := s.store.AddRead(ctx, id, userID)
		if err != nil {
			return affected, apierrors.NewStoreError(err)
		}
		if inserted {
			affected++
		}
	}
	return affected, nil
}

// Delete hard-deletes a notification. It disappears from every feed and
// unread count immediately.
func (s *Service) Delete(ctx context.Context, notificationID string) error {
	ok, err := s.store.Delete(ctx, notificationID)
	if err != nil {
		return apierrors.NewStoreError(err)
	}
	if !ok {
		return apierrors.NewNotFoundError("notification")
	}
	return nil
}

// parseImage splits a data URI into payload and MIME type, verifying the
// payload actually decodes as base64.
func parseImage(dataURI string) (payload, mime string, ok bool) {
	if dataURI == "" {
		return "", "", false
	}
	m := dataURIPattern.FindStringSubmatch(dataURI)
	if m == nil {
		return "", "", false
	}
	if _, err := base64.StdEncoding.DecodeString(m[2]); err != nil {
		return "", "", false
	}
	return m[2], m[1], true
}

func containsAll(directive RecipientsDirective) bool {
	for _, r := range directive {
		if r == recipientAll {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func totalPages(total, pageSize int) int {
	return int(math.Ceil(float64(total) / float64(pageSize)))
}
