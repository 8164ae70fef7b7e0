// internal/api/newsletter/newsletter.go
package newsletter

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	apierrors "membership-backend/internal/common/errors"
	"membership-backend/internal/common/logger"
	"membership-backend/internal/models"
)

// Store persists the mailing list.
type Store interface {
	Subscribe(ctx context.Context, sub *models.NewsletterSubscriber) error
	Unsubscribe(ctx context.Context, email string) (bool, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	ListAll(ctx context.Context) ([]*models.NewsletterSubscriber, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Subscribe(ctx context.Context, sub *models.NewsletterSubscriber) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO newsletter_subscribers (id, email, subscribed_at)
		VALUES ($1, $2, $3)`,
		sub.ID, sub.Email, sub.SubscribedAt,
	)
	return err
}

func (s *PostgresStore) Unsubscribe(ctx context.Context, email string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM newsletter_subscribers WHERE email = $1`, email)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM newsletter_subscribers WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.NewsletterSubscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, subscribed_at
		FROM newsletter_subscribers
		ORDER BY subscribed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.NewsletterSubscriber{}
	for rows.Next() {
		sub := &models.NewsletterSubscriber{}
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.SubscribedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// Service wraps the list with normalization and duplicate handling.
type Service struct {
	store Store
	log   logger.Logger
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierrors.NewValidationError("a valid email is required")
	}

	sub := &models.NewsletterSubscriber{
		ID:           uuid.NewString(),
		Email:        email,
		SubscribedAt: time.Now().UTC(),
	}
	if err := s.store.Subscribe(ctx, sub); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, apierrors.NewConflictError("email already subscribed")
		}
		return nil, apierrors.NewStoreError(err)
	}
	return sub, nil
}

func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	ok, err := s.store.Unsubscribe(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return apierrors.NewStoreError(err)
	}
	if !ok {
		return apierrors.NewNotFoundError("subscription")
	}
	return nil
}

// Remove deletes a subscriber by row id, for the admin console.
func (s *Service) Remove(ctx context.Context, id string) error {
	ok, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return apierrors.NewStoreError(err)
	}
	if !ok {
		return apierrors.NewNotFoundError("subscription")
	}
	return nil
}

func (s *Service) ListAll(ctx context.Context) ([]*models.NewsletterSubscriber, error) {
	list, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	return list, nil
}

// Handler exposes subscribe/unsubscribe publicly and the listing to
// admins.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(public, admin *gin.RouterGroup) {
	public.POST("/newsletter/subscribe", h.Subscribe)
	public.POST("/newsletter/unsubscribe", h.Unsubscribe)
	admin.GET("/newsletter/subscribers", h.ListAll)
	admin.DELETE("/newsletter/subscribers/:id", h.Remove)
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	sub, err := h.service.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.NewValidationError("invalid JSON body"))
		return
	}

	if err := h.service.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unsubscribed": true})
}

func (h *Handler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": list})
}
