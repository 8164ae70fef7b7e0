// internal/api/notification/dispatch.go
package notification

import (
	"context"
	"database/sql"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/lib/pq"

	"membership-backend/internal/common/config"
	"membership-backend/internal/common/logger"
	"membership-backend/internal/common/metrics"
	"membership-backend/internal/models"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// recipientContact is one deliverable address resolved for a notification.
type recipientContact struct {
	Email string
	Phone string
}

// Dispatcher delivers created notifications out-of-band over email and
// SMS. Delivery is strictly best-effort: every failure is logged and
// counted but never propagated, so a delivery outage cannot fail a create.
type Dispatcher struct {
	db        *sql.DB
	sesClient SESService
	snsClient SNSService
	cfg       config.NotificationConfig
	logger    logger.Logger
}

// NewDispatcher creates a Dispatcher. sesClient or snsClient may be nil
// when that channel is disabled in config.
func NewDispatcher(db *sql.DB, sesClient SESService, snsClient SNSService, cfg config.NotificationConfig, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		db:        db,
		sesClient: sesClient,
		snsClient: snsClient,
		cfg:       cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "notification-dispatch"}),
	}
}

// Dispatch sends the notification to each explicit recipient who has
// email notifications enabled. Broadcasts are in-app only: fanning a
// broadcast out over email would mean mailing the entire user base.
func (d *Dispatcher) Dispatch(ctx context.Context, n *models.Notification) {
	if n.IsForAllUsers || len(n.Recipients) == 0 {
		return
	}

	contacts, err := d.getRecipientContacts(ctx, n.Recipients)
	if err != nil {
		d.logger.WithError(err).Error("failed to resolve recipient contacts", map[string]interface{}{
			"notificationId": n.ID,
		})
		return
	}

	for _, contact := range contacts {
		if d.cfg.Email.Enabled && d.sesClient != nil && contact.Email != "" {
			if err := d.sendEmail(ctx, contact.Email, n.Title, n.Message); err != nil {
				metrics.NotificationDispatchFailed.WithLabelValues("email").Inc()
				d.logger.Error("email send failed", map[string]interface{}{
					"error": err,
					"email": contact.Email,
				})
			}
		}

		// SMS only if: enabled AND phone exists AND priority is high
		if d.cfg.SMS.Enabled && d.snsClient != nil && contact.Phone != "" && n.Priority == models.PriorityHigh {
			if err := d.sendSMS(ctx, contact.Phone, n.Title+": "+n.Message); err != nil {
				metrics.NotificationDispatchFailed.WithLabelValues("sms").Inc()
				d.logger.Error("SMS send failed", map[string]interface{}{
					"error": err,
					"phone": contact.Phone,
				})
			}
		}
	}
}

// getRecipientContacts resolves email and phone for recipients who have
// email notifications switched on. Users without a settings row fall back
// to the default (enabled).
func (d *Dispatcher) getRecipientContacts(ctx context.Context, userIDs []string) ([]recipientContact, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT u.email, COALESCE(p.phone, '')
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		LEFT JOIN user_settings s ON s.user_id = u.id
		WHERE u.id::text = ANY($1)
		AND COALESCE(s.email_notifications, TRUE)`,
		pq.Array(userIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []recipientContact{}
	for rows.Next() {
		var c recipientContact
		if err := rows.Scan(&c.Email, &c.Phone); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (d *Dispatcher) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := d.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(d.cfg.Email.FromEmail),
	})
	return err
}

func (d *Dispatcher) sendSMS(ctx context.Context, to, message string) error {
	_, err := d.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
