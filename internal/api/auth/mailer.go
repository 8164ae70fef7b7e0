// internal/api/auth/mailer.go
package auth

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"membership-backend/internal/common/logger"
)

// Mailer delivers OTP emails. Implemented over SES in production and by
// a function mock in tests.
type Mailer interface {
	SendOTP(ctx context.Context, email, code, purpose string) error
}

// SESService is the slice of the SES client the mailer needs.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends OTP emails through AWS SES.
type SESMailer struct {
	client    SESService
	fromEmail string
	logger    logger.Logger
}

func NewSESMailer(client SESService, fromEmail string, log logger.Logger) *SESMailer {
	return &SESMailer{client: client, fromEmail: fromEmail, logger: log}
}

func (m *SESMailer) SendOTP(ctx context.Context, email, code, purpose string) error {
	subject := "Your verification code"
	if purpose == PurposeReset {
		subject = "Your password reset code"
	}
	body := fmt.Sprintf("Your one-time code is %s. It expires in 10 minutes.", code)

	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(m.fromEmail),
	})
	if err != nil {
		m.logger.Error("OTP email send failed", map[string]interface{}{
			"error": err,
			"email": email,
		})
	}
	return err
}

// NoOpMailer discards OTP emails. Used when SES is disabled, for local
// development against the redis store directly.
type NoOpMailer struct {
	logger logger.Logger
}

func NewNoOpMailer(log logger.Logger) *NoOpMailer {
	return &NoOpMailer{logger: log}
}

func (m *NoOpMailer) SendOTP(_ context.Context, email, code, purpose string) error {
	m.logger.Info("email delivery disabled, OTP not sent", map[string]interface{}{
		"email":   email,
		"purpose": purpose,
	})
	return nil
}
