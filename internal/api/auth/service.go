// internal/api/auth/service.go
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	commonauth "membership-backend/internal/common/auth"
	"membership-backend/internal/common/config"
	apierrors "membership-backend/internal/common/errors"
	"membership-backend/internal/common/logger"
	"membership-backend/internal/models"
)

// Service implements account registration, OTP verification and login.
type Service struct {
	cfg    config.AuthConfig
	users  UserStore
	otps   *OTPStore
	mailer Mailer
	tokens *commonauth.TokenManager
	log    logger.Logger
}

func NewService(cfg config.AuthConfig, users UserStore, otps *OTPStore, mailer Mailer, tokens *commonauth.TokenManager, log logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		users:  users,
		otps:   otps,
		mailer: mailer,
		tokens: tokens,
		log:    log,
	}
}

// Signup registers an unverified account and emails a verification code.
// The admin flag is resolved from configuration here, at registration
// time, and nowhere else.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*UserSummary, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierrors.NewValidationError("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, apierrors.NewValidationError("password must be at least 8 characters")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apierrors.NewConflictError("email already registered")
	} else if err != ErrUserNotFound {
		return nil, apierrors.NewStoreError(err)
	}

	hash, err := commonauth.HashPassword(req.Password)
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      s.cfg.IsAdminEmail(email),
		IsVerified:   false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, apierrors.NewStoreError(err)
	}

	s.issueAndMail(ctx, PurposeVerify, email)

	summary := summarize(user)
	return &summary, nil
}

// VerifyAccount consumes the signup OTP and marks the account verified,
// returning a session token so the user lands logged in.
func (s *Service) VerifyAccount(ctx context.Context, req VerifyAccountRequest) (*TokenResponse, error) {
	email := normalizeEmail(req.Email)

	ok, err := s.otps.Consume(ctx, PurposeVerify, email, req.OTP)
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	if !ok {
		return nil, apierrors.NewOTPMismatchError()
	}

	if err := s.users.SetVerified(ctx, email); err != nil {
		return nil, apierrors.NewStoreError(err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}

	return s.tokenResponse(user)
}

// Login checks credentials. An unverified account gets a fresh OTP and a
// VERIFY_OTP error so the client can route to the verification screen.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err == ErrUserNotFound {
		return nil, apierrors.NewInvalidCredentialsError()
	}
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}

	if !commonauth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apierrors.NewInvalidCredentialsError()
	}

	if !user.IsVerified {
		s.issueAndMail(ctx, PurposeVerify, email)
		return nil, apierrors.NewVerifyOTPError(email)
	}

	return s.tokenResponse(user)
}

// ForgotPassword issues a reset code. It reports success for unknown
// emails too, so the endpoint cannot be used to probe registrations.
func (s *Service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	email := normalizeEmail(req.Email)

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if err == ErrUserNotFound {
			return nil
		}
		return apierrors.NewStoreError(err)
	}

	s.issueAndMail(ctx, PurposeReset, email)
	return nil
}

// VerifyResetOTP checks a reset code without consuming it, so the client
// can gate the new-password form. The code stays valid for ResetPassword.
func (s *Service) VerifyResetOTP(ctx context.Context, req VerifyOTPRequest) error {
	ok, err := s.otps.Check(ctx, PurposeReset, normalizeEmail(req.Email), req.OTP)
	if err != nil {
		return apierrors.NewStoreError(err)
	}
	if !ok {
		return apierrors.NewOTPMismatchError()
	}
	return nil
}

// ResetPassword consumes the reset code and replaces the password.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)

	if len(req.NewPassword) < 8 {
		return apierrors.NewValidationError("password must be at least 8 characters")
	}

	ok, err := s.otps.Consume(ctx, PurposeReset, email, req.OTP)
	if err != nil {
		return apierrors.NewStoreError(err)
	}
	if !ok {
		return apierrors.NewOTPMismatchError()
	}

	hash, err := commonauth.HashPassword(req.NewPassword)
	if err != nil {
		return apierrors.NewStoreError(err)
	}

	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		return apierrors.NewStoreError(err)
	}

	s.log.Info("password reset completed", map[string]interface{}{"email": email})
	return nil
}

// VerifyToken validates a session token and returns its identity.
func (s *Service) VerifyToken(tokenString string) (*UserSummary, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, apierrors.NewUnauthorizedError("invalid or expired token")
	}
	return &UserSummary{
		ID:         claims.UserID,
		Email:      claims.Email,
		IsAdmin:    claims.IsAdmin,
		IsVerified: true,
	}, nil
}

func (s *Service) tokenResponse(user *models.User) (*TokenResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.IsAdmin || s.cfg.IsAdminEmail(user.Email))
	if err != nil {
		return nil, apierrors.NewStoreError(err)
	}
	return &TokenResponse{Token: token, User: summarize(user)}, nil
}

// issueAndMail issues an OTP and sends it. Failures are logged, not
// surfaced: the caller's flow already tells the user to expect a code,
// and a resend is always possible.
func (s *Service) issueAndMail(ctx context.Context, purpose, email string) {
	code, err := s.otps.Issue(ctx, purpose, email)
	if err != nil {
		s.log.WithError(err).Error("failed to issue OTP", map[string]interface{}{
			"email":   email,
			"purpose": purpose,
		})
		return
	}
	if err := s.mailer.SendOTP(ctx, email, code, purpose); err != nil {
		s.log.WithError(err).Error("failed to send OTP email", map[string]interface{}{
			"email":   email,
			"purpose": purpose,
		})
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
