// internal/api/auth/service_test.go
package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonauth "membership-backend/internal/common/auth"
	"membership-backend/internal/common/config"
	apierrors "membership-backend/internal/common/errors"
	"membership-backend/internal/common/logger"
	"membership-backend/internal/models"
)

// ==========================
// In-Memory User Store
// ==========================

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by email
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]*models.User{}}
}

func (m *memUserStore) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memUserStore) SetVerified(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		u.IsVerified = true
	}
	return nil
}

func (m *memUserStore) UpdatePassword(_ context.Context, email, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		u.PasswordHash = hash
	}
	return nil
}

// ==========================
// Mock Mailer
// ==========================

type MockMailer struct {
	mu    sync.Mutex
	sent  []string // "purpose:email:code"
	codes map[string]string
}

func newMockMailer() *MockMailer {
	return &MockMailer{codes: map[string]string{}}
}

func (m *MockMailer) SendOTP(_ context.Context, email, code, purpose string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, purpose+":"+email)
	m.codes[purpose+":"+email] = code
	return nil
}

func (m *MockMailer) lastCode(purpose, email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[purpose+":"+email]
}

func (m *MockMailer) sendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// ==========================
// Test Helper Functions
// ==========================

func newTestService(t *testing.T, adminEmails ...string) (*Service, *memUserStore, *MockMailer) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := config.AuthConfig{
		JWTSecret:   "test-secret",
		TokenTTL:    60,
		OTPTTL:      10,
		AdminEmails: adminEmails,
	}

	users := newMemUserStore()
	mailer := newMockMailer()
	svc := NewService(
		cfg,
		users,
		NewOTPStore(client, cfg.OTPExpiry()),
		mailer,
		commonauth.NewTokenManager(cfg.JWTSecret, cfg.TokenExpiry()),
		logger.NewTestLogger(t),
	)
	return svc, users, mailer
}

func signupAndVerify(t *testing.T, svc *Service, mailer *MockMailer, email, password string) *TokenResponse {
	_, err := svc.Signup(context.Background(), SignupRequest{Email: email, Password: password})
	require.NoError(t, err)

	resp, err := svc.VerifyAccount(context.Background(), VerifyAccountRequest{
		Email: email,
		OTP:   mailer.lastCode(PurposeVerify, email),
	})
	require.NoError(t, err)
	return resp
}

// ==========================
// Signup Tests
// ==========================

func TestSignup_CreatesUnverifiedUserAndSendsOTP(t *testing.T) {
	svc, users, mailer := newTestService(t)

	summary, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "Member@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "member@example.com", summary.Email, "email is normalized")
	assert.False(t, summary.IsVerified)
	assert.False(t, summary.IsAdmin)
	assert.NotEmpty(t, mailer.lastCode(PurposeVerify, "member@example.com"))

	stored, err := users.GetByEmail(context.Background(), "member@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", stored.PasswordHash, "password must be hashed")
}

func TestSignup_AdminListGrantsAdminFlag(t *testing.T) {
	svc, _, _ := newTestService(t, "chief@example.com")

	summary, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "chief@example.com",
		Password: "long-enough-pw",
	})
	require.NoError(t, err)
	assert.True(t, summary.IsAdmin)
}

func TestSignup_DuplicateEmailRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := SignupRequest{Email: "a@example.com", Password: "long-enough-pw"}
	_, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), req)
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrCodeConflict, apiErr.Code)
}

func TestSignup_ValidationRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t)

	tests := []struct {
		name string
		req  SignupRequest
	}{
		{"empty email", SignupRequest{Email: "", Password: "long-enough-pw"}},
		{"not an email", SignupRequest{Email: "nope", Password: "long-enough-pw"}},
		{"short password", SignupRequest{Email: "a@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tt.req)
			assert.Error(t, err)
		})
	}
}

// ==========================
// Verification & Login Tests
// ==========================

func TestVerifyAccount_MarksVerifiedAndIssuesToken(t *testing.T) {
	svc, users, mailer := newTestService(t)

	resp := signupAndVerify(t, svc, mailer, "a@example.com", "long-enough-pw")
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.User.IsVerified)

	stored, err := users.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
}

func TestVerifyAccount_WrongOTPRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "a@example.com", Password: "long-enough-pw"})
	require.NoError(t, err)

	_, err = svc.VerifyAccount(context.Background(), VerifyAccountRequest{Email: "a@example.com", OTP: "000000"})
	assert.Error(t, err)
}

func TestLogin_VerifiedUserGetsToken(t *testing.T) {
	svc, _, mailer := newTestService(t)
	signupAndVerify(t, svc, mailer, "a@example.com", "long-enough-pw")

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "long-enough-pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	verified, err := svc.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", verified.Email)
}

func TestLogin_UnverifiedUserGetsVerifyOTPAndFreshCode(t *testing.T) {
	svc, _, mailer := newTestService(t)

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "a@example.com", Password: "long-enough-pw"})
	require.NoError(t, err)
	sendsAfterSignup := mailer.sendCount()

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "long-enough-pw"})
	require.Error(t, err)

	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.ErrCodeVerifyOTP, apiErr.Code)
	assert.Equal(t, 403, apiErr.Status)
	assert.Equal(t, sendsAfterSignup+1, mailer.sendCount(), "login on unverified account reissues the OTP")
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _, mailer := newTestService(t)
	signupAndVerify(t, svc, mailer, "a@example.com", "long-enough-pw")

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Email: "a@example.com", Password: "wrong-password"}},
		{"unknown email", LoginRequest{Email: "nobody@example.com", Password: "long-enough-pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.req)
			require.Error(t, err)
			apiErr, ok := err.(*apierrors.APIError)
			require.True(t, ok)
			assert.Equal(t, apierrors.ErrCodeInvalidCredentials, apiErr.Code)
		})
	}
}

func TestLogin_AdminClaimFromConfiguredList(t *testing.T) {
	svc, _, mailer := newTestService(t, "chief@example.com")
	signupAndVerify(t, svc, mailer, "chief@example.com", "long-enough-pw")

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "chief@example.com", Password: "long-enough-pw"})
	require.NoError(t, err)

	verified, err := svc.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.True(t, verified.IsAdmin)
}

// ==========================
// Password Reset Tests
// ==========================

func TestPasswordResetFlow(t *testing.T) {
	svc, _, mailer := newTestService(t)
	signupAndVerify(t, svc, mailer, "a@example.com", "old-password-1")

	require.NoError(t, svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "a@example.com"}))
	code := mailer.lastCode(PurposeReset, "a@example.com")
	require.NotEmpty(t, code)

	// Verify step does not consume the code
	require.NoError(t, svc.VerifyResetOTP(context.Background(), VerifyOTPRequest{Email: "a@example.com", OTP: code}))
	require.NoError(t, svc.VerifyResetOTP(context.Background(), VerifyOTPRequest{Email: "a@example.com", OTP: code}))

	require.NoError(t, svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Email:       "a@example.com",
		OTP:         code,
		NewPassword: "new-password-1",
	}))

	// Old password dead, new password works
	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "old-password-1"})
	assert.Error(t, err)
	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "new-password-1"})
	assert.NoError(t, err)

	// Reset consumed the code
	err = svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Email:       "a@example.com",
		OTP:         code,
		NewPassword: "another-password",
	})
	assert.Error(t, err)
}

func TestForgotPassword_UnknownEmailDoesNotLeak(t *testing.T) {
	svc, _, mailer := newTestService(t)

	err := svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "ghost@example.com"})
	assert.NoError(t, err, "unknown email must look identical to a known one")
	assert.Equal(t, 0, mailer.sendCount())
}

// ==========================
// Token Tests
// ==========================

func TestVerifyToken_RejectsGarbageAndExpired(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.VerifyToken("not-a-token")
	assert.Error(t, err)

	expired := commonauth.NewTokenManager("test-secret", -time.Minute)
	token, err := expired.Issue("user-1", "a@example.com", false)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.Error(t, err)
}
