// internal/api/auth/otp.go
package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"membership-backend/internal/common/metrics"
)

// OTP purposes. Each purpose has its own redis key space so a
// verification code cannot be replayed for a password reset.
const (
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

// OTPStore issues and checks one-time codes in redis with a TTL. Codes
// expire on their own; Consume removes a code after a successful check.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(purpose, email string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}

// Issue generates a fresh 6-digit code for the email, replacing any
// previous one, and stores it with the configured TTL.
func (s *OTPStore) Issue(ctx context.Context, purpose, email string) (string, error) {
	code, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	if err := s.client.Set(ctx, otpKey(purpose, email), code, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	metrics.OTPIssued.WithLabelValues(purpose).Inc()
	return code, nil
}

// Check compares the given code against the stored one without consuming
// it. Returns false for missing, expired or mismatched codes.
func (s *OTPStore) Check(ctx context.Context, purpose, email, code string) (bool, error) {
	stored, err := s.client.Get(ctx, otpKey(purpose, email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read otp: %w", err)
	}
	return stored == code, nil
}

// Consume checks the code and deletes it on success so it cannot be
// replayed.
func (s *OTPStore) Consume(ctx context.Context, purpose, email, code string) (bool, error) {
	ok, err := s.Check(ctx, purpose, email, code)
	if err != nil || !ok {
		return false, err
	}
	if err := s.client.Del(ctx, otpKey(purpose, email)).Err(); err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return true, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
