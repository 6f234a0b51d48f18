// Package otp issues and checks the short-lived 6-digit codes used for
// email verification and password reset. Codes live in the cache under
// otp:{purpose}:{email} and expire via TTL; issuing a new code for a pair
// overwrites the previous one, so at most one code is live per pair.
package otp

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"funquizz/internal/cache"
)

type Purpose string

const (
	PurposeEmailVerification Purpose = "email_verification"
	PurposePasswordReset     Purpose = "password_reset"
)

type record struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	Type      Purpose   `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	cache  *cache.RedisCache
	expiry time.Duration
}

func NewService(cache *cache.RedisCache, expiry time.Duration) *Service {
	return &Service{cache: cache, expiry: expiry}
}

func key(email string, purpose Purpose) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}

// Issue generates a fresh code for (email, purpose) and stores it with the
// configured TTL, replacing any prior unconsumed code for the pair.
func (s *Service) Issue(ctx context.Context, email string, purpose Purpose) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(record{
		Email:     email,
		Code:      code,
		Type:      purpose,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, key(email, purpose), data, s.expiry); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}

	return code, nil
}

// Verify reports whether code is the live code for (email, purpose).
// A missing or expired record is a plain false, not an error. Verifying
// does not consume the code.
func (s *Service) Verify(ctx context.Context, email, code string, purpose Purpose) (bool, error) {
	data, err := s.cache.Get(ctx, key(email, purpose))
	if err != nil {
		return false, fmt.Errorf("failed to look up otp: %w", err)
	}
	if data == "" {
		return false, nil
	}

	var rec record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return false, fmt.Errorf("failed to decode otp record: %w", err)
	}

	return rec.Code == code, nil
}

// Consume deletes the stored code so later Verify calls fail. Idempotent.
func (s *Service) Consume(ctx context.Context, email string, purpose Purpose) error {
	return s.cache.Del(ctx, key(email, purpose))
}

// GenerateCode returns a uniformly random 6-digit decimal code in
// [100000, 999999]. crypto/rand keeps the distribution uniform; the range
// construction rules out leading zeros.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
