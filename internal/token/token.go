// Package token signs and verifies the JWT access/refresh pair. The
// refresh token is additionally persisted in the cache under
// refresh_token:{userId}; the slot holds exactly one token per user and is
// overwritten on every login or rotation, which is what revokes the
// previous session's refresh token.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"funquizz/internal/cache"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Service struct {
	accessSecret   []byte
	refreshSecret  []byte
	accessExpires  time.Duration
	refreshExpires time.Duration
	cache          *cache.RedisCache
}

func NewService(accessSecret, refreshSecret []byte, accessExpires, refreshExpires time.Duration, cache *cache.RedisCache) *Service {
	return &Service{
		accessSecret:   accessSecret,
		refreshSecret:  refreshSecret,
		accessExpires:  accessExpires,
		refreshExpires: refreshExpires,
		cache:          cache,
	}
}

func slotKey(userID string) string {
	return "refresh_token:" + userID
}

func (s *Service) sign(userID string, secret []byte, expires time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expires)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			// Unique per token; two logins in the same second must still
			// produce distinct refresh tokens or rotation could not tell
			// the old one from the new.
			ID: uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parse(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IssuePair signs a fresh access/refresh pair for userID and persists the
// refresh token as the user's sole live one, replacing any previous token.
func (s *Service) IssuePair(ctx context.Context, userID string) (*Pair, error) {
	accessToken, err := s.sign(userID, s.accessSecret, s.accessExpires)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.sign(userID, s.refreshSecret, s.refreshExpires)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if err := s.cache.Set(ctx, slotKey(userID), refreshToken, s.refreshExpires); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess validates the signature and expiry of an access token.
// All failure modes collapse to ErrInvalidToken.
func (s *Service) VerifyAccess(tokenString string) (*Claims, error) {
	return parse(tokenString, s.accessSecret)
}

// VerifyRefresh validates the refresh token and requires it to match the
// token currently stored for its subject. A rotated, revoked, or replaced
// token fails the match even when its signature is still valid.
func (s *Service) VerifyRefresh(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := parse(tokenString, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	stored, err := s.cache.Get(ctx, slotKey(claims.UserID))
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if stored == "" || stored != tokenString {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Rotate exchanges a valid refresh token for a new pair. The new refresh
// token overwrites the slot, so the old one stops verifying immediately.
func (s *Service) Rotate(ctx context.Context, refreshToken string) (*Pair, error) {
	claims, err := s.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	return s.IssuePair(ctx, claims.UserID)
}

// Revoke clears the user's refresh slot. Deleting an absent slot is fine.
func (s *Service) Revoke(ctx context.Context, userID string) error {
	return s.cache.Del(ctx, slotKey(userID))
}
