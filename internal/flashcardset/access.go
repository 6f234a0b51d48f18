package flashcardset

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"funquizz/internal/cache"
)

const (
	unlockTTL       = 24 * time.Hour
	unlockKeyPrefix = "flashcard_set_unlocked"
	setPassCost     = 10
)

// AccessControl manages the per-(set, user) unlock grants for
// password-gated sets. A grant is a cache entry with a 24h TTL, not a
// durable record.
type AccessControl struct {
	cache *cache.RedisCache
}

func NewAccessControl(cache *cache.RedisCache) *AccessControl {
	return &AccessControl{cache: cache}
}

func unlockKey(setID, userID string) string {
	return fmt.Sprintf("%s:%s:%s", unlockKeyPrefix, setID, userID)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), setPassCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (a *AccessControl) UnlockForUser(ctx context.Context, setID, userID string) error {
	return a.cache.Set(ctx, unlockKey(setID, userID), "unlocked", unlockTTL)
}

func (a *AccessControl) IsUnlockedForUser(ctx context.Context, setID, userID string) (bool, error) {
	return a.cache.Exists(ctx, unlockKey(setID, userID))
}

func (a *AccessControl) LockForUser(ctx context.Context, setID, userID string) error {
	return a.cache.Del(ctx, unlockKey(setID, userID))
}
