package otp

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funquizz/internal/cache"
)

func newTestService(t *testing.T, expiry time.Duration) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(cache.NewRedisCacheFromClient(client), expiry), mr
}

func TestIssueThenVerify(t *testing.T) {
	svc, _ := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "alice@example.com", PurposeEmailVerification)
	require.NoError(t, err)
	require.Len(t, code, 6)

	ok, err := svc.Verify(ctx, "alice@example.com", code, PurposeEmailVerification)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyWrongCode(t *testing.T) {
	svc, _ := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "alice@example.com", PurposeEmailVerification)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	ok, err := svc.Verify(ctx, "alice@example.com", wrong, PurposeEmailVerification)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyDoesNotConsume(t *testing.T) {
	svc, _ := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "alice@example.com", PurposePasswordReset)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ok, err := svc.Verify(ctx, "alice@example.com", code, PurposePasswordReset)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestConsumeInvalidates(t *testing.T) {
	svc, _ := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "alice@example.com", PurposeEmailVerification)
	require.NoError(t, err)

	require.NoError(t, svc.Consume(ctx, "alice@example.com", PurposeEmailVerification))

	ok, err := svc.Verify(ctx, "alice@example.com", code, PurposeEmailVerification)
	require.NoError(t, err)
	assert.False(t, ok)

	// Consuming again is a no-op.
	require.NoError(t, svc.Consume(ctx, "alice@example.com", PurposeEmailVerification))
}

func TestReissueInvalidatesPrevious(t *testing.T) {
	svc, _ := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	first, err := svc.Issue(ctx, "alice@example.com", PurposeEmailVerification)
	require.NoError(t, err)

	second, err := svc.Issue(ctx, "alice@example.com", PurposeEmailVerification)
	require.NoError(t, err)

	if first != second {
		ok, err := svc.Verify(ctx, "alice@example.com", first, PurposeEmailVerification)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	ok, err := svc.Verify(ctx, "alice@example.com", second, PurposeEmailVerification)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPurposesAreIndependent(t *testing.T) {
	svc, _ := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "alice@example.com", PurposeEmailVerification)
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "alice@example.com", code, PurposePasswordReset)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	svc, mr := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "alice@example.com", PurposeEmailVerification)
	require.NoError(t, err)

	mr.FastForward(6 * time.Minute)

	ok, err := svc.Verify(ctx, "alice@example.com", code, PurposeEmailVerification)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyFormat(t *testing.T) {
	svc, mr := newTestService(t, 5*time.Minute)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "alice@example.com", PurposePasswordReset)
	require.NoError(t, err)

	assert.True(t, mr.Exists("otp:password_reset:alice@example.com"))
}

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}
