package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"15m", 15 * time.Minute},
		{"12h", 12 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
	}

	for _, tt := range tests {
		got, err := ParseExpiration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseExpirationInvalid(t *testing.T) {
	for _, in := range []string{"", "m", "15", "15w", "abc", "fifteenm"} {
		_, err := ParseExpiration(in)
		assert.Error(t, err, in)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWTExpiresIn)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshExpires)
	assert.Equal(t, 10*time.Minute, cfg.OTPExpiry)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "5m")
	t.Setenv("OTP_EXPIRY_MINUTES", "3")
	t.Setenv("PORT", "9000")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.JWTExpiresIn)
	assert.Equal(t, 3*time.Minute, cfg.OTPExpiry)
	assert.Equal(t, "9000", cfg.Port)
}
