package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret         []byte
	JWTExpiresIn      time.Duration
	JWTRefreshSecret  []byte
	JWTRefreshExpires time.Duration

	OTPExpiry time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	RateLimitRPS int
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	jwtExpires, err := ParseExpiration(getEnv("JWT_EXPIRES_IN", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	refreshExpires, err := ParseExpiration(getEnv("JWT_REFRESH_EXPIRES_IN", "7d"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRES_IN: %w", err)
	}

	otpMinutes, err := strconv.Atoi(getEnv("OTP_EXPIRY_MINUTES", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTP_EXPIRY_MINUTES: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	rps, err := strconv.Atoi(getEnv("RATE_LIMIT_RPS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           redisDB,
		JWTSecret:         []byte(os.Getenv("JWT_SECRET")),
		JWTExpiresIn:      jwtExpires,
		JWTRefreshSecret:  []byte(os.Getenv("JWT_REFRESH_SECRET")),
		JWTRefreshExpires: refreshExpires,
		OTPExpiry:         time.Duration(otpMinutes) * time.Minute,
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          smtpPort,
		SMTPUsername:      os.Getenv("SMTP_USERNAME"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		MailFrom:          getEnv("MAIL_FROM", "no-reply@funquizz.app"),
		RateLimitRPS:      rps,
	}, nil
}

// ParseExpiration parses compact expiry strings like "30s", "15m", "12h", "7d".
// time.ParseDuration has no day unit, which the refresh token TTL needs.
func ParseExpiration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	switch s[len(s)-1] {
	case 's':
		return time.Duration(value) * time.Second, nil
	case 'm':
		return time.Duration(value) * time.Minute, nil
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid duration unit in %q", s)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
