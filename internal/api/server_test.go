package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"funquizz/internal/auth"
	"funquizz/internal/cache"
	"funquizz/internal/database"
	"funquizz/internal/flashcard"
	"funquizz/internal/flashcardset"
	"funquizz/internal/otp"
	"funquizz/internal/token"
	"funquizz/internal/user"
)

type mailSink struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *mailSink) SendVerificationOTP(to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *mailSink) SendPasswordResetOTP(to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *mailSink) lastCode(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

func newTestServer(t *testing.T) (*httptest.Server, *mailSink) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := &database.Database{DB: gdb}
	require.NoError(t, db.AutoMigrate(&user.User{}, &flashcardset.FlashcardSet{}, &flashcard.Flashcard{}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	redisCache := cache.NewRedisCacheFromClient(client)

	mail := &mailSink{codes: make(map[string]string)}

	userRepo := user.NewRepository(db)
	otpService := otp.NewService(redisCache, 5*time.Minute)
	tokenService := token.NewService([]byte("access-secret"), []byte("refresh-secret"), 15*time.Minute, 7*24*time.Hour, redisCache)
	authService := auth.NewService(userRepo, otpService, tokenService, mail)
	authHandler := auth.NewHandler(authService)

	setService := flashcardset.NewService(
		flashcardset.NewRepository(db),
		flashcardset.NewAccessControl(redisCache),
	)
	setHandler := flashcardset.NewHandler(setService)

	cardService := flashcard.NewService(flashcard.NewRepository(db), setService)
	cardHandler := flashcard.NewHandler(cardService)

	server := NewServer(authHandler, setHandler, cardHandler, 1000)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, mail
}

func doJSON(t *testing.T, method, url, bearer string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func fieldString(t *testing.T, m map[string]json.RawMessage, key string) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(m[key], &s))
	return s
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func registerUser(t *testing.T, ts *httptest.Server, email, username, password string) tokenPair {
	t.Helper()
	resp, body := doJSON(t, "POST", ts.URL+"/auth/register", "", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var pair tokenPair
	require.NoError(t, json.Unmarshal(body["token"], &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, "GET", ts.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", fieldString(t, body, "status"))
}

func TestRegisterAndVerifyEmailScenario(t *testing.T) {
	ts, mail := newTestServer(t)

	registerUser(t, ts, "alice@example.com", "alice", "Passw0rd!sufficient")

	resp, body := doJSON(t, "POST", ts.URL+"/auth/verify-email", "", map[string]string{
		"email": "alice@example.com",
		"otp":   "000000",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or expired OTP", fieldString(t, body, "message"))

	resp, body = doJSON(t, "POST", ts.URL+"/auth/verify-email", "", map[string]string{
		"email": "alice@example.com",
		"otp":   mail.lastCode("alice@example.com"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Email verified successfully", fieldString(t, body, "message"))
}

func TestRegisterConflict(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts, "alice@example.com", "alice", "Passw0rd!sufficient")

	resp, _ := doJSON(t, "POST", ts.URL+"/auth/register", "", map[string]string{
		"email": "alice@example.com", "username": "alice2", "password": "Passw0rd!sufficient",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, "POST", ts.URL+"/auth/register", "", map[string]string{
		"email": "alice2@example.com", "username": "alice", "password": "Passw0rd!sufficient",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLoginAndRefreshRotation(t *testing.T) {
	ts, _ := newTestServer(t)
	registerUser(t, ts, "alice@example.com", "alice", "Passw0rd!sufficient")

	resp, body := doJSON(t, "POST", ts.URL+"/auth/login", "", map[string]string{
		"identifier": "alice",
		"password":   "Passw0rd!sufficient",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pair tokenPair
	require.NoError(t, json.Unmarshal(body["token"], &pair))

	resp, _ = doJSON(t, "POST", ts.URL+"/auth/refresh-token", "", map[string]string{
		"refreshToken": pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The rotated-away token is single-use.
	resp, _ = doJSON(t, "POST", ts.URL+"/auth/refresh-token", "", map[string]string{
		"refreshToken": pair.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	ts, _ := newTestServer(t)
	pair := registerUser(t, ts, "alice@example.com", "alice", "Passw0rd!sufficient")

	resp, _ := doJSON(t, "POST", ts.URL+"/auth/logout", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, "POST", ts.URL+"/auth/refresh-token", "", map[string]string{
		"refreshToken": pair.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBearerRequired(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := doJSON(t, "GET", ts.URL+"/sets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, "GET", ts.URL+"/sets", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSetPassUnlockScenario(t *testing.T) {
	ts, _ := newTestServer(t)
	alice := registerUser(t, ts, "alice@example.com", "alice", "Passw0rd!sufficient")
	bob := registerUser(t, ts, "bob@example.com", "bob", "Passw0rd!sufficient")

	resp, body := doJSON(t, "POST", ts.URL+"/sets", alice.AccessToken, map[string]string{
		"name":           "Geo",
		"accessType":     "setpass",
		"accessPassword": "abc123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	setID := fieldString(t, body, "id")

	setURL := fmt.Sprintf("%s/sets/%s", ts.URL, setID)

	// Locked for Bob.
	resp, _ = doJSON(t, "GET", setURL, bob.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, "POST", setURL+"/unlock", bob.AccessToken, map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Still locked after the failed unlock.
	resp, _ = doJSON(t, "GET", setURL, bob.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, "POST", setURL+"/unlock", bob.AccessToken, map[string]string{"password": "abc123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, "GET", setURL, bob.AccessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The owner never needed to unlock.
	resp, _ = doJSON(t, "GET", setURL, alice.AccessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOwnerScopedSetMutations(t *testing.T) {
	ts, _ := newTestServer(t)
	alice := registerUser(t, ts, "alice@example.com", "alice", "Passw0rd!sufficient")
	bob := registerUser(t, ts, "bob@example.com", "bob", "Passw0rd!sufficient")

	resp, body := doJSON(t, "POST", ts.URL+"/sets", alice.AccessToken, map[string]string{
		"name": "Geo", "accessType": "public",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	setURL := fmt.Sprintf("%s/sets/%s", ts.URL, fieldString(t, body, "id"))

	// Bob can read the public set but his writes land on zero rows.
	resp, _ = doJSON(t, "GET", setURL, bob.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, "PATCH", setURL, bob.AccessToken, map[string]string{"name": "Stolen"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, "DELETE", setURL, bob.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, "PATCH", setURL, alice.AccessToken, map[string]string{"name": "Renamed"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFlashcardLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	alice := registerUser(t, ts, "alice@example.com", "alice", "Passw0rd!sufficient")

	resp, body := doJSON(t, "POST", ts.URL+"/sets", alice.AccessToken, map[string]string{
		"name": "Geo", "accessType": "private",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	setID := fieldString(t, body, "id")

	resp, body = doJSON(t, "POST", fmt.Sprintf("%s/sets/%s/flashcards", ts.URL, setID), alice.AccessToken, map[string]string{
		"question":   "Capital of France?",
		"answer":     "Paris",
		"difficulty": "easy",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cardID := fieldString(t, body, "id")

	cardURL := fmt.Sprintf("%s/flashcards/%s", ts.URL, cardID)

	resp, body = doJSON(t, "POST", cardURL+"/review", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var count int
	require.NoError(t, json.Unmarshal(body["reviewCount"], &count))
	assert.Equal(t, 1, count)

	resp, _ = doJSON(t, "DELETE", cardURL, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, "GET", cardURL, alice.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
