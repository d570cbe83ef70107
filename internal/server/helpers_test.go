package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"reeltrack/internal/cache"
	"reeltrack/internal/config"
	"reeltrack/internal/database"
	"reeltrack/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

// newTestEnv wires a Server over in-memory SQLite and miniredis. Each
// override runs on the config before the server is built.
func newTestEnv(t *testing.T, overrides ...func(*config.Config)) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	cache.InitRedis(mr.Addr())
	require.NotNil(t, cache.GetClient())
	t.Cleanup(func() { _ = cache.Close() })

	// per-route Redis limits are off in development
	cfg := &config.Config{
		Env:            "development",
		JWTSecret:      testSecret,
		JWTTTLHours:    1,
		Port:           "0",
		StoreDriver:    config.StoreDriverPostgres,
		AllowedOrigins: "http://localhost:5173",
	}
	for _, override := range overrides {
		override(cfg)
	}
	srv, err := NewServerWithDeps(cfg, db, cache.GetClient())
	require.NoError(t, err)

	return &testEnv{srv: srv, app: srv.NewApp(), db: db, mr: mr}
}

// createUser stores a user with a cheap hash and returns it with a token.
func (e *testEnv) createUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
	require.NoError(t, e.srv.userRepo.Create(context.Background(), user))

	token, err := e.srv.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return user, token
}

// do sends a request and returns the status and raw body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// doJSON is do plus decoding of the response into dest.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body, dest any) int {
	t.Helper()
	status, raw := e.do(t, method, path, token, body)
	if dest != nil {
		require.NoError(t, json.Unmarshal(raw, dest), "body: %s", raw)
	}
	return status
}

func newRawRequest(t *testing.T, method, path, authHeader string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return req
}

func readAll(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return out
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &resp), "body: %s", raw)
	return resp.Code
}
