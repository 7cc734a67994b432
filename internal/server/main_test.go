package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:          "test",
		Port:         "0",
		JWTSecret:    testSecret,
		JWTTTL:       time.Hour,
		UploadDir:    t.TempDir(),
		FeatureFlags: "realtime_messages=on",
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

// setupServer builds a server on SQLite. withRedis adds a miniredis
// instance for revocation and realtime tests.
func setupServer(t *testing.T, withRedis bool) *testEnv {
	t.Helper()
	env := &testEnv{db: newTestDB(t)}

	var rdb *redis.Client
	if withRedis {
		env.mr = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: env.mr.Addr()})
	}

	srv, err := NewServer(testConfig(t), env.db, rdb)
	require.NoError(t, err)
	t.Cleanup(srv.shutdownFn)
	env.srv = srv
	env.app = srv.App()
	return env
}

func (e *testEnv) createUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, e.db.Create(u).Error)
	token, err := e.srv.auth.Issue(u.ID, u.Username)
	require.NoError(t, err)
	return u, token
}

type apiResponse struct {
	Status int
	Body   map[string]any
	Header http.Header
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) apiResponse {
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
	defer func() { _ = resp.Body.Close() }()

	out := apiResponse{Status: resp.StatusCode, Header: resp.Header}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.Body)
	}
	return out
}

// likeUsers extracts the "user" field of each like entry.
func likeUsers(t *testing.T, v any) []float64 {
	t.Helper()
	list, ok := v.([]any)
	require.True(t, ok, "likes is %T", v)
	out := make([]float64, 0, len(list))
	for _, item := range list {
		out = append(out, item.(map[string]any)["user"].(float64))
	}
	return out
}
