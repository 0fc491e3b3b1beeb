//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-todo-planner/internal/auth"
	"go-todo-planner/internal/calendar"
	"go-todo-planner/internal/config"
	"go-todo-planner/internal/database"
	"go-todo-planner/internal/handler"
	"go-todo-planner/internal/middleware"
	"go-todo-planner/internal/repository/postgres"
	"go-todo-planner/internal/router"
	"go-todo-planner/internal/service"
)

const testSecret = "integration-secret"

// newPostgresServer wires the API against the database named by
// TEST_DATABASE_URL and skips the test when it is unset.
func newPostgresServer(t *testing.T) *httptest.Server {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	cfg := &config.Config{
		JWTSecret:      testSecret,
		JWTTTL:         time.Hour,
		BcryptCost:     bcrypt.MinCost,
		CORSOrigins:    []string{"*"},
		RequestTimeout: 30 * time.Second,
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	require.NoError(t, err)
	authService, err := service.NewAuthService(postgres.NewUserRepository(db.Pool), auth.NewPasswordHasher(cfg.BcryptCost), tokens, cfg.JWTTTL)
	require.NoError(t, err)
	todoService := service.NewTodoService(postgres.NewTodoRepository(db.Pool))
	importService := service.NewImportService(calendar.NewFetcher(5*time.Second, 1<<20), todoService, "")

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(tokens), router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Todo:     handler.NewTodoHandler(todoService, importService, "integration.test"),
		Calendar: handler.NewCalendarHandler(importService),
	}, db))
	t.Cleanup(server.Close)

	return server
}

// uniqueName keeps usernames distinct across runs against a shared database.
func uniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func registerAndLogin(t *testing.T, server *httptest.Server, username string) (int64, string) {
	t.Helper()

	creds := map[string]string{"username": username, "password": "Password123!"}

	resp := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", creds, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/auth/login", creds, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Token string `json:"token"`
		ID    int64  `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.NotEmpty(t, parsed.Token)

	return parsed.ID, parsed.Token
}

func doJSON(t *testing.T, method string, url string, body any, accessToken string) *http.Response {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
