package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-todo-planner/internal/calendar"
	"go-todo-planner/internal/middleware"
	"go-todo-planner/internal/model"
	"go-todo-planner/pkg/apierror"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error", apierror.Validation("title is required", "title"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrapped api error", fmt.Errorf("create: %w", apierror.NotFound("gone")), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate user", fmt.Errorf("create user: %w", model.ErrUserAlreadyExists), http.StatusConflict, "CONFLICT"},
		{"bad credentials", model.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"no identity", model.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"bad token", model.ErrInvalidToken, http.StatusForbidden, "FORBIDDEN"},
		{"foreign owner", fmt.Errorf("%w: mismatch", model.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{"missing todo", model.ErrTodoNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"invalid url", calendar.ErrInvalidURL, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"fetch failure", fmt.Errorf("%w: upstream status 502", calendar.ErrFetch), http.StatusInternalServerError, "FETCH_ERROR"},
		{"missing owner row", fmt.Errorf("insert todo: %w", model.ErrUserReference), http.StatusInternalServerError, "STORAGE_ERROR"},
		{"unknown", errors.New("pq: connection refused on 10.0.0.5"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body model.APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Error)
			assert.NotContains(t, body.Error, "10.0.0.5")
		})
	}
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	_, err := currentUser(req)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	req = req.WithContext(middleware.WithClaims(req.Context(), &model.AuthClaims{UserID: 12}))
	id, err := currentUser(req)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestTodoIDParam(t *testing.T) {
	t.Parallel()

	for raw, ok := range map[string]bool{"1": true, "42": true, "0": false, "-3": false, "abc": false, "": false} {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		_, err := todoIDParam(req)
		assert.Equal(t, ok, err == nil, raw)
	}
}
