//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthFlowAndProtectedEndpoints(t *testing.T) {
	server := newPostgresServer(t)
	username := uniqueName("alice")

	_, token := registerAndLogin(t, server, username)

	dup := doJSON(t, http.MethodPost, server.URL+"/api/auth/register",
		map[string]string{"username": strings.ToUpper(username), "password": "x"}, "")
	require.Equal(t, http.StatusConflict, dup.StatusCode)

	wrong := doJSON(t, http.MethodPost, server.URL+"/api/auth/login",
		map[string]string{"username": username, "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, wrong.StatusCode)

	protected := doJSON(t, http.MethodGet, server.URL+"/api/todos", nil, "")
	require.Equal(t, http.StatusUnauthorized, protected.StatusCode)

	allowed := doJSON(t, http.MethodGet, server.URL+"/api/todos", nil, token)
	require.Equal(t, http.StatusOK, allowed.StatusCode)
}
