package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authservice "github.com/talkeasy/backend/internal/service/auth"
)

func setupRouter() *chi.Mux {
	h := New(authservice.NewService(nil), nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func doJSON(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSignupLoginMeLogout(t *testing.T) {
	r := setupRouter()

	resp := doJSON(r, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "John Doe", "email": "john@example.com", "password": "pw", "confirmPassword": "pw",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doJSON(r, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "john@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var grant authservice.Grant
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &grant))
	assert.Equal(t, "John Doe", grant.User.Name)

	resp = doJSON(r, http.MethodGet, "/auth/me", grant.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "john@example.com")

	resp = doJSON(r, http.MethodPost, "/auth/logout", grant.Token, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = doJSON(r, http.MethodGet, "/auth/me", grant.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSignupPasswordMismatch(t *testing.T) {
	resp := doJSON(setupRouter(), http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "John", "email": "john@example.com", "password": "a", "confirmPassword": "b",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "passwords don't match")
}

func TestLoginInvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{")))
	resp := httptest.NewRecorder()
	setupRouter().ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMeRequiresToken(t *testing.T) {
	resp := doJSON(setupRouter(), http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?token=from-query", nil)
	assert.Equal(t, "from-query", TokenFromRequest(req))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFromRequest(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, TokenFromRequest(req))
}
