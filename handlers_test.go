package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *mux.Router {
	return newRouter(&App{Store: NewMemStore()})
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func registerAlice(t *testing.T, r *mux.Router) map[string]interface{} {
	t.Helper()
	rec, out := doJSON(t, r, "POST", "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	return out
}

func TestRegisterLoginMe(t *testing.T) {
	r := newTestRouter()

	out := registerAlice(t, r)
	require.Equal(t, "User registered successfully", out["message"])
	require.NotEmpty(t, out["access_token"])
	require.NotEmpty(t, out["refresh_token"])

	user := out["user"].(map[string]interface{})
	createdID := user["id"].(string)
	require.NotEmpty(t, createdID)
	require.Equal(t, "alice", user["username"])
	_, leaked := user["password"]
	require.False(t, leaked, "password hash must not be serialized")

	rec, out := doJSON(t, r, "POST", "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Login successful", out["message"])
	access := out["access_token"].(string)
	require.NotEmpty(t, access)

	rec, out = doJSON(t, r, "GET", "/api/auth/me", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	me := out["user"].(map[string]interface{})
	require.Equal(t, createdID, me["id"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := newTestRouter()
	registerAlice(t, r)

	rec, out := doJSON(t, r, "POST", "/api/auth/register", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "User with this email or username already exists", out["error"])
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r := newTestRouter()
	registerAlice(t, r)

	rec, out := doJSON(t, r, "POST", "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "alice2@example.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "User with this email or username already exists", out["error"])
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing username", map[string]string{"email": "a@example.com", "password": "secret1"},
			"Username, email, and password are required"},
		{"missing email", map[string]string{"username": "a", "password": "secret1"},
			"Username, email, and password are required"},
		{"missing password", map[string]string{"username": "a", "email": "a@example.com"},
			"Username, email, and password are required"},
		{"bad email", map[string]string{"username": "a", "email": "not-an-email", "password": "secret1"},
			"Invalid email format"},
		{"no domain dot", map[string]string{"username": "a", "email": "a@localhost", "password": "secret1"},
			"Invalid email format"},
		{"short password", map[string]string{"username": "a", "email": "a@example.com", "password": "five5"},
			"Password must be at least 6 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, out := doJSON(t, r, "POST", "/api/auth/register", tc.body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, tc.want, out["error"])
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r := newTestRouter()
	registerAlice(t, r)

	rec, out := doJSON(t, r, "POST", "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid email or password", out["error"])

	// Unknown email must produce the identical response.
	rec2, out2 := doJSON(t, r, "POST", "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "wrong",
	}, "")
	require.Equal(t, rec.Code, rec2.Code)
	require.Equal(t, out["error"], out2["error"])
}

func TestLoginMissingFields(t *testing.T) {
	r := newTestRouter()

	rec, out := doJSON(t, r, "POST", "/api/auth/login", map[string]string{"email": "a@example.com"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Email and password are required", out["error"])
}

func TestRefresh(t *testing.T) {
	r := newTestRouter()
	out := registerAlice(t, r)
	refresh := out["refresh_token"].(string)
	createdID := out["user"].(map[string]interface{})["id"].(string)

	rec, out := doJSON(t, r, "POST", "/api/auth/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, rec.Code)
	access := out["access_token"].(string)
	require.NotEmpty(t, access)
	require.NotContains(t, out, "refresh_token", "refresh must not rotate the refresh token")

	rec, out = doJSON(t, r, "GET", "/api/auth/me", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, createdID, out["user"].(map[string]interface{})["id"])
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	r := newTestRouter()
	out := registerAlice(t, r)
	access := out["access_token"].(string)

	rec, _ := doJSON(t, r, "POST", "/api/auth/refresh", nil, access)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeRejectsRefreshToken(t *testing.T) {
	r := newTestRouter()
	out := registerAlice(t, r)
	refresh := out["refresh_token"].(string)

	rec, _ := doJSON(t, r, "GET", "/api/auth/me", nil, refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeUnauthorized(t *testing.T) {
	r := newTestRouter()

	rec, _ := doJSON(t, r, "GET", "/api/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, r, "GET", "/api/auth/me", nil, "garbage")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeUserGone(t *testing.T) {
	r := newTestRouter()

	// Valid token whose subject was never persisted.
	tok, err := createAccessToken("64b5f0c2a1d2e3f4a5b6c7d8")
	require.NoError(t, err)

	rec, out := doJSON(t, r, "GET", "/api/auth/me", nil, tok)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "User not found", out["error"])
}

func TestIndexAndHealth(t *testing.T) {
	r := newTestRouter()

	rec, out := doJSON(t, r, "GET", "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "API Management System", out["message"])
	endpoints := out["endpoints"].(map[string]interface{})
	require.Equal(t, "/api/auth", endpoints["auth"])
	require.Len(t, endpoints, 5)

	rec, out = doJSON(t, r, "GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "healthy", out["status"])
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter()

	rec, out := doJSON(t, r, "GET", "/api/nope", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Resource not found", out["error"])
}
