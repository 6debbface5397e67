package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
)

const minPasswordLen = 6

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// validEmail accepts a bare RFC 5322 address with a dotted domain.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return strings.Contains(s[at+1:], ".")
}

func (a *App) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if len(req.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	user := &User{Username: req.Username, Email: req.Email, Password: hashed}
	if err := a.Store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			writeError(w, http.StatusConflict, "User with this email or username already exists")
			return
		}
		writeStoreError(w, err)
		return
	}

	access, err := createAccessToken(user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	refresh, err := createRefreshToken(user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":       "User registered successfully",
		"user":          user,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (a *App) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := a.Store.UserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		writeStoreError(w, err)
		return
	}
	// Same response for unknown email and wrong password.
	if err != nil || !comparePassword(user.Password, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	access, err := createAccessToken(user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	refresh, err := createRefreshToken(user.ID.Hex())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Login successful",
		"user":          user,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// HandleRefresh mints a new access token for the refresh token's subject.
// The refresh token itself is never rotated or extended.
func (a *App) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	access, err := createAccessToken(userIDFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

func (a *App) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := a.Store.UserByID(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (a *App) HandleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "API Management System",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"auth":     "/api/auth",
			"apis":     "/api/apis",
			"api_keys": "/api/keys",
			"logs":     "/api/logs",
			"execute":  "/api/execute",
		},
	})
}

func (a *App) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (a *App) HandleReady(w http.ResponseWriter, r *http.Request) {
	if !a.ready.Load() || a.Store.Ping(r.Context()) != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ready": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func (a *App) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Resource not found")
}
