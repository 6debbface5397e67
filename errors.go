package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// Store sentinels. Handlers translate these into the status-code contract;
// anything else is a 500.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	ErrInvalidID = errors.New("invalid id")
)

// ErrInvalidToken covers bad signatures, expiry, and wrong token type alike.
var ErrInvalidToken = errors.New("invalid token")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

// writeError emits the error envelope {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps a failed store call to a response. 404 is only
// appropriate on lookups whose absence the caller may learn about.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDuplicate):
		writeError(w, http.StatusConflict, "User with this email or username already exists")
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidID):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		log.Printf("store error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
