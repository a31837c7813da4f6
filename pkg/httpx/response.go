// Package httpx contains small HTTP helpers shared by all handlers: JSON
// writing, middleware chaining, and per-key rate limiting.
package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteStatus writes the legacy envelope `{"meta":{"status":<code>}}` used
// by the data API for bodyless confirmations.
func WriteStatus(w http.ResponseWriter, code int) {
	WriteJSON(w, code, map[string]any{
		"meta": map[string]int{"status": code},
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Required for token responses per RFC 6749.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// ParseSpaceDelimitedFields splits a space-delimited string into fields,
// used for OAuth scope lists. Returns nil for blank input.
func ParseSpaceDelimitedFields(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
