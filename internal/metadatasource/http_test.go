package metadatasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginAndAuthenticatedRequest(t *testing.T) {
	loginCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			loginCalls++
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]string{"token": "test-token"},
			})
		case "/search":
			if r.Header.Get("Authorization") != "Bearer test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode([]Raw{{"id": "1"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", "")
	results, err := c.Search(context.Background(), "drama")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if loginCalls != 1 {
		t.Fatalf("login called %d times, want 1", loginCalls)
	}
}

func TestRetriesOnceAfter401ThenRefreshesToken(t *testing.T) {
	tokenGen := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			tokenGen++
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]string{"token": "token-v" + string(rune('0'+tokenGen))},
			})
		case "/search":
			auth := r.Header.Get("Authorization")
			if auth != "Bearer token-v2" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode([]Raw{{"id": "ok"}})
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", "")
	// Seed a stale token whose expiry (the zero time plus one day) is already
	// past, so validToken logs in before the first request and gets token-v1.
	// The server rejects token-v1 with a 401; the client must log in again
	// (token-v2) and retry exactly once.
	c.token = "token-v1-stale"
	c.expiresAt = c.expiresAt.Add(24 * 3600 * 1e9)

	results, err := c.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result after refresh-on-401, got %d", len(results))
	}
}

func TestLoginFailurePropagatesAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "bad-key", "")
	_, err := c.Search(context.Background(), "q")
	if err == nil {
		t.Fatal("expected an error from a failing login")
	}
	var authErr *AuthError
	if !asAuthError(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T: %v", err, err)
	}
}

func asAuthError(err error, target **AuthError) bool {
	if ae, ok := err.(*AuthError); ok {
		*target = ae
		return true
	}
	return false
}
