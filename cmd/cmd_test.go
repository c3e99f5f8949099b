// ABOUTME: Shared helpers for command tests
// ABOUTME: Fake backend plus settings and session store isolation

package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sawant8123/news-api-portal/internal/client"
	"github.com/sawant8123/news-api-portal/internal/config"
	"github.com/sawant8123/news-api-portal/internal/session"
)

// useBackend points commands at apiURL with an in-memory session
func useBackend(t *testing.T, apiURL string, s session.Session) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore(s)

	prevSettings, prevStore := settings, openStore
	cfg := config.Default()
	cfg.APIURL = apiURL
	settings = &cfg
	openStore = func() session.Store { return store }

	t.Cleanup(func() {
		settings, openStore = prevSettings, prevStore
		jsonOutput = false
	})
	return store
}

func signedInSession(t *testing.T) session.Session {
	return session.Session{AccessToken: tokenExpiringIn(t, time.Hour), RefreshToken: "refresh", DisplayName: "Ada"}
}

// tokenExpiringIn returns a JWT whose exp claim is d from now
func tokenExpiringIn(t *testing.T, d time.Duration) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(d).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return tok
}

// newsBackend serves the endpoints the commands call
func newsBackend(t *testing.T, articles []client.Article) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/google/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.LoginResponse{
			Tokens: &client.Tokens{Access: "access", Refresh: "refresh"},
			User:   &client.User{ID: 1, Email: "ada@example.com", Name: "Ada"},
		})
	})
	mux.HandleFunc("/me/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.User{ID: 1, Email: "ada@example.com", Name: "Ada"})
	})
	mux.HandleFunc("/news/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.HeadlinesResponse{Count: len(articles), Articles: articles})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// unauthorizedBackend rejects every request and every refresh
func unauthorizedBackend(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Token is invalid or expired"})
	}))
	t.Cleanup(server.Close)
	return server
}

// staleRetryBackend issues a new access token on refresh but keeps
// rejecting the retried call
func staleRetryBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access": "new"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Token is invalid or expired"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// useAllProxy overrides the all_proxy setting for one test
func useAllProxy(t *testing.T, allProxy string) {
	t.Helper()
	cfg := *settings
	cfg.AllProxy = allProxy
	settings = &cfg
}
