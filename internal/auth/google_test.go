// ABOUTME: Tests for the Google loopback sign-in
// ABOUTME: A fake opener plays the browser and an httptest server plays the token endpoint

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// tokenEndpoint answers the code exchange with the given id_token
func tokenEndpoint(t *testing.T, idTok string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.NotEmpty(t, r.PostForm.Get("code_verifier"))

		w.Header().Set("Content-Type", "application/json")
		body := map[string]any{"access_token": "google-access", "token_type": "Bearer", "expires_in": 3600}
		if idTok != "" {
			body["id_token"] = idTok
		}
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

// browserReply simulates the consent page redirecting back with the given params
func browserReply(t *testing.T, params func(state string) url.Values) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, "S256", q.Get("code_challenge_method"))
		assert.Contains(t, q.Get("scope"), "openid")

		redirect := q.Get("redirect_uri") + "?" + params(q.Get("state")).Encode()
		go func() {
			resp, err := http.Get(redirect)
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
}

func newTestProvider(t *testing.T, tokenURL string, open func(string) error) *GoogleProvider {
	return NewGoogleProvider("client-id", "client-secret",
		WithEndpoint(oauth2.Endpoint{
			AuthURL:   "https://accounts.example.com/auth",
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		WithOpener(open),
	)
}

func TestGoogleProvider_IDToken(t *testing.T) {
	want := idToken(t, time.Now().Add(time.Hour))
	server := tokenEndpoint(t, want)

	var noticed string
	p := newTestProvider(t, server.URL, browserReply(t, func(state string) url.Values {
		return url.Values{"state": {state}, "code": {"the-code"}}
	}))
	WithAuthURLNotice(func(u string) { noticed = u })(p)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := p.IDToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Contains(t, noticed, "https://accounts.example.com/auth")
}

func TestGoogleProvider_Declined(t *testing.T) {
	server := tokenEndpoint(t, "unused")
	p := newTestProvider(t, server.URL, browserReply(t, func(state string) url.Values {
		return url.Values{"state": {state}, "error": {"access_denied"}}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.IDToken(ctx)
	assert.ErrorIs(t, err, ErrIdentityProvider)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestGoogleProvider_StateMismatch(t *testing.T) {
	server := tokenEndpoint(t, "unused")
	p := newTestProvider(t, server.URL, browserReply(t, func(string) url.Values {
		return url.Values{"state": {"forged"}, "code": {"the-code"}}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.IDToken(ctx)
	assert.ErrorIs(t, err, ErrIdentityProvider)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestGoogleProvider_NoIDToken(t *testing.T) {
	server := tokenEndpoint(t, "")
	p := newTestProvider(t, server.URL, browserReply(t, func(state string) url.Values {
		return url.Values{"state": {state}, "code": {"the-code"}}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.IDToken(ctx)
	assert.ErrorIs(t, err, ErrIdentityProvider)
}

func TestGoogleProvider_ContextCanceled(t *testing.T) {
	p := newTestProvider(t, "http://127.0.0.1:1/token", func(string) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.IDToken(ctx)
	assert.ErrorIs(t, err, ErrIdentityProvider)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGoogleProvider_RequiresClientID(t *testing.T) {
	_, err := NewGoogleProvider("", "").IDToken(context.Background())
	assert.ErrorIs(t, err, ErrIdentityProvider)
}
