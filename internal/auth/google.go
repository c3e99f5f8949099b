// ABOUTME: Google sign-in using the OAuth2 loopback flow with PKCE
// ABOUTME: Opens the consent page in a browser and reads the id_token from the code exchange

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sawant8123/news-api-portal/internal/browser"
)

const callbackPath = "/callback"

// GoogleProvider obtains an ID token through the user's browser
type GoogleProvider struct {
	config     oauth2.Config
	listenAddr string
	open       browser.Opener
	notify     func(authURL string)
}

// GoogleOption configures the GoogleProvider
type GoogleOption func(*GoogleProvider)

// WithEndpoint replaces Google's OAuth2 endpoint
func WithEndpoint(e oauth2.Endpoint) GoogleOption {
	return func(p *GoogleProvider) {
		p.config.Endpoint = e
	}
}

// WithOpener replaces the browser launcher
func WithOpener(o browser.Opener) GoogleOption {
	return func(p *GoogleProvider) {
		p.open = o
	}
}

// WithAuthURLNotice is called with the consent URL before the browser opens,
// so it can be shown when no browser is available
func WithAuthURLNotice(fn func(authURL string)) GoogleOption {
	return func(p *GoogleProvider) {
		p.notify = fn
	}
}

// NewGoogleProvider creates a provider for a desktop OAuth client
func NewGoogleProvider(clientID, clientSecret string, opts ...GoogleOption) *GoogleProvider {
	p := &GoogleProvider{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		listenAddr: "127.0.0.1:0",
		open:       browser.Open,
		notify:     func(string) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type callbackResult struct {
	code string
	err  error
}

// IDToken implements IdentityProvider
func (p *GoogleProvider) IDToken(ctx context.Context) (string, error) {
	if p.config.ClientID == "" {
		return "", fmt.Errorf("%w: google_client_id is not configured", ErrIdentityProvider)
	}

	ln, err := net.Listen("tcp", p.listenAddr)
	if err != nil {
		return "", fmt.Errorf("%w: starting callback listener: %w", ErrIdentityProvider, err)
	}

	cfg := p.config
	cfg.RedirectURL = "http://" + ln.Addr().String() + callbackPath

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		res := readCallback(r, state)
		if res.err != nil {
			http.Error(w, "Sign-in failed. You can close this window.", http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Signed in to News Portal. You can close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Callback server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	p.notify(authURL)
	if err := p.open(authURL); err != nil {
		slog.Warn("Could not open browser", "error", err)
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrIdentityProvider, ctx.Err())
	}
	if res.err != nil {
		return "", fmt.Errorf("%w: %w", ErrIdentityProvider, res.err)
	}

	token, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("%w: exchanging code: %w", ErrIdentityProvider, err)
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return "", fmt.Errorf("%w: token response has no id_token", ErrIdentityProvider)
	}
	slog.Debug("Google ID token received")
	return idToken, nil
}

func readCallback(r *http.Request, state string) callbackResult {
	q := r.URL.Query()
	if q.Get("state") != state {
		return callbackResult{err: errors.New("state mismatch")}
	}
	if reason := q.Get("error"); reason != "" {
		return callbackResult{err: fmt.Errorf("sign-in declined: %s", reason)}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: errors.New("callback has no code")}
	}
	return callbackResult{code: code}
}

// StaticProvider returns a credential obtained elsewhere, such as a pasted token
type StaticProvider struct {
	Token string
}

// IDToken implements IdentityProvider
func (s StaticProvider) IDToken(context.Context) (string, error) {
	if s.Token == "" {
		return "", fmt.Errorf("%w: no ID token given", ErrIdentityProvider)
	}
	return s.Token, nil
}
