// ABOUTME: Login and logout flows for the News Portal
// ABOUTME: Exchanges a Google ID token for backend credentials and persists the session

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sawant8123/news-api-portal/internal/client"
	"github.com/sawant8123/news-api-portal/internal/session"
)

// ErrIdentityProvider means Google sign-in was declined, cancelled or
// produced an unusable credential. The backend is never contacted.
var ErrIdentityProvider = errors.New("google login failed")

// User-visible login messages
const (
	MsgProviderFailed = "Google login failed"
	MsgMissingTokens  = "Invalid response from server - missing tokens"
	MsgLoginFailed    = "Login failed"
	MsgTimedOut       = "Request timed out. Please try again."
	MsgCancelled      = "Sign-in cancelled"
)

// Exchanger trades a Google ID token for backend credentials
type Exchanger interface {
	GoogleLogin(ctx context.Context, idToken string) (*client.LoginResponse, error)
}

// IdentityProvider obtains a Google ID token for the user
type IdentityProvider interface {
	IDToken(ctx context.Context) (string, error)
}

// Flow drives login and logout against one session store
type Flow struct {
	exchanger Exchanger
	store     session.Store
	navigator client.Navigator
	provider  IdentityProvider
	now       func() time.Time
}

// Option configures the Flow
type Option func(*Flow)

// WithProvider sets the identity provider used by SignIn
func WithProvider(p IdentityProvider) Option {
	return func(f *Flow) {
		f.provider = p
	}
}

// WithNavigator sets who is told to show the login screen on logout
func WithNavigator(n client.Navigator) Option {
	return func(f *Flow) {
		f.navigator = n
	}
}

// WithClock overrides time.Now for expiry checks
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

// NewFlow creates a login flow
func NewFlow(exchanger Exchanger, store session.Store, opts ...Option) *Flow {
	f := &Flow{
		exchanger: exchanger,
		store:     store,
		navigator: client.NavigatorFunc(func(error) {}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SignIn asks the identity provider for a credential and completes the login
func (f *Flow) SignIn(ctx context.Context) (session.Session, error) {
	if f.provider == nil {
		return session.Session{}, fmt.Errorf("%w: no identity provider configured", ErrIdentityProvider)
	}

	idToken, err := f.provider.IDToken(ctx)
	if err != nil {
		if errors.Is(err, ErrIdentityProvider) {
			return session.Session{}, err
		}
		return session.Session{}, fmt.Errorf("%w: %w", ErrIdentityProvider, err)
	}
	return f.CompleteLogin(ctx, idToken)
}

// CompleteLogin exchanges idToken for a backend session and persists it.
// Nothing is stored unless the reply carries both tokens.
func (f *Flow) CompleteLogin(ctx context.Context, idToken string) (session.Session, error) {
	if err := f.checkCredential(idToken); err != nil {
		return session.Session{}, err
	}

	resp, err := f.exchanger.GoogleLogin(ctx, idToken)
	if err != nil {
		return session.Session{}, fmt.Errorf("exchanging Google credential: %w", err)
	}

	if resp.Tokens == nil || resp.Tokens.Access == "" || resp.Tokens.Refresh == "" {
		return session.Session{}, fmt.Errorf("%w: missing tokens", client.ErrInvalidServerResponse)
	}

	s := session.Session{
		AccessToken:  resp.Tokens.Access,
		RefreshToken: resp.Tokens.Refresh,
	}
	if resp.User != nil {
		s.DisplayName = resp.User.Name
	}

	if err := f.store.Set(s); err != nil {
		return session.Session{}, fmt.Errorf("saving session: %w", err)
	}

	slog.Info("Signed in", "user", s.Name())
	return s, nil
}

// checkCredential rejects credentials that are not a current JWT
func (f *Flow) checkCredential(idToken string) error {
	if idToken == "" {
		return fmt.Errorf("%w: empty credential", ErrIdentityProvider)
	}

	claims, err := session.ParseClaims(idToken)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIdentityProvider, err)
	}
	if !claims.ExpiresAt.IsZero() && !claims.ExpiresAt.After(f.now()) {
		return fmt.Errorf("%w: credential expired at %s", ErrIdentityProvider, claims.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

// Logout removes every stored credential and returns to the login screen
func (f *Flow) Logout() error {
	if err := f.store.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	slog.Info("Signed out")
	f.navigator.ForceLogin(nil)
	return nil
}

// Cancelled reports whether err comes from the user abandoning sign-in
func Cancelled(err error) bool {
	return errors.Is(err, client.ErrRequestCanceled) || errors.Is(err, context.Canceled)
}

// UserMessage maps a login error to the text shown to the user
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case Cancelled(err):
		return MsgCancelled
	case errors.Is(err, ErrIdentityProvider):
		return MsgProviderFailed
	case errors.Is(err, client.ErrInvalidServerResponse):
		return MsgMissingTokens
	case client.IsTimeout(err):
		return MsgTimedOut
	}
	if detail := client.Detail(err); detail != "" {
		return detail
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgLoginFailed
}
