// ABOUTME: Authenticated HTTP client for the News Portal backend
// ABOUTME: Attaches the bearer token and refreshes it once on 401 before retrying

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sawant8123/news-api-portal/internal/session"
)

// Default timeouts
const (
	DefaultRequestTimeout = 8 * time.Second
	DefaultRefreshTimeout = 7 * time.Second
)

const refreshPath = "/token/refresh/"

// Navigator is told when the session is gone and the user must sign in again
type Navigator interface {
	ForceLogin(reason error)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(reason error)

// ForceLogin implements Navigator
func (f NavigatorFunc) ForceLogin(reason error) { f(reason) }

// Request is an immutable description of one backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Get builds a GET request
func Get(path string, query url.Values) Request {
	return Request{Method: http.MethodGet, Path: path, Query: query}
}

// Post builds a POST request with a JSON body
func Post(path string, body any) Request {
	return Request{Method: http.MethodPost, Path: path, Body: body}
}

// retryState travels alongside a Request; a retried request never refreshes again
type retryState struct {
	retried bool
}

// Response is a successful backend reply
type Response struct {
	StatusCode int
	Body       []byte

	// token is the access credential the request was sent with
	token string
}

// Decode unmarshals the JSON body into dst
func (r *Response) Decode(dst any) error {
	if err := json.Unmarshal(r.Body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServerResponse, err)
	}
	return nil
}

// Client is the API client for the News Portal backend
type Client struct {
	baseURL        string
	httpClient     *http.Client
	refreshClient  *http.Client
	refreshTimeout time.Duration
	store          session.Store
	navigator      Navigator
	refreshGroup   singleflight.Group
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets the client used for regular requests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTransport sets the round tripper for both regular and refresh calls
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
		c.refreshClient.Transport = rt
	}
}

// WithRequestTimeout sets the per-attempt timeout
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRefreshTimeout sets the timeout of the token refresh call
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.refreshTimeout = d
	}
}

// WithNavigator sets who is told to show the login screen
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		c.navigator = n
	}
}

// New creates a new API client with the given base URL and session store
func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: DefaultRequestTimeout},
		refreshClient:  &http.Client{},
		refreshTimeout: DefaultRefreshTimeout,
		store:          store,
		navigator:      NavigatorFunc(func(error) {}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req, refreshing the access token once if the backend answers 401
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	return c.do(ctx, req, retryState{})
}

func (c *Client) do(ctx context.Context, req Request, state retryState) (*Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !state.retried {
		if err := c.refresh(ctx, resp.token); err != nil {
			return nil, err
		}
		return c.do(ctx, req, retryState{retried: true})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newBackendError(resp.StatusCode, resp.Body)
	}
	return resp, nil
}

// send performs a single attempt without any auth recovery
func (c *Client) send(ctx context.Context, req Request) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	sess, err := c.store.Get()
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if sess.AccessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}

	return &Response{StatusCode: httpResp.StatusCode, Body: data, token: sess.AccessToken}, nil
}

// refresh obtains a new access token. Concurrent callers share one refresh call.
// usedToken is the credential the rejected request carried.
func (c *Client) refresh(ctx context.Context, usedToken string) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		// Another request already refreshed after ours was sent
		if sess, err := c.store.Get(); err == nil && sess.AccessToken != "" && sess.AccessToken != usedToken {
			return nil, nil
		}
		if err := c.refreshAccess(ctx); err != nil {
			c.expire(err)
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthExpired, err)
	}
	return nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refreshAccess calls the refresh endpoint directly, bypassing Do
func (c *Client) refreshAccess(ctx context.Context) error {
	sess, err := c.store.Get()
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}
	if sess.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	// The refresh has its own budget, detached from the caller's abort
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	data, err := json.Marshal(refreshRequest{Refresh: sess.RefreshToken})
	if err != nil {
		return fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.refreshClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newBackendError(resp.StatusCode, body)
	}

	var rr refreshResponse
	if err := json.Unmarshal(body, &rr); err != nil || rr.Access == "" {
		return fmt.Errorf("%w: refresh reply has no access token", ErrInvalidServerResponse)
	}

	if err := c.store.SetAccess(rr.Access); err != nil {
		return fmt.Errorf("storing refreshed token: %w", err)
	}
	slog.Debug("Access token refreshed")
	return nil
}

// expire drops the stored credentials and sends the user to the login screen
func (c *Client) expire(cause error) {
	slog.Warn("Token refresh failed, signing out", "error", cause)
	if err := c.store.Clear(); err != nil {
		slog.Error("Failed to clear session", "error", err)
	}
	c.navigator.ForceLogin(cause)
}

// handleRequestError converts transport errors to the client's taxonomy
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrNetworkTimeout, err)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %v", ErrRequestCanceled, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrNetworkTimeout, err)
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}
