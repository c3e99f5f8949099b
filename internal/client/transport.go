// ABOUTME: HTTP transport for backend calls with request logging and optional SSH tunnel
// ABOUTME: Tags requests with X-Request-ID and can dial through an ssh+socks5 jump host

package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/cloudfoundry/socks5-proxy"
	"github.com/google/uuid"
)

// ErrInvalidProxy means all_proxy names an SSH tunnel that cannot be used
var ErrInvalidProxy = errors.New("invalid all_proxy")

const sshProxyScheme = "ssh+socks5"

// SSHProxy is a parsed ssh+socks5://user@host:port?private-key=/path/to/key
type SSHProxy struct {
	User    string
	Host    string
	KeyPath string
}

// ParseSSHProxy parses allProxy. ok is false when allProxy is empty or uses
// another scheme; those values never route backend calls through a tunnel.
func ParseSSHProxy(allProxy string) (p SSHProxy, ok bool, err error) {
	if allProxy == "" {
		return SSHProxy{}, false, nil
	}

	u, err := url.Parse(allProxy)
	if err != nil {
		return SSHProxy{}, false, fmt.Errorf("%w: %w", ErrInvalidProxy, err)
	}
	if u.Scheme != sshProxyScheme {
		return SSHProxy{}, false, nil
	}
	if u.Host == "" {
		return SSHProxy{}, false, fmt.Errorf("%w: missing jump host", ErrInvalidProxy)
	}

	p = SSHProxy{Host: u.Host, KeyPath: u.Query().Get("private-key")}
	if u.User != nil {
		p.User = u.User.Username()
	}
	if p.KeyPath == "" {
		return SSHProxy{}, false, fmt.Errorf("%w: missing private-key query parameter", ErrInvalidProxy)
	}
	return p, true, nil
}

// NewTransport builds the round tripper used for backend calls.
// An ssh+socks5 allProxy sends every connection through an SSH jump host.
func NewTransport(allProxy string) (http.RoundTripper, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()

	p, ok, err := ParseSSHProxy(allProxy)
	if err != nil {
		return nil, err
	}
	if ok {
		tunnel, err := newSSHTunnel(p)
		if err != nil {
			return nil, err
		}
		base.DialContext = tunnel.DialContext
		base.Proxy = nil
	} else if allProxy != "" {
		slog.Debug("all_proxy is not an ssh+socks5 URL, dialing directly")
	}

	return &loggingTransport{next: base}, nil
}

// loggingTransport logs each request with timing and a correlation ID
type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	requestID := uuid.NewString()

	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-ID", requestID)

	slog.Debug("Request started",
		"request_id", requestID,
		"method", req.Method,
		"path", req.URL.Path,
	)

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		slog.Debug("Request failed",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	slog.Debug("Request completed",
		"request_id", requestID,
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// sshTunnel dials through a SOCKS5 proxy running over SSH.
// The SSH connection is opened on first use.
type sshTunnel struct {
	proxy *proxy.Socks5Proxy
	user  string
	key   string
	host  string

	mu   sync.Mutex
	dial proxy.DialFunc
}

func newSSHTunnel(p SSHProxy) (*sshTunnel, error) {
	key, err := os.ReadFile(p.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading private key: %w", ErrInvalidProxy, err)
	}
	return &sshTunnel{
		proxy: proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), time.Minute),
		user:  p.User,
		key:   string(key),
		host:  p.Host,
	}, nil
}

// DialContext matches http.Transport.DialContext
func (t *sshTunnel) DialContext(_ context.Context, network, address string) (net.Conn, error) {
	dial, err := t.dialer()
	if err != nil {
		return nil, err
	}
	return dial(network, address)
}

func (t *sshTunnel) dialer() (proxy.DialFunc, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dial == nil {
		d, err := t.proxy.Dialer(t.user, t.key, t.host)
		if err != nil {
			return nil, fmt.Errorf("opening SSH tunnel to %s: %w", t.host, err)
		}
		t.dial = d
	}
	return t.dial, nil
}
