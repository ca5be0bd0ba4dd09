package http

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	// ConnectTimeout bounds connection establishment.
	ConnectTimeout = 30 * time.Second

	// RequestTimeout bounds a whole request including the body read.
	RequestTimeout = 60 * time.Second

	// MaxRetries is the per-download retry budget: one retry, two
	// attempts total.
	MaxRetries = 1

	// RateLimitDelay is the pause after every successful download and
	// the base unit for retry backoff. The Chronicle API rate-limits
	// aggressively, so every request is spaced out.
	RateLimitDelay = 3 * time.Second
)

// StatusError reports a non-2xx response from the Chronicle API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: %d %s", e.Code, StatusDescription(e.Code))
}

// StatusDescription maps a status code to the message shown to users.
func StatusDescription(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "Unauthorized. Please check the authorization token and try again."
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Not Found"
	default:
		return "Unknown"
	}
}

// Options configures the managed client.
type Options struct {
	// ConnectTimeout bounds dialing. Default: 30s.
	ConnectTimeout time.Duration

	// RequestTimeout bounds a full request. Default: 60s.
	RequestTimeout time.Duration
}

// DefaultOptions returns options with the timeouts the Chronicle API
// expects.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: ConnectTimeout,
		RequestTimeout: RequestTimeout,
	}
}

// Manager owns the single shared HTTP client handle for one run.
// Creation, recreation, and closure can race with in-flight requests on
// the worker, so every access is serialized through one mutex. The raw
// handle never leaves the manager's control beyond the *http.Client
// returned by Acquire, which callers must not retain across Recreate.
type Manager struct {
	mu     sync.Mutex
	opts   Options
	client *http.Client
}

// NewManager creates a manager. No client is dialed until Acquire.
func NewManager(opts Options) *Manager {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = ConnectTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = RequestTimeout
	}
	return &Manager{opts: opts}
}

// Acquire returns the shared client, creating it on first use or after
// a Recreate or Close.
func (m *Manager) Acquire() *http.Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		m.client = m.newClient()
	}
	return m.client
}

func (m *Manager) newClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: m.opts.ConnectTimeout,
		}).DialContext,
		// A single keep-alive connection: the concurrency gate already
		// serializes requests, and the API limits connections per token.
		MaxConnsPerHost:     1,
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		IdleConnTimeout:     m.opts.ConnectTimeout,
	}

	// Redirects are followed by default, which the export endpoints use.
	return &http.Client{
		Transport: transport,
		Timeout:   m.opts.RequestTimeout,
	}
}

// Recreate drops the current handle so the next Acquire dials a fresh
// connection. Called after connection-level failures where the pooled
// connection may be wedged.
func (m *Manager) Recreate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drop()
}

// Close releases the client handle. Idempotent; safe to call at the end
// of a run regardless of how the run terminated.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drop()
}

func (m *Manager) drop() {
	if m.client == nil {
		return
	}
	if transport, ok := m.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	m.client = nil
}

// Retryable reports whether err warrants another attempt. Retryable
// failures are HTTP 429/502/503/504 and any transport-level error; all
// other statuses (401, 403, 404 included) propagate immediately.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	// No HTTP status means the request never completed: a transport or
	// connection failure.
	return true
}

// IsTransport reports whether err is a network-level failure rather
// than an HTTP status. Transport failures get a fresh client before the
// retry attempt.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	return !errors.As(err, &se)
}

// BackoffDelay returns the exponential backoff before retry attempt
// number attempt (zero-based): 2^attempt * base.
func BackoffDelay(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		base = RateLimitDelay
	}
	return time.Duration(1<<uint(attempt)) * base
}
