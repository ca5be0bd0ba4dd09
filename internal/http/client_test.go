package http

import (
	"errors"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestStatusDescription(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{401, "Unauthorized. Please check the authorization token and try again."},
		{403, "Forbidden"},
		{404, "Not Found"},
		{418, "Unknown"},
		{500, "Unknown"},
	}

	for _, tt := range tests {
		if got := StatusDescription(tt.code); got != tt.want {
			t.Errorf("StatusDescription(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &StatusError{Code: 429}, true},
		{"502", &StatusError{Code: 502}, true},
		{"503", &StatusError{Code: 503}, true},
		{"504", &StatusError{Code: 504}, true},
		{"401", &StatusError{Code: 401}, false},
		{"403", &StatusError{Code: 403}, false},
		{"404", &StatusError{Code: 404}, false},
		{"500", &StatusError{Code: 500}, false},
		{"transport", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"wrapped status", wrap(&StatusError{Code: 503}), true},
	}

	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.want {
			t.Errorf("Retryable(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func wrap(err error) error {
	return &wrapped{err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

func TestIsTransport(t *testing.T) {
	if IsTransport(&StatusError{Code: 503}) {
		t.Error("status errors are not transport errors")
	}
	if !IsTransport(errors.New("read: connection reset by peer")) {
		t.Error("plain network errors are transport errors")
	}
	if IsTransport(nil) {
		t.Error("nil is not a transport error")
	}
}

func TestBackoffDelay(t *testing.T) {
	base := 3 * time.Second

	if got := BackoffDelay(0, base); got != 3*time.Second {
		t.Errorf("BackoffDelay(0) = %v, want 3s", got)
	}
	if got := BackoffDelay(1, base); got != 6*time.Second {
		t.Errorf("BackoffDelay(1) = %v, want 6s", got)
	}
	if got := BackoffDelay(2, base); got != 12*time.Second {
		t.Errorf("BackoffDelay(2) = %v, want 12s", got)
	}
	if got := BackoffDelay(0, 0); got != RateLimitDelay {
		t.Errorf("BackoffDelay with zero base = %v, want %v", got, RateLimitDelay)
	}
}

func TestManagerAcquireReturnsSameClient(t *testing.T) {
	m := NewManager(DefaultOptions())
	defer m.Close()

	first := m.Acquire()
	second := m.Acquire()
	if first != second {
		t.Error("Acquire should return the same handle until Recreate")
	}
}

func TestManagerRecreate(t *testing.T) {
	m := NewManager(DefaultOptions())
	defer m.Close()

	first := m.Acquire()
	m.Recreate()
	second := m.Acquire()
	if first == second {
		t.Error("Recreate should force a fresh client on next Acquire")
	}
}

func TestManagerCloseIdempotent(t *testing.T) {
	m := NewManager(DefaultOptions())
	m.Acquire()

	m.Close()
	m.Close() // must not panic or error

	if got := m.Acquire(); got == nil {
		t.Error("Acquire after Close should create a new client")
	}
	m.Close()
}

func TestManagerTimeouts(t *testing.T) {
	m := NewManager(Options{ConnectTimeout: time.Second, RequestTimeout: 2 * time.Second})
	defer m.Close()

	client := m.Acquire()
	if client.Timeout != 2*time.Second {
		t.Errorf("request timeout = %v, want 2s", client.Timeout)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatal("expected *http.Transport")
	}
	if transport.MaxConnsPerHost != 1 {
		t.Errorf("MaxConnsPerHost = %d, want 1", transport.MaxConnsPerHost)
	}
}

func TestDefaultsApplied(t *testing.T) {
	m := NewManager(Options{})
	defer m.Close()

	if m.opts.ConnectTimeout != ConnectTimeout {
		t.Errorf("connect timeout default = %v, want %v", m.opts.ConnectTimeout, ConnectTimeout)
	}
	if m.opts.RequestTimeout != RequestTimeout {
		t.Errorf("request timeout default = %v, want %v", m.opts.RequestTimeout, RequestTimeout)
	}
}
