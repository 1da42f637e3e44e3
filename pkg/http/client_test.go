package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mercetto/mercetto-go/pkg/types"
)

// fastBackoff keeps retry tests quick without changing the schedule shape.
func fastBackoff() BackoffConfig {
	return BackoffConfig{
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     time.Millisecond,
	}
}

type staticToken string

func (s staticToken) Token(_ context.Context) (string, error) { return string(s), nil }

func newTestClient(baseURL string, maxRetries int) *Client {
	return NewClient(Config{
		BaseURL:     baseURL,
		Credentials: staticToken("test-token-1234"),
		Timeout:     2 * time.Second,
		MaxRetries:  maxRetries,
		Backoff:     fastBackoff(),
	}, nil)
}

func TestDoSuccess(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token-1234" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ord_1","status":"pending"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	res, err := client.Get(context.Background(), &Request{Path: "/orders/ord_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK || res.StatusCode != 200 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestDoRetriesThenSucceeds(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(nethttp.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	res, err := client.Get(context.Background(), &Request{Path: "/health"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatal("expected success after retries")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestDoNoRetriesOn503(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(nethttp.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.Get(context.Background(), &Request{Path: "/orders"})
	if err == nil {
		t.Fatal("expected error")
	}

	typed, ok := types.AsError(err)
	if !ok {
		t.Fatalf("expected typed error, got %T", err)
	}
	if typed.Kind != types.KindNetwork || typed.Code != types.CodeServiceUnavailable {
		t.Errorf("got %s/%s, want network/SERVICE_UNAVAILABLE", typed.Kind, typed.Code)
	}
	if typed.StatusCode != 503 {
		t.Errorf("status = %d, want 503", typed.StatusCode)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want exactly 1", got)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(nethttp.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	_, err := client.Get(context.Background(), &Request{Path: "/orders"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&attempts); got != 4 {
		t.Errorf("attempts = %d, want maxRetries+1 = 4", got)
	}
}

func TestDoStopsImmediatelyOnAuthError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(nethttp.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	_, err := client.Get(context.Background(), &Request{Path: "/orders"})

	typed, ok := types.AsError(err)
	if !ok || typed.Kind != types.KindAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want exactly 1", got)
	}
}

func TestDoStopsImmediatelyOnNotFound(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(nethttp.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	_, err := client.Get(context.Background(), &Request{Path: "/orders/missing"})

	typed, ok := types.AsError(err)
	if !ok || typed.Code != types.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want exactly 1", got)
	}
}

func TestDoRetriesRateLimit(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(nethttp.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	res, err := client.Get(context.Background(), &Request{Path: "/orders"})
	if err != nil {
		t.Fatalf("expected 429 to be retried: %v", err)
	}
	if !res.OK {
		t.Fatal("expected success on second attempt")
	}
}

func TestDoTimeout(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:    server.URL,
		Timeout:    30 * time.Millisecond,
		MaxRetries: 0,
		Backoff:    fastBackoff(),
	}, nil)

	_, err := client.Get(context.Background(), &Request{Path: "/slow"})
	typed, ok := types.AsError(err)
	if !ok {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Kind != types.KindNetwork || typed.Code != types.CodeTimeout {
		t.Errorf("got %s/%s, want network/TIMEOUT", typed.Kind, typed.Code)
	}
	if !typed.IsRetryable() {
		t.Error("timeouts must be retryable")
	}
}

func TestDoTimeoutIsPerAttempt(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		atomic.AddInt32(&attempts, 1)
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:    server.URL,
		Timeout:    20 * time.Millisecond,
		MaxRetries: 2,
		Backoff:    fastBackoff(),
	}, nil)

	_, err := client.Get(context.Background(), &Request{Path: "/slow"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3 (timeout aborts the attempt, not the loop)", got)
	}
}

func TestDoNetworkError(t *testing.T) {
	client := NewClient(Config{
		BaseURL:    "http://127.0.0.1:1", // nothing listens here
		Timeout:    time.Second,
		MaxRetries: 0,
		Backoff:    fastBackoff(),
	}, nil)

	_, err := client.Get(context.Background(), &Request{Path: "/orders"})
	typed, ok := types.AsError(err)
	if !ok {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Kind != types.KindNetwork || typed.Code != types.CodeNetworkError {
		t.Errorf("got %s/%s, want network/NETWORK_ERROR", typed.Kind, typed.Code)
	}
}

func TestDoPerCallOverrides(t *testing.T) {
	var captured *nethttp.Request
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		captured = r.Clone(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient("http://unused.invalid", 3)
	zero := 0
	_, err := client.Get(context.Background(), &Request{
		Path:       "/orders",
		BaseURL:    server.URL,
		Query:      map[string]string{"status": "paid", "empty": ""},
		Headers:    map[string]string{"X-Tenant": "acme"},
		MaxRetries: &zero,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.URL.Path != "/orders" {
		t.Errorf("path = %q", captured.URL.Path)
	}
	if got := captured.URL.Query().Get("status"); got != "paid" {
		t.Errorf("status query = %q", got)
	}
	if _, present := captured.URL.Query()["empty"]; present {
		t.Error("empty query value must be skipped")
	}
	if got := captured.Header.Get("X-Tenant"); got != "acme" {
		t.Errorf("X-Tenant = %q", got)
	}
}

func TestDoContextCancellationDuringBackoff(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:    server.URL,
		Timeout:    time.Second,
		MaxRetries: 5,
		Backoff: BackoffConfig{
			BaseDelay:  time.Second,
			MaxDelay:   time.Second,
			Multiplier: 2.0,
		},
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Get(ctx, &Request{Path: "/orders"})
	if err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("cancellation took %v, should interrupt the backoff wait", elapsed)
	}

	typed, ok := types.AsError(err)
	if !ok {
		t.Fatalf("expected typed error, got %v", err)
	}
	if !errors.Is(typed, context.DeadlineExceeded) {
		t.Errorf("expected wrapped context error, got %v", typed.Err)
	}
}

func TestRateLimitSnapshot(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.Header().Set("x-ratelimit-limit", "100")
		w.Header().Set("x-ratelimit-remaining", "42")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	if client.RateLimit() != nil {
		t.Fatal("expected no snapshot before any call")
	}

	if _, err := client.Get(context.Background(), &Request{Path: "/orders"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info := client.RateLimit()
	if info == nil || info.Limit != 100 || info.Remaining != 42 {
		t.Errorf("unexpected snapshot: %+v", info)
	}
}
