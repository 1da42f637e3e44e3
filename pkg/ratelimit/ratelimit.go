// Package ratelimit tracks the rate limit state the Mercetto API reports
// through response headers, and exposes it to callers so they can pace
// themselves before the server starts returning 429s.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Header names used by the Mercetto API.
const (
	HeaderLimit      = "x-ratelimit-limit"
	HeaderRemaining  = "x-ratelimit-remaining"
	HeaderReset      = "x-ratelimit-reset"
	HeaderRetryAfter = "Retry-After"
)

// Info is a snapshot of the rate limit state reported by one response.
type Info struct {
	// Limit is the maximum number of requests allowed in the current window.
	Limit int `json:"limit"`

	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`

	// Reset is when the window resets (from a unix timestamp header).
	Reset time.Time `json:"reset"`

	// RetryAfter is explicit wait guidance from a Retry-After header,
	// typically present on 429 responses.
	RetryAfter time.Duration `json:"retry_after,omitempty"`

	// Timestamp is when this snapshot was captured.
	Timestamp time.Time `json:"timestamp"`
}

// ParseHeaders extracts a rate limit snapshot from response headers.
// It returns nil when the response carries no rate limit information.
func ParseHeaders(headers http.Header) *Info {
	info := &Info{Timestamp: time.Now()}
	seen := false

	if v, err := strconv.Atoi(headers.Get(HeaderLimit)); err == nil {
		info.Limit = v
		seen = true
	}
	if v, err := strconv.Atoi(headers.Get(HeaderRemaining)); err == nil {
		info.Remaining = v
		seen = true
	}
	if ts, err := strconv.ParseInt(headers.Get(HeaderReset), 10, 64); err == nil {
		info.Reset = time.Unix(ts, 0)
		seen = true
	}
	if seconds, err := strconv.Atoi(headers.Get(HeaderRetryAfter)); err == nil && seconds > 0 {
		info.RetryAfter = time.Duration(seconds) * time.Second
		seen = true
	}

	if !seen {
		return nil
	}
	return info
}

// Tracker keeps the most recent rate limit snapshot. It is safe for
// concurrent use; calls racing against each other keep whichever
// snapshot lands last.
type Tracker struct {
	mu   sync.RWMutex
	last *Info
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update records the snapshot carried by a response, if any.
func (t *Tracker) Update(headers http.Header) {
	info := ParseHeaders(headers)
	if info == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = info
}

// Current returns the most recent snapshot, or nil if none has been seen.
func (t *Tracker) Current() *Info {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// CanRequest reports whether a request is likely to succeed based on the
// last observed snapshot. With no information it assumes yes.
func (t *Tracker) CanRequest() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.last == nil {
		return true
	}
	if !t.last.Reset.IsZero() && time.Now().After(t.last.Reset) {
		return true
	}
	return t.last.Limit <= 0 || t.last.Remaining > 0
}

// WaitDuration returns how long to wait before the next request has a
// chance of succeeding, or 0 if a request can be made now.
func (t *Tracker) WaitDuration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.last == nil || t.last.Limit <= 0 || t.last.Remaining > 0 {
		return 0
	}
	if t.last.RetryAfter > 0 {
		return t.last.RetryAfter
	}
	if wait := time.Until(t.last.Reset); wait > 0 {
		return wait
	}
	return 0
}
