package http

import (
	"context"

	"github.com/mercetto/mercetto-go/pkg/types"
)

// RequestInterceptor observes and mutates a request descriptor before the
// first transport attempt. Returning an error aborts the call before any
// network activity.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor observes and mutates the response envelope after a
// successful final classification. The request descriptor is read-only.
type ResponseInterceptor func(ctx context.Context, req *Request, res *types.Result) error

// ErrorInterceptor runs after all retry attempts are exhausted. It may
// return a recovery envelope, which stops the chain and is handed to the
// caller as if the call had succeeded. Returning an error means "did not
// recover" and the next interceptor is tried.
type ErrorInterceptor func(ctx context.Context, req *Request, callErr *types.Error) (*types.Result, error)

// interceptorChains holds the three registration-ordered interceptor
// lists. Removal tombstones a slot instead of shifting entries, so
// handles issued for later registrations stay valid. Registration is
// expected to happen outside of concurrent in-flight calls; no
// synchronization is provided.
type interceptorChains struct {
	request  []RequestInterceptor
	response []ResponseInterceptor
	errors   []ErrorInterceptor
}

// AddRequestInterceptor appends a request interceptor and returns its
// stable handle.
func (c *Client) AddRequestInterceptor(fn RequestInterceptor) int {
	c.chains.request = append(c.chains.request, fn)
	return len(c.chains.request) - 1
}

// RemoveRequestInterceptor deletes the interceptor registered under the
// given handle. Unknown handles are ignored.
func (c *Client) RemoveRequestInterceptor(handle int) {
	if handle >= 0 && handle < len(c.chains.request) {
		c.chains.request[handle] = nil
	}
}

// AddResponseInterceptor appends a response interceptor and returns its
// stable handle.
func (c *Client) AddResponseInterceptor(fn ResponseInterceptor) int {
	c.chains.response = append(c.chains.response, fn)
	return len(c.chains.response) - 1
}

// RemoveResponseInterceptor deletes the interceptor registered under the
// given handle. Unknown handles are ignored.
func (c *Client) RemoveResponseInterceptor(handle int) {
	if handle >= 0 && handle < len(c.chains.response) {
		c.chains.response[handle] = nil
	}
}

// AddErrorInterceptor appends an error interceptor and returns its
// stable handle.
func (c *Client) AddErrorInterceptor(fn ErrorInterceptor) int {
	c.chains.errors = append(c.chains.errors, fn)
	return len(c.chains.errors) - 1
}

// RemoveErrorInterceptor deletes the interceptor registered under the
// given handle. Unknown handles are ignored.
func (c *Client) RemoveErrorInterceptor(handle int) {
	if handle >= 0 && handle < len(c.chains.errors) {
		c.chains.errors[handle] = nil
	}
}

// ClearInterceptors empties all three chains. Previously issued handles
// become invalid.
func (c *Client) ClearInterceptors() {
	c.chains.request = nil
	c.chains.response = nil
	c.chains.errors = nil
}

// runRequestInterceptors executes the request chain in registration
// order, skipping tombstoned slots.
func (c *Client) runRequestInterceptors(ctx context.Context, req *Request) error {
	for _, fn := range c.chains.request {
		if fn == nil {
			continue
		}
		if err := fn(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// runResponseInterceptors executes the response chain in registration
// order, skipping tombstoned slots.
func (c *Client) runResponseInterceptors(ctx context.Context, req *Request, res *types.Result) error {
	for _, fn := range c.chains.response {
		if fn == nil {
			continue
		}
		if err := fn(ctx, req, res); err != nil {
			return err
		}
	}
	return nil
}

// runErrorInterceptors offers the final error to each error interceptor
// in turn. The first recovery envelope wins; a failing interceptor does
// not abort the chain.
func (c *Client) runErrorInterceptors(ctx context.Context, req *Request, callErr *types.Error) *types.Result {
	for _, fn := range c.chains.errors {
		if fn == nil {
			continue
		}
		if res, err := fn(ctx, req, callErr); err == nil && res != nil {
			return res
		}
	}
	return nil
}
