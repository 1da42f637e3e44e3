package http

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mercetto/mercetto-go/pkg/types"
)

// HeaderXRequestID carries the per-call correlation ID.
const HeaderXRequestID = "X-Request-Id"

// NewRequestIDInterceptor returns a request interceptor that assigns a
// fresh UUID to each logical call unless the caller already set one.
func NewRequestIDInterceptor() RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(map[string]string)
		}
		if req.Headers[HeaderXRequestID] == "" {
			req.Headers[HeaderXRequestID] = uuid.NewString()
		}
		return nil
	}
}

// NewLoggingInterceptors returns a request/response interceptor pair
// that logs each call at debug level. Installed automatically when the
// Debug config flag is set.
func NewLoggingInterceptors(logger zerolog.Logger) (RequestInterceptor, ResponseInterceptor) {
	requestLogger := func(_ context.Context, req *Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("path", req.Path).
			Str("request_id", req.Headers[HeaderXRequestID]).
			Msg("outgoing request")
		return nil
	}

	responseLogger := func(_ context.Context, req *Request, res *types.Result) error {
		logger.Debug().
			Str("method", req.Method).
			Str("path", req.Path).
			Int("status", res.StatusCode).
			Str("request_id", req.Headers[HeaderXRequestID]).
			Msg("incoming response")
		return nil
	}

	return requestLogger, responseLogger
}
