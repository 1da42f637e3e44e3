package http

import (
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mercetto/mercetto-go/pkg/types"
)

// classify maps a completed transport exchange onto the uniform response
// envelope. Transport success and application-level success are distinct
// layers: any HTTP status lands here, and non-2xx statuses become typed
// errors per the status table.
func classify(statusCode int, headers nethttp.Header, body []byte) *types.Result {
	isJSON := strings.Contains(headers.Get("Content-Type"), "application/json")

	var payload map[string]any
	var parseErr error
	if isJSON && len(body) > 0 {
		parseErr = json.Unmarshal(body, &payload)
	}

	if statusCode >= 200 && statusCode < 300 {
		if isJSON {
			if parseErr != nil {
				return types.Failure(types.NewError(types.CodeParseError, "failed to parse response body").
					WithStatusCode(statusCode).WithErr(parseErr))
			}
			var data json.RawMessage
			if len(body) > 0 {
				data = json.RawMessage(body)
			}
			return types.Success(statusCode, headers, data)
		}
		return types.SuccessText(statusCode, headers, string(body))
	}

	// Unparseable error bodies fall through to the status table with the
	// default message for that status.
	res := types.Failure(classifyError(statusCode, headers, payload))
	res.StatusCode = statusCode
	res.Headers = headers
	return res
}

// classifyError builds a typed error from status code, headers, and the
// parsed error payload. Checked in order, first match wins.
func classifyError(statusCode int, headers nethttp.Header, payload map[string]any) *types.Error {
	switch statusCode {
	case nethttp.StatusUnauthorized:
		return types.NewAuthenticationError(extractMessage(payload, "invalid credentials")).
			WithStatusCode(statusCode)

	case nethttp.StatusForbidden:
		return types.NewAuthenticationError(extractMessage(payload, "insufficient permissions")).
			WithStatusCode(statusCode)

	case nethttp.StatusBadRequest:
		return types.NewValidationError(extractMessage(payload, "invalid request data"), nil).
			WithStatusCode(statusCode)

	case nethttp.StatusUnprocessableEntity:
		return types.NewValidationError(extractMessage(payload, "validation failed"), extractFields(payload)).
			WithStatusCode(statusCode)

	case nethttp.StatusTooManyRequests:
		err := types.NewRateLimitError(retryAfterSeconds(headers))
		err.Message = extractMessage(payload, "rate limit exceeded")
		return err

	case nethttp.StatusNotFound:
		return types.NewError(types.CodeNotFound, extractMessage(payload, "resource not found")).
			WithStatusCode(statusCode)

	case nethttp.StatusInternalServerError:
		return types.NewError(types.CodeInternalError, extractMessage(payload, "internal server error")).
			WithStatusCode(statusCode)

	case nethttp.StatusBadGateway, nethttp.StatusServiceUnavailable, nethttp.StatusGatewayTimeout:
		return types.NewNetworkError(types.CodeServiceUnavailable,
			extractMessage(payload, "service temporarily unavailable")).
			WithStatusCode(statusCode)

	default:
		return types.NewError(types.CodeHTTPError,
			extractMessage(payload, fmt.Sprintf("HTTP %d error", statusCode))).
			WithStatusCode(statusCode)
	}
}

// extractMessage pulls a human-readable message out of an error payload,
// checking message, then error, then detail; the first non-empty string
// wins.
func extractMessage(payload map[string]any, fallback string) string {
	for _, key := range []string{"message", "error", "detail"} {
		if value, ok := payload[key].(string); ok && value != "" {
			return value
		}
	}
	return fallback
}

// extractFields coerces the payload's "errors" field into a field-level
// detail map. Values may be a single string or a list of strings.
func extractFields(payload map[string]any) map[string][]string {
	raw, ok := payload["errors"].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}

	fields := make(map[string][]string, len(raw))
	for field, value := range raw {
		switch v := value.(type) {
		case string:
			fields[field] = []string{v}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					fields[field] = append(fields[field], s)
				}
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// retryAfterSeconds derives retry-after guidance from the rate-limit
// reset header (a unix timestamp) minus the current time, falling back
// to the Retry-After delta-seconds form. Returns 0 when unknown.
func retryAfterSeconds(headers nethttp.Header) int {
	if reset := headers.Get("x-ratelimit-reset"); reset != "" {
		if ts, err := strconv.ParseInt(reset, 10, 64); err == nil {
			if seconds := int(time.Until(time.Unix(ts, 0)).Round(time.Second).Seconds()); seconds > 0 {
				return seconds
			}
			return 0
		}
	}
	if retryAfter := headers.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
			return seconds
		}
	}
	return 0
}
