package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
)

// ClientID identifies this library to the remote API.
const ClientID = "mercetto-go/1.0"

// BuildURL produces a fully qualified URL from a base address, a path,
// and optional query parameters. Paths that already carry a scheme are
// used verbatim. Duplicate slashes at the join seam are collapsed, and
// query parameters with empty values are skipped.
func BuildURL(base, path string, query map[string]string) string {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	}

	if len(query) > 0 {
		values := url.Values{}
		for key, value := range query {
			if value == "" {
				continue
			}
			values.Set(key, value)
		}
		if encoded := values.Encode(); encoded != "" {
			separator := "?"
			if strings.Contains(target, "?") {
				separator = "&"
			}
			target += separator + encoded
		}
	}

	return target
}

// serializeBody turns a request descriptor's body into wire bytes and a
// content type. Raw bodies pass through untouched with no content type
// so the transport can set its own. GET and DELETE never carry a body.
func serializeBody(req *Request) ([]byte, string, error) {
	if req.Method == nethttp.MethodGet || req.Method == nethttp.MethodDelete {
		return nil, "", nil
	}
	if req.RawBody != nil {
		return req.RawBody, "", nil
	}
	if req.Body == nil {
		return nil, "", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, "application/json", nil
}

// buildHTTPRequest composes one transport request for a single attempt.
// The static client identifier, bearer credential, and Accept header are
// always injected; caller headers may add to but not bypass them.
func buildHTTPRequest(ctx context.Context, method, target, token, contentType string, body []byte, headers map[string]string) (*nethttp.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	httpReq.Header.Set("X-Client-Id", ClientID)
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}
