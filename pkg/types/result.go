package types

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Result is the uniform response envelope produced by the request engine.
// Exactly one of Data/Text (on success) or Err (on failure) is populated;
// OK tags which arm applies. Transport-level failures never cross this
// boundary unclassified.
type Result struct {
	OK         bool
	StatusCode int
	Headers    http.Header
	Data       json.RawMessage // Parsed JSON body, nil for empty or non-JSON bodies
	Text       string          // Raw body for non-JSON content types
	Err        *Error
}

// Decode unmarshals the JSON success payload into v.
func (r *Result) Decode(v any) error {
	if !r.OK {
		return fmt.Errorf("cannot decode failed result: %w", r.Err)
	}
	if len(r.Data) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// Success creates a success envelope carrying a parsed JSON body.
func Success(statusCode int, headers http.Header, data json.RawMessage) *Result {
	return &Result{OK: true, StatusCode: statusCode, Headers: headers, Data: data}
}

// SuccessText creates a success envelope carrying a non-JSON body.
func SuccessText(statusCode int, headers http.Header, text string) *Result {
	return &Result{OK: true, StatusCode: statusCode, Headers: headers, Text: text}
}

// Failure creates a failure envelope from a classified error.
func Failure(err *Error) *Result {
	return &Result{OK: false, StatusCode: err.StatusCode, Err: err}
}
