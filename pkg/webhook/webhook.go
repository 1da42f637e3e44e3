// Package webhook verifies and parses event notifications sent by the
// Mercetto gateway. Signatures are hex-encoded HMAC-SHA256 digests of
// the raw request body, delivered in the X-Mercetto-Signature header.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/mercetto/mercetto-go/pkg/types"
)

// SignatureHeader is the header carrying the payload signature.
const SignatureHeader = "X-Mercetto-Signature"

// Event is a parsed webhook notification.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

// Sign computes the hex-encoded HMAC-SHA256 signature of a payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether a signature matches the payload. The comparison
// is constant time.
func Verify(payload []byte, secret, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}

// ParseEvent verifies the signature and unmarshals the event payload.
// A bad signature is an Authentication-kind error; a bad payload is a
// PARSE_ERROR.
func ParseEvent(payload []byte, secret, signature string) (*Event, error) {
	if !Verify(payload, secret, signature) {
		return nil, types.NewAuthenticationError("webhook signature mismatch")
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, types.NewError(types.CodeParseError, "failed to parse webhook payload").WithErr(err)
	}
	return &event, nil
}
