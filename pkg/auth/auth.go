// Package auth provides credential providers for the Mercetto client.
// The engine only ever asks for a bearer token; where that token comes
// from (a static API key or an OAuth2 client-credentials grant) is this
// package's concern.
package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/mercetto/mercetto-go/pkg/types"
)

// StaticCredential is a fixed bearer API key.
type StaticCredential struct {
	key string
}

// NewStaticCredential validates the key shape and wraps it as a
// credential provider. A malformed key fails synchronously with a
// Validation-kind error.
func NewStaticCredential(key string) (*StaticCredential, error) {
	if err := types.ValidateAPIKey(key); err != nil {
		return nil, err
	}
	return &StaticCredential{key: key}, nil
}

// Token returns the static key.
func (s *StaticCredential) Token(_ context.Context) (string, error) {
	return s.key, nil
}

// ClientCredentials obtains bearer tokens through the OAuth2
// client-credentials grant, refreshing them as they expire.
type ClientCredentials struct {
	source oauth2.TokenSource
}

// NewClientCredentials creates a provider backed by the given token
// endpoint. The returned provider caches tokens until expiry.
func NewClientCredentials(clientID, clientSecret, tokenURL string, scopes ...string) (*ClientCredentials, error) {
	if clientID == "" || clientSecret == "" || tokenURL == "" {
		return nil, types.NewValidationError("client id, client secret and token url are required", nil)
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	return &ClientCredentials{source: config.TokenSource(context.Background())}, nil
}

// Token returns a valid access token, fetching a fresh one if needed.
// The token source carries its own HTTP context from construction.
func (c *ClientCredentials) Token(_ context.Context) (string, error) {
	token, err := c.source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain oauth2 token: %w", err)
	}
	return token.AccessToken, nil
}
