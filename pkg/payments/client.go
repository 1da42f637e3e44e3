// Package payments is the top-level entry point of the Mercetto client
// kit. It wires the request execution engine to the domain services
// (orders, refunds, payment terms, subscriptions) and to webhook
// verification.
package payments

import (
	nethttp "net/http"

	"github.com/rs/zerolog"

	"github.com/mercetto/mercetto-go/pkg/auth"
	pkghttp "github.com/mercetto/mercetto-go/pkg/http"
	"github.com/mercetto/mercetto-go/pkg/ratelimit"
	"github.com/mercetto/mercetto-go/pkg/types"
	"github.com/mercetto/mercetto-go/pkg/webhook"
)

// Client is the Mercetto API client. Services share one request engine,
// so interceptors registered on the engine apply to every call.
type Client struct {
	engine *pkghttp.Client
	config types.Config

	Orders        *OrdersService
	Refunds       *RefundsService
	PaymentTerms  *PaymentTermsService
	Subscriptions *SubscriptionsService
}

type clientOptions struct {
	httpClient  *nethttp.Client
	logger      zerolog.Logger
	credentials pkghttp.CredentialProvider
	baseURL     string
}

// Option customizes client construction.
type Option func(*clientOptions)

// WithHTTPClient supplies a custom transport, e.g. for proxies or tests.
func WithHTTPClient(httpClient *nethttp.Client) Option {
	return func(o *clientOptions) { o.httpClient = httpClient }
}

// WithLogger supplies the logger used by the engine and the Debug
// interceptors.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

// WithCredentials replaces the static API key with a custom credential
// provider, e.g. auth.ClientCredentials for OAuth2 merchants.
func WithCredentials(provider pkghttp.CredentialProvider) Option {
	return func(o *clientOptions) { o.credentials = provider }
}

// WithBaseURL overrides the configured API address, e.g. to point at
// the sandbox environment.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

// NewClient builds a client from the configuration. Construction fails
// synchronously with a Validation-kind error when the credential is
// missing or malformed.
func NewClient(config types.Config, opts ...Option) (*Client, error) {
	config.ApplyDefaults()

	options := clientOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.baseURL != "" {
		config.BaseURL = options.baseURL
	}

	if options.credentials == nil {
		credential, err := auth.NewStaticCredential(config.APIKey)
		if err != nil {
			return nil, err
		}
		options.credentials = credential
	}

	backoff := pkghttp.DefaultBackoffConfig()
	if config.RetryDelay > 0 {
		backoff.BaseDelay = config.RetryDelay
	}

	engine := pkghttp.NewClient(pkghttp.Config{
		BaseURL:           config.BaseURL,
		Credentials:       options.credentials,
		Timeout:           config.Timeout,
		MaxRetries:        *config.MaxRetries,
		Backoff:           backoff,
		RequestsPerSecond: config.RequestsPerSecond,
		Logger:            options.logger,
	}, options.httpClient)

	engine.AddRequestInterceptor(pkghttp.NewRequestIDInterceptor())
	if config.Debug {
		reqLogger, resLogger := pkghttp.NewLoggingInterceptors(options.logger)
		engine.AddRequestInterceptor(reqLogger)
		engine.AddResponseInterceptor(resLogger)
	}

	client := &Client{engine: engine, config: config}
	client.Orders = &OrdersService{engine: engine}
	client.Refunds = &RefundsService{engine: engine}
	client.PaymentTerms = &PaymentTermsService{engine: engine}
	client.Subscriptions = &SubscriptionsService{engine: engine}
	return client, nil
}

// Engine exposes the request engine for interceptor registration and
// per-call overrides beyond what the services offer.
func (c *Client) Engine() *pkghttp.Client {
	return c.engine
}

// RateLimit returns the most recent rate limit snapshot observed on any
// response, or nil if none has been seen yet.
func (c *Client) RateLimit() *ratelimit.Info {
	return c.engine.RateLimit()
}

// VerifyWebhook checks a webhook signature against the configured
// webhook secret.
func (c *Client) VerifyWebhook(payload []byte, signature string) bool {
	return webhook.Verify(payload, c.config.WebhookSecret, signature)
}

// ParseWebhookEvent verifies and parses a webhook notification.
func (c *Client) ParseWebhookEvent(payload []byte, signature string) (*webhook.Event, error) {
	return webhook.ParseEvent(payload, c.config.WebhookSecret, signature)
}
