package types

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values applied by ApplyDefaults.
const (
	DefaultBaseURL    = "https://api.mercetto.com/v1"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second
)

// apiKeyPattern constrains credentials to letters, digits, '.', '_' and
// '-', with a minimum length of 10.
var apiKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{10,}$`)

// Config holds the client construction configuration. Zero values for
// optional fields are replaced with defaults at construction time.
type Config struct {
	// APIKey is the bearer credential presented on every request.
	// Required unless a custom credential provider is supplied.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the default API address.
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout bounds each transport attempt.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxRetries bounds retries after the first attempt (total attempts
	// are MaxRetries+1). Nil selects the default; an explicit zero
	// disables retries.
	MaxRetries *int `yaml:"max_retries,omitempty"`

	// RetryDelay seeds the exponential backoff schedule.
	RetryDelay time.Duration `yaml:"retry_delay,omitempty"`

	// RequestsPerSecond enables a client-side throttle when positive.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`

	// WebhookSecret is the shared secret used to verify webhook signatures.
	WebhookSecret string `yaml:"webhook_secret,omitempty"`

	// Debug installs logging interceptors on the engine.
	Debug bool `yaml:"debug,omitempty"`
}

// ApplyDefaults fills unset optional fields with package defaults.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == nil {
		defaultRetries := DefaultMaxRetries
		c.MaxRetries = &defaultRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
}

// Validate checks the credential shape. It returns a Validation-kind
// error so construction failures look like any other input failure.
func (c *Config) Validate() error {
	if err := ValidateAPIKey(c.APIKey); err != nil {
		return err
	}
	return nil
}

// ValidateAPIKey checks that a credential is present, long enough, and
// restricted to the allowed character set.
func ValidateAPIKey(key string) error {
	if key == "" {
		return NewValidationError("api key is required", map[string][]string{
			"api_key": {"must not be empty"},
		})
	}
	if !apiKeyPattern.MatchString(key) {
		return NewValidationError("api key is malformed", map[string][]string{
			"api_key": {"must be at least 10 characters of letters, digits, '.', '_' or '-'"},
		})
	}
	return nil
}

// LoadConfig reads a YAML configuration file. Defaults are not applied;
// callers pass the result to the client constructor which does that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}
