package httpclient

import (
	"time"

	"github.com/kbukum/httppipe/pipeline/policy"
	"github.com/kbukum/httppipe/resilience"
	"github.com/kbukum/httppipe/validation"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the HTTP client and the policies it installs.
type Config struct {
	// Name identifies the client in logs.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the base URL prepended to all request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,http_url"`

	// Timeout is the default request timeout. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// ApplicationID prefixes the User-Agent. It must not contain whitespace.
	ApplicationID string `yaml:"application_id" mapstructure:"application_id"`

	// RequestIDHeader names the correlation header. Defaults to x-ms-client-request-id.
	RequestIDHeader string `yaml:"request_id_header" mapstructure:"request_id_header"`

	// ResponseEncoding overrides the charset used to decode response bodies.
	ResponseEncoding string `yaml:"response_encoding" mapstructure:"response_encoding"`

	// Proxies maps a scheme, "scheme://host", "all://host" or "all" to a proxy URL.
	Proxies map[string]string `yaml:"proxies" mapstructure:"proxies" validate:"dive,keys,required,endkeys,required"`

	// Logging configures the request/response logging policies.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Retry configures retry behavior. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`

	// Tracing opens a client span per attempt.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`

	// Metrics records request count and duration per attempt.
	Metrics bool `yaml:"metrics" mapstructure:"metrics"`

	// InstrumentTransport wraps the round tripper with otelhttp.
	InstrumentTransport bool `yaml:"instrument_transport" mapstructure:"instrument_transport"`

	// Auth configures default authentication applied to all requests.
	// Individual requests can override this.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`
}

// LoggingConfig configures HTTP logging.
type LoggingConfig struct {
	// NetworkTrace enables full request/response traces at debug level.
	NetworkTrace bool `yaml:"network_trace" mapstructure:"network_trace"`
	// AllowedHeaders are logged verbatim in addition to the defaults.
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers" validate:"dive,required"`
	// AllowedQueryParams are logged verbatim.
	AllowedQueryParams []string `yaml:"allowed_query_params" mapstructure:"allowed_query_params" validate:"dive,required"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RequestIDHeader == "" {
		c.RequestIDHeader = policy.DefaultRequestIDHeader
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New().Pattern("application_id", c.ApplicationID, `^\S+$`)
	if c.Retry != nil {
		v.Min("retry.max_attempts", c.Retry.MaxAttempts, 0)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// DefaultRetryConfig returns a default retry config suitable for HTTP clients.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	return &cfg
}
