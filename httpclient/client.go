package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/httppipe/logger"
	"github.com/kbukum/httppipe/pipeline"
	"github.com/kbukum/httppipe/pipeline/policy"
	"github.com/kbukum/httppipe/validation"
)

// Client sends requests through a policy pipeline built from Config.
type Client struct {
	config   Config
	pipeline *pipeline.Pipeline
	log      *logger.Logger
}

// Option customizes how New assembles the pipeline.
type Option func(*options)

type options struct {
	roundTripper   http.RoundTripper
	transport      pipeline.Transport
	log            *logger.Logger
	tracerProvider trace.TracerProvider
	meter          metric.Meter
	policies       []pipeline.Policy
}

// WithRoundTripper sets the round tripper used by the default transport.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) { o.roundTripper = rt }
}

// WithTransport replaces the HTTP transport at the end of the chain.
func WithTransport(t pipeline.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithLogger sets the logger used by the logging policies.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithTracerProvider sets the provider of the tracing policy.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeter sets the meter of the metrics policy.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// WithPolicies inserts extra policies after the built-in ones and before
// the logging policies.
func WithPolicies(p ...pipeline.Policy) Option {
	return func(o *options) { o.policies = append(o.policies, p...) }
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log
	if log == nil {
		log = logger.WithComponent("httpclient")
	}
	if cfg.Name != "" {
		log = log.WithFields(map[string]interface{}{"client": cfg.Name})
	}

	policies, err := buildPolicies(cfg, &o, log)
	if err != nil {
		return nil, err
	}

	transport := o.transport
	if transport == nil {
		transport = pipeline.NewHTTPTransport(
			pipeline.WithTimeout(cfg.Timeout),
			pipeline.WithRoundTripper(o.roundTripper),
			pipeline.WithInstrumentation(cfg.InstrumentTransport),
		)
	}

	return &Client{
		config:   cfg,
		pipeline: pipeline.New(transport, policies...),
		log:      log,
	}, nil
}

// buildPolicies assembles the chain in the order the policies must run.
func buildPolicies(cfg Config, o *options, log *logger.Logger) ([]pipeline.Policy, error) {
	policies := []pipeline.Policy{
		policy.NewHeaders(cfg.Headers),
		policy.NewRequestID(policy.WithRequestIDHeader(cfg.RequestIDHeader)),
		policy.NewUserAgent(policy.WithApplicationID(cfg.ApplicationID)),
		&authPolicy{auth: cfg.Auth},
		policy.NewProxy(cfg.Proxies),
		policy.NewContentDecode(cfg.ResponseEncoding),
	}
	if cfg.Retry != nil {
		policies = append(policies, policy.NewRetry(*cfg.Retry))
	}
	if cfg.Tracing {
		var topts []policy.TracingOption
		if o.tracerProvider != nil {
			topts = append(topts, policy.WithTracerProvider(o.tracerProvider))
		}
		policies = append(policies, policy.NewTracing(topts...))
	}
	if cfg.Metrics {
		m, err := policy.NewMetrics(o.meter)
		if err != nil {
			return nil, fmt.Errorf("httpclient: create metrics: %w", err)
		}
		policies = append(policies, m)
	}
	policies = append(policies, o.policies...)

	httpLog := policy.NewHTTPLogging(log)
	httpLog.AllowHeader(cfg.Logging.AllowedHeaders...)
	httpLog.AllowQueryParam(cfg.Logging.AllowedQueryParams...)
	policies = append(policies,
		policy.NewNetworkTrace(log, cfg.Logging.NetworkTrace),
		httpLog,
	)
	return policies, nil
}

// Pipeline returns the underlying policy pipeline.
func (c *Client) Pipeline() *pipeline.Pipeline {
	return c.pipeline
}

// Do executes an HTTP request and returns the complete response. Non-2xx
// responses are returned together with a classified *Error.
func (c *Client) Do(ctx context.Context, req Request, opts ...pipeline.CallOption) (*Response, error) {
	resp, err := c.send(ctx, req, false, opts)
	if err != nil {
		return nil, err
	}

	body, err := resp.Body()
	if err != nil {
		return nil, NewConnectionError(err)
	}
	data, _ := resp.Decoded()
	result := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Data:       data,
	}

	if classErr := ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}
	return result, nil
}

// DoStream executes an HTTP request without buffering the response body.
// The caller must close the returned StreamResponse when done.
func (c *Client) DoStream(ctx context.Context, req Request, opts ...pipeline.CallOption) (*StreamResponse, error) {
	resp, err := c.send(ctx, req, true, opts)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		body, _ := resp.Body()
		return nil, ClassifyStatusCode(resp.StatusCode, body)
	}

	return &StreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Stream(),
	}, nil
}

func (c *Client) send(ctx context.Context, req Request, stream bool, opts []pipeline.CallOption) (*pipeline.Response, error) {
	preq, err := c.buildRequest(req)
	if err != nil {
		return nil, err
	}

	callOpts := make([]pipeline.CallOption, 0, len(req.Options)+len(opts)+3)
	if len(req.Headers) > 0 {
		callOpts = append(callOpts, pipeline.WithHeaders(req.Headers))
	}
	if req.Auth != nil {
		callOpts = append(callOpts, withAuth(req.Auth))
	}
	if stream {
		callOpts = append(callOpts, pipeline.WithStream(true))
	}
	callOpts = append(callOpts, req.Options...)
	callOpts = append(callOpts, opts...)

	resp, err := c.pipeline.Run(ctx, preq, callOpts...)
	if err != nil {
		if rc, ok := preq.Stream.(io.Closer); ok {
			_ = rc.Close()
		}
		c.log.Debug("request failed", map[string]interface{}{
			"method": preq.Method,
			"url":    preq.URL.Redacted(),
			"error":  err.Error(),
		})
		return nil, classifyError(ctx, err)
	}
	return resp, nil
}

// buildRequest constructs a pipeline request from the client config and request.
func (c *Client) buildRequest(req Request) (*pipeline.Request, error) {
	v := validation.New().
		Required("method", req.Method).
		Pattern("method", req.Method, `^[A-Za-z]+$`)
	if err := v.Validate(); err != nil {
		return nil, NewValidationError(err.Message)
	}

	rawURL := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		rawURL = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	preq, err := pipeline.NewRequest(strings.ToUpper(req.Method), rawURL)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}
	if len(req.Query) > 0 {
		q := preq.URL.Query()
		for k, val := range req.Query {
			q.Set(k, val)
		}
		preq.URL.RawQuery = q.Encode()
	}

	if err := encodeBody(preq, req.Body); err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}
	return preq, nil
}

// encodeBody attaches body to req and sets its content type.
func encodeBody(req *pipeline.Request, body any) error {
	switch v := body.(type) {
	case nil:
		return nil
	case *MultipartBody:
		pr, contentType := v.encode()
		req.SetStream(pr, contentType)
	case []byte:
		req.SetBytes(v, "")
	case string:
		req.SetBytes([]byte(v), "text/plain")
	case url.Values:
		req.SetBytes([]byte(v.Encode()), "application/x-www-form-urlencoded")
	case *bytes.Buffer:
		req.SetBytes(v.Bytes(), "")
	case io.Reader:
		req.SetStream(v, "")
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		req.SetBytes(data, "application/json")
	}
	return nil
}
