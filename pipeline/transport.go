package pipeline

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http/httpproxy"

	apperrors "github.com/kbukum/httppipe/errors"
)

// TransportConfig configures HTTPTransport.
type TransportConfig struct {
	// Timeout bounds a whole exchange, including reading a buffered body.
	Timeout time.Duration
	// Base is the round tripper requests go through. Per-call proxies only
	// apply when it is an *http.Transport. Defaults to a clone of
	// http.DefaultTransport.
	Base http.RoundTripper
	// Instrument wraps the round tripper with otelhttp.
	Instrument bool
}

// TransportOption configures HTTPTransport.
type TransportOption func(*TransportConfig)

// WithTimeout sets the exchange timeout.
func WithTimeout(d time.Duration) TransportOption {
	return func(c *TransportConfig) { c.Timeout = d }
}

// WithRoundTripper sets the underlying round tripper.
func WithRoundTripper(rt http.RoundTripper) TransportOption {
	return func(c *TransportConfig) { c.Base = rt }
}

// WithInstrumentation wraps the round tripper with OpenTelemetry spans.
func WithInstrumentation(enabled bool) TransportOption {
	return func(c *TransportConfig) { c.Instrument = enabled }
}

// HTTPTransport sends requests with net/http.
type HTTPTransport struct {
	client *http.Client
}

type proxiesKey struct{}

// NewHTTPTransport creates a transport.
func NewHTTPTransport(opts ...TransportOption) *HTTPTransport {
	var cfg TransportConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if ht, ok := base.(*http.Transport); ok {
		ht = ht.Clone()
		ht.Proxy = proxyFromContext
		base = ht
	}
	if cfg.Instrument {
		base = otelhttp.NewTransport(base)
	}

	return &HTTPTransport{client: &http.Client{Transport: base, Timeout: cfg.Timeout}}
}

// Send implements Transport. It reads the proxies option on every attempt
// and, unless the call streams, reads the whole body before returning.
func (t *HTTPTransport) Send(req *Request) (*Response, error) {
	pctx := req.Context
	if pctx == nil {
		pctx = NewContext(context.Background())
		req.Context = pctx
	}
	ctx := pctx.Context()
	if v, ok := pctx.Options.Get(OptionProxies); ok {
		if proxies, ok := v.(map[string]string); ok && len(proxies) > 0 {
			ctx = context.WithValue(ctx, proxiesKey{}, proxies)
		}
	}

	var body io.Reader
	switch {
	case req.Stream != nil:
		body = req.Stream
	case len(req.Body) > 0:
		body = bytes.NewReader(req.Body)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
	if err != nil {
		return nil, apperrors.InvalidInput("request", err.Error()).WithCause(err)
	}
	hreq.Header = req.Header.ToHTTP()
	if host := req.Header.Get("Host"); host != "" {
		hreq.Host = host
	}

	hresp, err := t.client.Do(hreq)
	if err != nil {
		return nil, apperrors.Transport(err).WithDetail("url", req.URL.Redacted())
	}

	resp := NewResponse(req, hresp.StatusCode, HeaderFromHTTP(hresp.Header), hresp.Body)
	if !pctx.Stream() {
		if _, err := resp.Body(); err != nil {
			return nil, apperrors.Transport(err).WithDetail("url", req.URL.Redacted())
		}
	}
	return resp, nil
}

// proxyFromContext picks the proxy for r from the per-call mapping, falling
// back to the HTTP_PROXY, HTTPS_PROXY and NO_PROXY environment variables.
func proxyFromContext(r *http.Request) (*url.URL, error) {
	if proxies, ok := r.Context().Value(proxiesKey{}).(map[string]string); ok {
		if proxy := SelectProxy(r.URL, proxies); proxy != "" {
			return parseProxy(proxy)
		}
	}
	return httpproxy.FromEnvironment().ProxyFunc()(r.URL)
}

// SelectProxy returns the proxy for u, trying "scheme://host", "scheme",
// "all://host" and "all" in that order.
func SelectProxy(u *url.URL, proxies map[string]string) string {
	if len(proxies) == 0 || u == nil {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	host := u.Hostname()
	keys := []string{scheme, "all"}
	if host != "" {
		keys = []string{scheme + "://" + host, scheme, "all://" + host, "all"}
	}
	for _, k := range keys {
		if p, ok := proxies[k]; ok && p != "" {
			return p
		}
	}
	return ""
}

func parseProxy(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	return url.Parse(raw)
}
