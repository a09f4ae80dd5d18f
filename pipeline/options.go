package pipeline

import "github.com/kbukum/httppipe/logger"

// Caller option keys. Each is consumed by the policy that owns it.
const (
	OptionHeaders            = "headers"
	OptionRequestID          = "request_id"
	OptionAutoRequestID      = "auto_request_id"
	OptionUserAgent          = "user_agent"
	OptionUserAgentOverwrite = "user_agent_overwrite"
	OptionLoggingEnable      = "logging_enable"
	OptionLogger             = "logger"
	OptionResponseEncoding   = "response_encoding"
	OptionStream             = "stream"
	OptionProxies            = "proxies"
	OptionTracingEnable      = "tracing_enable"
)

// Options is the per-call option bag. Pop consumes a key so that later
// policies and the transport no longer see it.
type Options map[string]any

// Pop removes key and returns its value.
func (o Options) Pop(key string) (any, bool) {
	v, ok := o[key]
	if ok {
		delete(o, key)
	}
	return v, ok
}

// Get returns the value for key without consuming it.
func (o Options) Get(key string) (any, bool) {
	v, ok := o[key]
	return v, ok
}

// Has reports whether key is present, including with a nil value.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Set stores value under key.
func (o Options) Set(key string, value any) {
	o[key] = value
}

// PopString pops key and returns it when it holds a string.
func (o Options) PopString(key string) (string, bool) {
	v, ok := o.Pop(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// PopBool pops key and returns it when it holds a bool.
func (o Options) PopBool(key string) (bool, bool) {
	v, ok := o.Pop(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// CallOption sets a per-call option.
type CallOption func(Options)

// WithOption sets an arbitrary option key.
func WithOption(key string, value any) CallOption {
	return func(o Options) { o[key] = value }
}

// WithHeaders adds headers for one call. They overwrite the client's base headers.
func WithHeaders(headers map[string]string) CallOption {
	return WithOption(OptionHeaders, headers)
}

// WithRequestID sets the correlation id for one call, overwriting any existing header.
func WithRequestID(id string) CallOption {
	return WithOption(OptionRequestID, id)
}

// WithoutRequestID suppresses the correlation header for one call.
func WithoutRequestID() CallOption {
	return WithOption(OptionRequestID, nil)
}

// WithAutoRequestID turns id generation on or off for one call.
func WithAutoRequestID(enabled bool) CallOption {
	return WithOption(OptionAutoRequestID, enabled)
}

// WithUserAgent sets an application id for one call. It is prepended to the
// computed User-Agent unless overwrite is requested.
func WithUserAgent(appID string) CallOption {
	return WithOption(OptionUserAgent, appID)
}

// WithUserAgentOverwrite makes WithUserAgent replace the header entirely.
func WithUserAgentOverwrite(overwrite bool) CallOption {
	return WithOption(OptionUserAgentOverwrite, overwrite)
}

// WithLogging turns network tracing on or off for one call.
func WithLogging(enabled bool) CallOption {
	return WithOption(OptionLoggingEnable, enabled)
}

// WithLogger sets the logger used by HTTP logging for one call and its retries.
func WithLogger(l *logger.Logger) CallOption {
	return WithOption(OptionLogger, l)
}

// WithResponseEncoding names the text encoding used to decode the response body.
func WithResponseEncoding(encoding string) CallOption {
	return WithOption(OptionResponseEncoding, encoding)
}

// WithStream leaves the response body unread for the caller to consume.
func WithStream(stream bool) CallOption {
	return WithOption(OptionStream, stream)
}

// WithProxies sets proxies for one call, keyed by scheme, "scheme://host",
// "all://host" or "all".
func WithProxies(proxies map[string]string) CallOption {
	return WithOption(OptionProxies, proxies)
}

// WithTracing turns span creation on or off for one call.
func WithTracing(enabled bool) CallOption {
	return WithOption(OptionTracingEnable, enabled)
}
