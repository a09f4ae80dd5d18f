package pipeline

import "context"

// Annotation keys shared between policies.
const (
	KeyDeserializedData = "deserialized_data"
	KeyLoggingEnable    = "logging_enable"
	KeyLogger           = "logger"
	KeyResponseEncoding = "response_encoding"
	KeyTracingSpan      = "tracing_span"
	KeyRetryAttempt     = "retry_attempt"
)

// Context is the per-call state passed through the chain. It is owned by one
// call and its retries, so it needs no locking.
type Context struct {
	ctx         context.Context
	Options     Options
	annotations map[string]any
}

// NewContext creates the context for one call.
func NewContext(ctx context.Context, opts ...CallOption) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &Context{
		ctx:         ctx,
		Options:     make(Options, len(opts)),
		annotations: make(map[string]any),
	}
	for _, opt := range opts {
		opt(c.Options)
	}
	return c
}

// Context returns the Go context used for cancellation and span propagation.
func (c *Context) Context() context.Context {
	return c.ctx
}

// SetContext replaces the Go context, e.g. with one carrying a span.
func (c *Context) SetContext(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
}

// Value returns an annotation.
func (c *Context) Value(key string) (any, bool) {
	v, ok := c.annotations[key]
	return v, ok
}

// Set stores an annotation, replacing any previous value.
func (c *Context) Set(key string, value any) {
	c.annotations[key] = value
}

// SetDefault stores value unless key is already annotated and returns the
// value in effect.
func (c *Context) SetDefault(key string, value any) any {
	if existing, ok := c.annotations[key]; ok {
		return existing
	}
	c.annotations[key] = value
	return value
}

// Delete removes an annotation.
func (c *Context) Delete(key string) {
	delete(c.annotations, key)
}

// Stream reports whether the caller asked for a streamed response. The
// option is read, not consumed, because several stages need it.
func (c *Context) Stream() bool {
	v, ok := c.Options.Get(OptionStream)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
