package policy

import (
	"context"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/httppipe/errors"
	"github.com/kbukum/httppipe/observability"
	"github.com/kbukum/httppipe/pipeline"
)

const keyTracingParent = "tracing_parent"

// Tracing opens a client span around each attempt and propagates the trace
// context in the outgoing headers. The span is available to later policies
// under pipeline.KeyTracingSpan.
type Tracing struct {
	tracer      trace.Tracer
	propagator  propagation.TextMapPropagator
	spanHeaders []string
}

// TracingOption configures a Tracing policy.
type TracingOption func(*Tracing)

// WithTracerProvider uses tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(p *Tracing) { p.tracer = tp.Tracer(observability.InstrumentationName) }
}

// WithPropagator uses prop instead of the global propagator.
func WithPropagator(prop propagation.TextMapPropagator) TracingOption {
	return func(p *Tracing) { p.propagator = prop }
}

// WithSpanHeaders records the named request headers as span attributes.
func WithSpanHeaders(names ...string) TracingOption {
	return func(p *Tracing) { p.spanHeaders = names }
}

// NewTracing creates the policy. By default it records the request id header.
func NewTracing(opts ...TracingOption) *Tracing {
	p := &Tracing{spanHeaders: []string{DefaultRequestIDHeader}}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = observability.Tracer(observability.InstrumentationName)
	}
	if p.propagator == nil {
		p.propagator = otel.GetTextMapPropagator()
	}
	return p
}

func (p *Tracing) OnRequest(req *pipeline.Request) error {
	// The popped option is pinned so that retried attempts honour it.
	if enabled, ok := req.Context.Options.PopBool(pipeline.OptionTracingEnable); ok {
		req.Context.Set(pipeline.OptionTracingEnable, enabled)
	}
	if v, ok := req.Context.Value(pipeline.OptionTracingEnable); ok {
		if enabled, _ := v.(bool); !enabled {
			return nil
		}
	}

	attrs := []attribute.KeyValue{
		attribute.String(observability.AttrHTTPMethod, req.Method),
		attribute.String(observability.AttrURLFull, req.URL.Redacted()),
		attribute.String(observability.AttrServerAddress, req.URL.Hostname()),
	}
	if port := req.URL.Port(); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			attrs = append(attrs, attribute.Int(observability.AttrServerPort, n))
		}
	}
	if v, ok := req.Context.Value(pipeline.KeyRetryAttempt); ok {
		if attempt, ok := v.(int); ok && attempt > 1 {
			attrs = append(attrs, attribute.Int(observability.AttrHTTPResendCount, attempt-1))
		}
	}
	header := headerOf(req)
	for _, name := range p.spanHeaders {
		if v, ok := header.Lookup(name); ok {
			attrs = append(attrs, attribute.String(observability.AttrRequestHeader+strings.ToLower(name), v))
		}
	}

	parent := req.Ctx()
	ctx, span := p.tracer.Start(parent, "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	p.propagator.Inject(ctx, header)

	req.Context.Set(keyTracingParent, parent)
	req.Context.Set(pipeline.KeyTracingSpan, span)
	req.Context.SetContext(ctx)
	return nil
}

func (p *Tracing) OnResponse(req *pipeline.Request, resp *pipeline.Response) error {
	span, ok := p.finish(req)
	if !ok {
		return nil
	}
	span.SetAttributes(attribute.Int(observability.AttrHTTPStatusCode, resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetAttributes(attribute.String(observability.AttrErrorType, strconv.Itoa(resp.StatusCode)))
		span.SetStatus(codes.Error, "")
	}
	span.End()
	return nil
}

func (p *Tracing) OnError(req *pipeline.Request, err error) {
	span, ok := p.finish(req)
	if !ok {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String(observability.AttrErrorType, string(apperrors.CodeOf(err))))
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

// finish detaches the span from the call and restores the parent context so
// that a retried attempt starts a sibling span.
func (p *Tracing) finish(req *pipeline.Request) (trace.Span, bool) {
	v, ok := req.Context.Value(pipeline.KeyTracingSpan)
	if !ok {
		return nil, false
	}
	span, ok := v.(trace.Span)
	if !ok {
		return nil, false
	}
	req.Context.Delete(pipeline.KeyTracingSpan)
	if parent, ok := req.Context.Value(keyTracingParent); ok {
		if ctx, ok := parent.(context.Context); ok {
			req.Context.SetContext(ctx)
		}
		req.Context.Delete(keyTracingParent)
	}
	return span, true
}
