package policy

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kbukum/httppipe/pipeline"
)

// DefaultRequestIDHeader carries the client request id.
const DefaultRequestIDHeader = "x-ms-client-request-id"

// RequestID stamps each request with a correlation id.
//
// A per-call request_id option always wins and overwrites the header; a nil
// value suppresses the header for that call. Otherwise a fixed instance id,
// or a generated one when auto-generation is on, is written only if the
// header is not already set.
type RequestID struct {
	pipeline.BasePolicy
	header string
	auto   bool

	idState idState
	id      string
}

type idState int

const (
	idUnset idState = iota
	idFixed
	idDisabled
)

// RequestIDOption configures RequestID.
type RequestIDOption func(*RequestID)

// WithRequestIDHeader changes the header name.
func WithRequestIDHeader(name string) RequestIDOption {
	return func(p *RequestID) { p.header = name }
}

// WithFixedRequestID uses id for every request.
func WithFixedRequestID(id string) RequestIDOption {
	return func(p *RequestID) { p.SetRequestID(id) }
}

// WithAutoRequestID turns id generation on or off. It is on by default.
func WithAutoRequestID(enabled bool) RequestIDOption {
	return func(p *RequestID) { p.auto = enabled }
}

// NewRequestID creates the policy.
func NewRequestID(opts ...RequestIDOption) *RequestID {
	p := &RequestID{header: DefaultRequestIDHeader, auto: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetRequestID sets the instance id. Not safe to call while requests are in flight.
func (p *RequestID) SetRequestID(id string) {
	p.id = id
	p.idState = idFixed
}

// DisableRequestID stops the instance from writing any id, generated or
// fixed. Per-call ids still apply.
func (p *RequestID) DisableRequestID() {
	p.id = ""
	p.idState = idDisabled
}

// HeaderName returns the header the policy writes.
func (p *RequestID) HeaderName() string {
	return p.header
}

func (p *RequestID) OnRequest(req *pipeline.Request) error {
	opts := req.Context.Options
	auto := p.auto
	if v, ok := opts.PopBool(pipeline.OptionAutoRequestID); ok {
		auto = v
	}

	header := headerOf(req)
	if v, ok := opts.Pop(pipeline.OptionRequestID); ok {
		if v != nil {
			header.Set(p.header, fmt.Sprint(v))
		}
		return nil
	}

	switch p.idState {
	case idDisabled:
		return nil
	case idFixed:
		if !header.Has(p.header) {
			header.Set(p.header, p.id)
		}
		return nil
	}

	if auto && !header.Has(p.header) {
		header.Set(p.header, newRequestID())
	}
	return nil
}

// newRequestID returns a time-ordered UUID.
func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
