package pipeline

import (
	"context"
	"errors"
)

// ErrNoTransport is returned by a pipeline built without a transport.
var ErrNoTransport = errors.New("pipeline has no transport")

// Pipeline is an ordered policy chain in front of a transport. It is
// immutable after New and safe for concurrent use when its policies are.
type Pipeline struct {
	policies []Policy
	head     Transport
}

// New builds the chain. Policies run their pre-hooks in the given order and
// their post-hooks in reverse order.
func New(transport Transport, policies ...Policy) *Pipeline {
	if transport == nil {
		transport = TransportFunc(func(*Request) (*Response, error) { return nil, ErrNoTransport })
	}
	p := &Pipeline{policies: append([]Policy(nil), policies...)}
	next := transport
	for i := len(p.policies) - 1; i >= 0; i-- {
		next = &runner{policy: p.policies[i], next: next}
	}
	p.head = next
	return p
}

// Policies returns a copy of the chain.
func (p *Pipeline) Policies() []Policy {
	return append([]Policy(nil), p.policies...)
}

// Run sends req with a fresh Context built from ctx and opts.
func (p *Pipeline) Run(ctx context.Context, req *Request, opts ...CallOption) (*Response, error) {
	req.Context = NewContext(ctx, opts...)
	return p.head.Send(req)
}

// Send sends req using its existing Context, creating one if it has none.
func (p *Pipeline) Send(req *Request) (*Response, error) {
	if req.Context == nil {
		req.Context = NewContext(context.Background())
	}
	return p.head.Send(req)
}

// runner binds one policy to the rest of the chain.
type runner struct {
	policy Policy
	next   Transport
}

func (r *runner) Send(req *Request) (*Response, error) {
	if err := r.policy.OnRequest(req); err != nil {
		return nil, err
	}

	var resp *Response
	var err error
	if s, ok := r.policy.(Sender); ok {
		resp, err = s.Send(req, r.next)
	} else {
		resp, err = r.next.Send(req)
	}
	if err != nil {
		if h, ok := r.policy.(ErrorHandler); ok {
			h.OnError(req, err)
		}
		return nil, err
	}

	if err := r.policy.OnResponse(req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
