package policy

import "github.com/kbukum/httppipe/pipeline"

// Headers applies a base header set to every request, then the per-call
// headers option. Later writes overwrite earlier ones.
type Headers struct {
	pipeline.BasePolicy
	base *pipeline.Header
}

// NewHeaders creates the policy. Base headers are added in sorted name order.
func NewHeaders(base map[string]string) *Headers {
	h := &pipeline.Header{}
	h.Merge(base)
	return &Headers{base: h}
}

// Headers returns a copy of the base headers.
func (p *Headers) Headers() *pipeline.Header {
	return p.base.Clone()
}

// AddHeader adds a base header. Not safe to call while requests are in flight.
func (p *Headers) AddHeader(name, value string) {
	p.base.Set(name, value)
}

func (p *Headers) OnRequest(req *pipeline.Request) error {
	header := headerOf(req)
	p.base.Range(func(name, value string) bool {
		header.Set(name, value)
		return true
	})

	v, ok := req.Context.Options.Pop(pipeline.OptionHeaders)
	if !ok {
		return nil
	}
	switch extra := v.(type) {
	case map[string]string:
		header.Merge(extra)
	case *pipeline.Header:
		extra.Range(func(name, value string) bool {
			header.Set(name, value)
			return true
		})
	}
	return nil
}

// headerOf returns the request's headers, creating them when missing.
func headerOf(req *pipeline.Request) *pipeline.Header {
	if req.Header == nil {
		req.Header = &pipeline.Header{}
	}
	return req.Header
}
