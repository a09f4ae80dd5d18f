package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/goccy/go-json"
)

// Request is an outgoing HTTP request. Pre-hooks mutate it in place.
// At most one of Body and Stream is set.
type Request struct {
	Method string
	URL    *url.URL
	Header *Header
	// Body is a buffered payload.
	Body []byte
	// Stream is a lazily produced payload, used for uploads.
	Stream io.Reader
	// Context is the per-call state. Pipeline.Run creates it.
	Context *Context
}

// NewRequest creates a request for method and rawURL.
func NewRequest(method, rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid request url %q: %w", rawURL, err)
	}
	return &Request{Method: method, URL: u, Header: &Header{}}, nil
}

// SetJSON marshals v as the body and sets Content-Type.
func (r *Request) SetJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	r.SetBytes(data, "application/json")
	return nil
}

// SetText sets a text body.
func (r *Request) SetText(s string) {
	r.SetBytes([]byte(s), "text/plain; charset=utf-8")
}

// SetBytes sets a buffered body. An empty contentType leaves the header alone.
func (r *Request) SetBytes(data []byte, contentType string) {
	r.Body = data
	r.Stream = nil
	if contentType != "" {
		r.header().Set("Content-Type", contentType)
	}
}

// SetStream sets a streamed body. An empty contentType leaves the header alone.
func (r *Request) SetStream(body io.Reader, contentType string) {
	r.Stream = body
	r.Body = nil
	if contentType != "" {
		r.header().Set("Content-Type", contentType)
	}
}

// IsStream reports whether the body is produced lazily.
func (r *Request) IsStream() bool {
	return r.Stream != nil
}

// HasBody reports whether any body is attached.
func (r *Request) HasBody() bool {
	return r.Stream != nil || len(r.Body) > 0
}

// Ctx returns the Go context of the call.
func (r *Request) Ctx() context.Context {
	if r.Context == nil {
		return context.Background()
	}
	return r.Context.Context()
}

func (r *Request) header() *Header {
	if r.Header == nil {
		r.Header = &Header{}
	}
	return r.Header
}
