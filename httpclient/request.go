package httpclient

import (
	"io"

	"github.com/kbukum/httppipe/pipeline"
)

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, PATCH, DELETE, etc).
	Method string
	// Path is appended to the client's BaseURL. Can be a full URL if BaseURL is empty.
	Path string
	// Headers are request-specific headers (merged with client defaults).
	Headers map[string]string
	// Query are URL query parameters.
	Query map[string]string
	// Body is the request body. Accepts io.Reader, []byte, string,
	// *MultipartBody, or any value that will be JSON-encoded.
	Body any
	// Auth overrides the client-level auth for this request.
	Auth *AuthConfig
	// Options are per-call pipeline options.
	Options []pipeline.CallOption
}

// Response is the result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Header holds the response headers in wire order.
	Header *pipeline.Header
	// Body is the raw response body.
	Body []byte
	// Data is the body deserialized according to its content type:
	// map[string]any or []any for JSON, *etree.Document for XML, string
	// for text. Nil when the body is empty or of an unknown type.
	Data any
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// StreamResponse wraps a streaming HTTP response.
type StreamResponse struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Header holds the response headers.
	Header *pipeline.Header
	// Body is the unread response body.
	Body io.ReadCloser
}

// Close releases the response body.
func (r *StreamResponse) Close() error {
	if r.Body != nil {
		return r.Body.Close()
	}
	return nil
}
