package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"sync"
)

// Response is an incoming HTTP response. In buffered mode the body is read
// once and cached. In stream mode the caller consumes Stream.
type Response struct {
	StatusCode int
	Header     *Header
	Request    *Request

	raw     io.ReadCloser
	once    sync.Once
	body    []byte
	readErr error
}

// NewResponse wraps a status, headers and an unread body.
func NewResponse(req *Request, status int, header *Header, body io.ReadCloser) *Response {
	if header == nil {
		header = &Header{}
	}
	return &Response{StatusCode: status, Header: header, Request: req, raw: body}
}

// NewBufferedResponse wraps an already read body.
func NewBufferedResponse(req *Request, status int, header *Header, body []byte) *Response {
	return NewResponse(req, status, header, io.NopCloser(bytes.NewReader(body)))
}

// Body reads the full body on first use and returns the cached bytes after.
func (r *Response) Body() ([]byte, error) {
	r.once.Do(func() {
		if r.raw == nil {
			return
		}
		r.body, r.readErr = io.ReadAll(r.raw)
		if cerr := r.raw.Close(); r.readErr == nil && cerr != nil {
			r.readErr = cerr
		}
		r.raw = nil
	})
	if r.readErr != nil {
		return nil, fmt.Errorf("failed to read response body: %w", r.readErr)
	}
	return r.body, nil
}

// Stream returns the body as a reader. Once Body has been called it reads
// from the cached bytes.
func (r *Response) Stream() io.ReadCloser {
	if r.raw != nil {
		return r.raw
	}
	return io.NopCloser(bytes.NewReader(r.body))
}

// Text returns the body as a string. An empty encoding uses the charset of
// the content type, then BOM-aware UTF-8.
func (r *Response) Text(encoding string) (string, error) {
	body, err := r.Body()
	if err != nil {
		return "", err
	}
	if encoding == "" {
		if _, params, err := mime.ParseMediaType(r.ContentType()); err == nil {
			encoding = params["charset"]
		}
	}
	return DecodeText(body, encoding)
}

// ContentType returns the raw content-type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Decoded returns the payload stored by content decoding.
func (r *Response) Decoded() (any, bool) {
	if r.Request == nil || r.Request.Context == nil {
		return nil, false
	}
	return r.Request.Context.Value(KeyDeserializedData)
}

// Close releases an unread body.
func (r *Response) Close() error {
	if r.raw == nil {
		return nil
	}
	err := r.raw.Close()
	r.raw = nil
	return err
}
