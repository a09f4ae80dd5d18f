package policy

import (
	"bytes"
	"context"
	"testing"

	"github.com/kbukum/httppipe/logger"
	"github.com/kbukum/httppipe/pipeline"
)

func newCall(t *testing.T, method, rawURL string, opts ...pipeline.CallOption) *pipeline.Request {
	t.Helper()
	req, err := pipeline.NewRequest(method, rawURL)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Context = pipeline.NewContext(context.Background(), opts...)
	return req
}

func bufferLogger(level string) (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.NewWithWriter(&buf, &logger.Config{Level: level, Format: "json"}, "test"), &buf
}

// staticTransport answers every request with the same status, headers and body.
func staticTransport(status int, header *pipeline.Header, body string) pipeline.Transport {
	return pipeline.TransportFunc(func(req *pipeline.Request) (*pipeline.Response, error) {
		return pipeline.NewBufferedResponse(req, status, header.Clone(), []byte(body)), nil
	})
}

// sequenceTransport answers with statuses in order, repeating the last one.
type sequenceTransport struct {
	statuses []int
	header   *pipeline.Header
	calls    int
	contexts []*pipeline.Context
}

func (s *sequenceTransport) Send(req *pipeline.Request) (*pipeline.Response, error) {
	i := s.calls
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	s.calls++
	s.contexts = append(s.contexts, req.Context)
	return pipeline.NewBufferedResponse(req, s.statuses[i], s.header.Clone(), []byte(`{"ok":true}`)), nil
}
