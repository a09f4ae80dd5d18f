package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/kbukum/httppipe/logger"
	"github.com/kbukum/httppipe/pipeline"
	"github.com/kbukum/httppipe/pipeline/policy"
	"github.com/kbukum/httppipe/testutil"
)

func newTestClient(t *testing.T, cfg Config, opts ...Option) *Client {
	t.Helper()
	c, err := New(cfg, append([]Option{WithLogger(logger.Nop())}, opts...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestClient_Do_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/users/123" {
			t.Errorf("expected /users/123, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"name": "Alice"})
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/users/123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if !resp.IsSuccess() {
		t.Error("expected IsSuccess=true")
	}
	if !strings.Contains(string(resp.Body), "Alice") {
		t.Errorf("response body should contain Alice, got %s", string(resp.Body))
	}
	data, ok := resp.Data.(map[string]any)
	if !ok || data["name"] != "Alice" {
		t.Errorf("expected decoded JSON object, got %#v", resp.Data)
	}
}

func TestClient_Do_POST_JSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(201)
		json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/users",
		Body:   map[string]string{"name": "Bob"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
}

func TestClient_Do_StandardHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL, ApplicationID: "myapp/1.0"})

	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := uuid.Parse(got.Get(policy.DefaultRequestIDHeader)); err != nil {
		t.Errorf("expected generated request id, got %q", got.Get(policy.DefaultRequestIDHeader))
	}
	if ua := got.Get("User-Agent"); !strings.HasPrefix(ua, "myapp/1.0 "+policy.DefaultProductToken+"-") {
		t.Errorf("expected application id prefix, got %q", ua)
	}
}

func TestClient_Do_DefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Custom"); got != "value" {
			t.Errorf("expected X-Custom=value, got %q", got)
		}
		if got := r.Header.Get("X-Request"); got != "per-call" {
			t.Errorf("expected X-Request=per-call, got %q", got)
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{
		BaseURL: srv.URL,
		Headers: map[string]string{"X-Custom": "value", "X-Request": "default"},
	})

	_, err := c.Do(context.Background(), Request{
		Method:  http.MethodGet,
		Path:    "/",
		Headers: map[string]string{"X-Request": "per-call"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_CallOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(policy.DefaultRequestIDHeader); got != "fixed-id" {
			t.Errorf("expected fixed-id, got %q", got)
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"},
		pipeline.WithRequestID("fixed-id"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("expected page=2, got %q", got)
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})

	_, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/items",
		Query:  map[string]string{"page": "2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_Auth(t *testing.T) {
	tests := []struct {
		name   string
		auth   *AuthConfig
		header string
		want   string
		query  string
	}{
		{"bearer", BearerAuth("test-token"), "Authorization", "Bearer test-token", ""},
		{"basic", BasicAuth("user", "pass"), "Authorization", "Basic dXNlcjpwYXNz", ""},
		{"api key header", APIKeyAuth("k1"), "X-API-Key", "k1", ""},
		{"api key query", APIKeyAuthQuery("k2", "api_key"), "", "", "k2"},
		{"custom", CustomAuth(func(r *pipeline.Request) { r.Header.Set("X-Sig", "signed") }), "X-Sig", "signed", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.header != "" && r.Header.Get(tc.header) != tc.want {
					t.Errorf("expected %s=%q, got %q", tc.header, tc.want, r.Header.Get(tc.header))
				}
				if tc.query != "" && r.URL.Query().Get("api_key") != tc.query {
					t.Errorf("expected api_key=%q, got %q", tc.query, r.URL.Query().Get("api_key"))
				}
				w.WriteHeader(200)
			}))
			defer srv.Close()

			c := newTestClient(t, Config{BaseURL: srv.URL, Auth: tc.auth})
			if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestClient_Do_Auth_PerRequestOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer override-token" {
			t.Errorf("expected override-token, got %q", got)
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{
		BaseURL: srv.URL,
		Auth:    BearerAuth("default-token"),
	})

	_, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/",
		Auth:   BearerAuth("override-token"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_ErrorClassification(t *testing.T) {
	tests := []struct {
		code    int
		checker func(error) bool
	}{
		{401, IsAuth},
		{403, IsAuth},
		{404, IsNotFound},
		{429, IsRateLimit},
		{500, IsServerError},
		{503, IsServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("HTTP_%d", tt.code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.code)
				w.Write([]byte(`{"error":"test"}`))
			}))
			defer srv.Close()

			c := newTestClient(t, Config{BaseURL: srv.URL})

			resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.checker(err) {
				t.Errorf("error classification failed for HTTP %d: %v", tt.code, err)
			}
			if resp == nil {
				t.Fatal("expected response even on error")
			}
			if resp.StatusCode != tt.code {
				t.Errorf("expected status %d, got %d", tt.code, resp.StatusCode)
			}
			if data, ok := resp.Data.(map[string]any); !ok || data["error"] != "test" {
				t.Errorf("expected decoded error body, got %#v", resp.Data)
			}
		})
	}
}

func TestClient_Do_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"broken":`))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	var decodeErr *pipeline.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Response == nil || decodeErr.Response.StatusCode != 200 {
		t.Error("expected DecodeError to carry the response")
	}
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/"})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !IsTimeout(err) {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestClient_Do_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(t, Config{BaseURL: url})

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsConnection(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("connection errors should be retryable")
	}
}

func TestClient_Do_InvalidMethod(t *testing.T) {
	c := newTestClient(t, Config{BaseURL: "http://localhost"})

	for _, method := range []string{"", "GE T"} {
		_, err := c.Do(context.Background(), Request{Method: method, Path: "/"})
		var clientErr *Error
		if !errors.As(err, &clientErr) || clientErr.Code != ErrCodeValidation {
			t.Errorf("method %q: expected validation error, got %v", method, err)
		}
	}
}

func TestClient_Do_FullURL_IgnoresBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: "http://should-not-be-used.invalid"})

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   srv.URL + "/direct",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestClient_Do_Retry(t *testing.T) {
	var attempts int32
	var mu sync.Mutex
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get(policy.DefaultRequestIDHeader))
		mu.Unlock()
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			w.WriteHeader(503)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	retryCfg := DefaultRetryConfig()
	retryCfg.MaxAttempts = 3
	retryCfg.InitialBackoff = 10 * time.Millisecond
	retryCfg.Jitter = 0

	c := newTestClient(t, Config{
		BaseURL: srv.URL,
		Retry:   retryCfg,
	})

	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(ids) != 3 || ids[0] == "" || ids[0] != ids[1] || ids[1] != ids[2] {
		t.Errorf("expected one request id across attempts, got %v", ids)
	}
}

func TestClient_Do_RetryExhausted(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(502)
	}))
	defer srv.Close()

	retryCfg := DefaultRetryConfig()
	retryCfg.MaxAttempts = 2
	retryCfg.InitialBackoff = time.Millisecond

	c := newTestClient(t, Config{BaseURL: srv.URL, Retry: retryCfg})

	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsServerError(err) {
		t.Fatalf("expected server error, got %v", err)
	}
	if resp == nil || resp.StatusCode != 502 {
		t.Errorf("expected the last 502 response, got %+v", resp)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestClient_Do_Logging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Secret", "leak")
		w.WriteHeader(200)
	}))
	defer srv.Close()

	log, buf := testutil.BufferLogger("debug")
	c := newTestClient(t, Config{
		BaseURL: srv.URL,
		Auth:    BearerAuth("top-secret"),
		Logging: LoggingConfig{NetworkTrace: false, AllowedQueryParams: []string{"page"}},
	}, WithLogger(log))

	_, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/items",
		Query:  map[string]string{"page": "1", "token": "abc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, leak := range []string{"top-secret", "leak", "token=abc"} {
		if strings.Contains(out, leak) {
			t.Errorf("log output leaked %q: %s", leak, out)
		}
	}
	for _, want := range []string{"page=1", "token=REDACTED", "'Authorization': 'REDACTED'", "Response status: 200"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output: %s", want, out)
		}
	}
	if len(buf.Lines()) != 2 {
		t.Errorf("expected request and response records only, got %d", len(buf.Lines()))
	}
}

func TestClient_Do_NetworkTrace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("hello trace"))
	}))
	defer srv.Close()

	log, buf := testutil.BufferLogger("debug")
	c := newTestClient(t, Config{BaseURL: srv.URL, Logging: LoggingConfig{NetworkTrace: true}}, WithLogger(log))

	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "hello trace") {
		t.Errorf("expected the response body in the trace: %s", buf.String())
	}

	buf2Log, buf2 := testutil.BufferLogger("debug")
	c2 := newTestClient(t, Config{BaseURL: srv.URL, Logging: LoggingConfig{NetworkTrace: true}}, WithLogger(buf2Log))
	_, err := c2.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}, pipeline.WithLogging(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf2.String(), "hello trace") {
		t.Errorf("trace should be disabled for the call: %s", buf2.String())
	}
}

func TestClient_Do_ExtraPolicies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Extra"); got != "1" {
			t.Errorf("expected X-Extra=1, got %q", got)
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	extra := policy.NewHeaders(map[string]string{"X-Extra": "1"})
	c := newTestClient(t, Config{BaseURL: srv.URL}, WithPolicies(extra))

	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	policies := c.Pipeline().Policies()
	if _, ok := policies[len(policies)-1].(*policy.HTTPLogging); !ok {
		t.Error("expected HTTP logging to be the innermost policy")
	}
}

func TestClient_DoStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher := w.(http.Flusher)
		for i := 0; i < 3; i++ {
			fmt.Fprintf(w, "{\"n\":%d}\n", i)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})

	stream, err := c.DoStream(context.Background(), Request{Method: http.MethodGet, Path: "/events"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	body, err := io.ReadAll(stream.Body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if strings.Count(string(body), "\n") != 3 {
		t.Errorf("expected 3 lines, got %q", body)
	}
	if stream.Header.Get("Content-Type") != "application/x-ndjson" {
		t.Errorf("unexpected content type %q", stream.Header.Get("Content-Type"))
	}
}

func TestClient_DoStream_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`unauthorized`))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})

	_, err := c.DoStream(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	var clientErr *Error
	if errors.As(err, &clientErr) && string(clientErr.Body) != "unauthorized" {
		t.Errorf("expected error body, got %q", clientErr.Body)
	}
}

func TestClient_Do_StringBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "text/plain" {
			t.Errorf("expected text/plain, got %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "hello" {
			t.Errorf("expected hello, got %s", string(body))
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})

	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/",
		Body:   "hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_ReaderBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != "streamed" {
			t.Errorf("expected streamed, got %s", string(body))
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})

	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPut,
		Path:   "/",
		Body:   strings.NewReader("streamed"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_Replay(t *testing.T) {
	rec := testutil.NewRecorder(t, "client_replay")
	c := newTestClient(t, Config{BaseURL: "http://api.example.test"}, WithRoundTripper(rec))

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/v1/items",
		Query:  map[string]string{"page": "2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded JSON, got %#v", resp.Data)
	}
	items, _ := data["items"].([]any)
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %v", data["items"])
	}
	if resp.Header.Get("x-ms-request-id") != "srv-1" {
		t.Errorf("expected replayed header, got %q", resp.Header.Get("x-ms-request-id"))
	}

	resp, err = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/v1/report"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, ok := resp.Data.(*etree.Document)
	if !ok {
		t.Fatalf("expected XML document, got %#v", resp.Data)
	}
	if el := doc.FindElement("//total"); el == nil || el.Text() != "42" {
		t.Errorf("expected total 42, got %v", el)
	}
}

func TestResponse_Helpers(t *testing.T) {
	tests := []struct {
		code      int
		isSuccess bool
		isError   bool
	}{
		{200, true, false},
		{201, true, false},
		{301, false, false},
		{404, false, true},
		{500, false, true},
	}
	for _, tt := range tests {
		r := &Response{StatusCode: tt.code}
		if r.IsSuccess() != tt.isSuccess {
			t.Errorf("IsSuccess(%d) = %v, want %v", tt.code, r.IsSuccess(), tt.isSuccess)
		}
		if r.IsError() != tt.isError {
			t.Errorf("IsError(%d) = %v, want %v", tt.code, r.IsError(), tt.isError)
		}
	}
}
