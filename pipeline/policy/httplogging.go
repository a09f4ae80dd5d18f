package policy

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kbukum/httppipe/config"
	"github.com/kbukum/httppipe/logger"
	"github.com/kbukum/httppipe/pipeline"
)

const (
	// RedactedPlaceholder replaces every header and query value that is not allowed.
	RedactedPlaceholder = "REDACTED"
	// HTTPLoggingLogger is the registry name of the default HTTP logger.
	HTTPLoggingLogger = "httppipe.http_logging"
)

// DefaultAllowedHeaders are logged verbatim by HTTPLogging.
var DefaultAllowedHeaders = []string{
	"x-ms-request-id",
	"x-ms-client-request-id",
	"x-ms-return-client-request-id",
	"x-ms-error-code",
	"traceparent",
	"Accept",
	"Cache-Control",
	"Connection",
	"Content-Length",
	"Content-Type",
	"Date",
	"ETag",
	"Expires",
	"If-Match",
	"If-Modified-Since",
	"If-None-Match",
	"If-Unmodified-Since",
	"Last-Modified",
	"Pragma",
	"Request-Id",
	"Retry-After",
	"Server",
	"Transfer-Encoding",
	"User-Agent",
	"WWW-Authenticate",
	"x-vss-e2eid",
	"x-msedge-ref",
}

// HTTPLogging logs requests and responses at info level with every header
// and query value outside the allow-lists replaced by RedactedPlaceholder.
// Bodies are reported only as presence markers.
//
// Setting HTTPPIPE_LOGGING_MULTIRECORD to any value switches from one
// multi-line record per message to one record per line.
type HTTPLogging struct {
	pipeline.BasePolicy
	log            *logger.Logger
	allowedHeaders map[string]struct{}
	allowedQuery   map[string]struct{}
	env            *config.Env
}

// NewHTTPLogging creates the policy. A nil log uses the logger registered
// as HTTPLoggingLogger. Calls can override it with pipeline.WithLogger.
func NewHTTPLogging(log *logger.Logger) *HTTPLogging {
	p := &HTTPLogging{
		log:            log,
		allowedHeaders: make(map[string]struct{}, len(DefaultAllowedHeaders)),
		allowedQuery:   make(map[string]struct{}),
		env:            config.NewEnv(config.EnvLoggingMultiRecord),
	}
	p.AllowHeader(DefaultAllowedHeaders...)
	return p
}

// AllowHeader adds header names to the allow-list. Not safe to call while
// requests are in flight.
func (p *HTTPLogging) AllowHeader(names ...string) {
	for _, n := range names {
		p.allowedHeaders[strings.ToLower(n)] = struct{}{}
	}
}

// AllowQueryParam adds query parameter names to the allow-list. Not safe to
// call while requests are in flight.
func (p *HTTPLogging) AllowQueryParam(names ...string) {
	for _, n := range names {
		p.allowedQuery[strings.ToLower(n)] = struct{}{}
	}
}

// RedactHeader returns value if name is allowed, else the placeholder.
func (p *HTTPLogging) RedactHeader(name, value string) string {
	if _, ok := p.allowedHeaders[strings.ToLower(name)]; ok {
		return value
	}
	return RedactedPlaceholder
}

// RedactQueryParam returns value if name is allowed, else the placeholder.
func (p *HTTPLogging) RedactQueryParam(name, value string) string {
	if _, ok := p.allowedQuery[strings.ToLower(name)]; ok {
		return value
	}
	return RedactedPlaceholder
}

// RedactURL returns u with disallowed query values replaced. Parameter
// order, duplicates, blank values and each key's encoding are kept.
// Passwords in user info are masked.
func (p *HTTPLogging) RedactURL(u *url.URL) string {
	c := *u
	if c.RawQuery != "" {
		pairs := strings.Split(c.RawQuery, "&")
		out := make([]string, 0, len(pairs))
		for _, pair := range pairs {
			if pair == "" {
				continue
			}
			key, value, _ := strings.Cut(pair, "=")
			name, err := url.QueryUnescape(key)
			if err != nil {
				name = key
			}
			out = append(out, key+"="+p.RedactQueryParam(name, value))
		}
		c.RawQuery = strings.Join(out, "&")
	}
	return c.Redacted()
}

// resolveLogger pins the call's logger on first use so retries reuse it.
func (p *HTTPLogging) resolveLogger(req *pipeline.Request) *logger.Logger {
	candidate := p.log
	if v, ok := req.Context.Options.Pop(pipeline.OptionLogger); ok {
		if l, ok := v.(*logger.Logger); ok && l != nil {
			candidate = l
		}
	}
	if candidate == nil {
		candidate = logger.Get(HTTPLoggingLogger)
	}
	pinned, _ := req.Context.SetDefault(pipeline.KeyLogger, candidate).(*logger.Logger)
	if pinned == nil {
		return candidate
	}
	return pinned
}

func (p *HTTPLogging) OnRequest(req *pipeline.Request) error {
	log := p.resolveLogger(req)
	if !log.Enabled(logger.LevelInfo) {
		return nil
	}

	lines, err := safeLines(func() []string { return p.requestLines(req) })
	if err != nil {
		log.Warn(fmt.Sprintf("Failed to log request: %v", err))
		return nil
	}
	p.emit(log, lines)
	return nil
}

func (p *HTTPLogging) OnResponse(req *pipeline.Request, resp *pipeline.Response) error {
	log := p.resolveLogger(req)
	if !log.Enabled(logger.LevelInfo) {
		return nil
	}

	lines, err := safeLines(func() []string { return p.responseLines(resp) })
	if err != nil {
		log.Warn(fmt.Sprintf("Failed to log response: %v", err))
		return nil
	}
	p.emit(log, lines)
	return nil
}

func (p *HTTPLogging) requestLines(req *pipeline.Request) []string {
	lines := []string{
		fmt.Sprintf("Request URL: '%s'", p.RedactURL(req.URL)),
		fmt.Sprintf("Request method: '%s'", req.Method),
		"Request headers:",
	}
	lines = p.appendHeaders(lines, req.Header)
	switch {
	case req.IsStream():
		lines = append(lines, "File upload")
	case len(req.Body) > 0:
		lines = append(lines, "A body is sent with the request")
	default:
		lines = append(lines, "No body was attached to the request")
	}
	return lines
}

func (p *HTTPLogging) responseLines(resp *pipeline.Response) []string {
	lines := []string{
		fmt.Sprintf("Response status: %d", resp.StatusCode),
		"Response headers:",
	}
	return p.appendHeaders(lines, resp.Header)
}

func (p *HTTPLogging) appendHeaders(lines []string, h *pipeline.Header) []string {
	h.Range(func(name, value string) bool {
		lines = append(lines, fmt.Sprintf("    '%s': '%s'", name, p.RedactHeader(name, value)))
		return true
	})
	return lines
}

func (p *HTTPLogging) emit(log *logger.Logger, lines []string) {
	if p.env.Enabled(config.EnvLoggingMultiRecord) {
		for _, line := range lines {
			log.Info(line)
		}
		return
	}
	log.Info(strings.Join(lines, "\n"))
}

func safeLines(compose func() []string) ([]string, error) {
	var lines []string
	_, err := safeCompose(func() (string, error) {
		lines = compose()
		return "", nil
	})
	return lines, err
}
