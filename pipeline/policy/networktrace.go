package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kbukum/httppipe/logger"
	"github.com/kbukum/httppipe/pipeline"
)

// NetworkTraceLogger is the registry name of the default network trace logger.
const NetworkTraceLogger = "httppipe.network"

var attachmentPattern = regexp.MustCompile(`(?i)^attachment; ?filename=["\w.]+`)

// NetworkTrace writes full request and response traces at debug level,
// including text bodies. It is off unless enabled on the policy or with
// pipeline.WithLogging for a call.
type NetworkTrace struct {
	pipeline.BasePolicy
	log     *logger.Logger
	enabled bool
}

// NewNetworkTrace creates the policy. A nil log uses the logger registered
// as NetworkTraceLogger.
func NewNetworkTrace(log *logger.Logger, enabled bool) *NetworkTrace {
	return &NetworkTrace{log: log, enabled: enabled}
}

func (p *NetworkTrace) activeLogger() *logger.Logger {
	if p.log != nil {
		return p.log
	}
	return logger.Get(NetworkTraceLogger)
}

func (p *NetworkTrace) OnRequest(req *pipeline.Request) error {
	if v, ok := req.Context.Options.PopBool(pipeline.OptionLoggingEnable); ok {
		req.Context.Set(pipeline.KeyLoggingEnable, v)
	}
	enabled, _ := req.Context.SetDefault(pipeline.KeyLoggingEnable, p.enabled).(bool)

	log := p.activeLogger()
	if !enabled || !log.Enabled(logger.LevelDebug) {
		return nil
	}

	msg, err := safeCompose(func() (string, error) { return composeRequestTrace(req), nil })
	if err != nil {
		log.Debug(fmt.Sprintf("Failed to log request: %v", err))
		return nil
	}
	log.Debug(msg)
	return nil
}

func (p *NetworkTrace) OnResponse(req *pipeline.Request, resp *pipeline.Response) error {
	enabled, _ := req.Context.Value(pipeline.KeyLoggingEnable)
	if on, _ := enabled.(bool); !on {
		return nil
	}
	log := p.activeLogger()
	if !log.Enabled(logger.LevelDebug) {
		return nil
	}

	msg, err := safeCompose(func() (string, error) { return composeResponseTrace(req, resp) })
	if err != nil {
		log.Debug(fmt.Sprintf("Failed to log response: %v", err))
		return nil
	}
	log.Debug(msg)
	return nil
}

func composeRequestTrace(req *pipeline.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request URL: '%s'", req.URL)
	fmt.Fprintf(&b, "\nRequest method: '%s'", req.Method)
	b.WriteString("\nRequest headers:")
	req.Header.Range(func(name, value string) bool {
		fmt.Fprintf(&b, "\n    '%s': '%s'", name, value)
		return true
	})
	b.WriteString("\nRequest body:")
	switch {
	case req.IsStream():
		b.WriteString("\nFile upload")
	case len(req.Body) > 0:
		b.WriteString("\n" + string(req.Body))
	default:
		b.WriteString("\nThis request has no body")
	}
	return b.String()
}

func composeResponseTrace(req *pipeline.Request, resp *pipeline.Response) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Response status: '%d'", resp.StatusCode)
	b.WriteString("\nResponse headers:")
	resp.Header.Range(func(name, value string) bool {
		fmt.Fprintf(&b, "\n    '%s': '%s'", name, value)
		return true
	})
	b.WriteString("\nResponse content:")

	contentType := resp.ContentType()
	disposition := resp.Header.Get("Content-Disposition")
	switch {
	case disposition != "" && attachmentPattern.MatchString(disposition):
		_, filename, _ := strings.Cut(disposition, "=")
		b.WriteString("\nFile attachments: " + filename)
	case strings.HasSuffix(contentType, "octet-stream"):
		b.WriteString("\nBody contains binary data.")
	case strings.HasPrefix(contentType, "image"):
		b.WriteString("\nBody contains image data.")
	case req.Context.Stream():
		b.WriteString("\nBody is streamable.")
	default:
		text, err := resp.Text(responseEncoding(req))
		if err != nil {
			return "", err
		}
		b.WriteString("\n" + text)
	}
	return b.String(), nil
}

// safeCompose runs compose and turns a panic into an error.
func safeCompose(compose func() (string, error)) (msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while composing log record: %v", r)
		}
	}()
	return compose()
}

func responseEncoding(req *pipeline.Request) string {
	v, _ := req.Context.Value(pipeline.KeyResponseEncoding)
	s, _ := v.(string)
	return s
}
