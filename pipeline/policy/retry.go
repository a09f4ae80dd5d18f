package policy

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/kbukum/httppipe/errors"
	"github.com/kbukum/httppipe/logger"
	"github.com/kbukum/httppipe/pipeline"
	"github.com/kbukum/httppipe/resilience"
)

// RetryLogger is the registry name of the retry logger.
const RetryLogger = "httppipe.retry"

// DefaultRetryStatusCodes are the response statuses that are retried.
var DefaultRetryStatusCodes = []int{
	http.StatusRequestTimeout,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Retry re-sends a request through the rest of the chain on transport
// failures and retryable statuses. Every attempt shares the call's Context,
// so options consumed on the first attempt stay consumed and pinned
// annotations are reused. Requests with a streamed body are sent once.
type Retry struct {
	pipeline.BasePolicy
	cfg      resilience.RetryConfig
	statuses map[int]struct{}
}

// NewRetry creates the policy. With no status codes DefaultRetryStatusCodes
// are used.
func NewRetry(cfg resilience.RetryConfig, statusCodes ...int) *Retry {
	if len(statusCodes) == 0 {
		statusCodes = DefaultRetryStatusCodes
	}
	statuses := make(map[int]struct{}, len(statusCodes))
	for _, code := range statusCodes {
		statuses[code] = struct{}{}
	}
	return &Retry{cfg: cfg, statuses: statuses}
}

// statusError marks a response whose status asks for another attempt.
type statusError struct {
	resp *pipeline.Response
}

func (e *statusError) Error() string {
	return fmt.Sprintf("retryable response status %d", e.resp.StatusCode)
}

func (p *Retry) Send(req *pipeline.Request, next pipeline.Transport) (*pipeline.Response, error) {
	cfg := p.cfg
	if req.IsStream() {
		cfg.MaxAttempts = 1
	}
	cfg.RetryIf = p.shouldRetry
	cfg.DelayFor = retryAfterDelay

	log := logger.Get(RetryLogger)
	onRetry := p.cfg.OnRetry
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		var se *statusError
		if errors.As(err, &se) {
			_ = se.resp.Close()
		}
		if log.Enabled(logger.LevelDebug) {
			log.Debug("retrying request", logger.Fields(
				logger.FieldMethod, req.Method,
				logger.FieldURL, req.URL.Redacted(),
				logger.FieldAttempt, attempt,
				logger.FieldError, err.Error(),
				"backoff_ms", backoff.Milliseconds(),
			))
		}
		if onRetry != nil {
			onRetry(attempt, err, backoff)
		}
	}

	resp, err := resilience.Retry(req.Ctx(), cfg, func(attempt int) (*pipeline.Response, error) {
		req.Context.Set(pipeline.KeyRetryAttempt, attempt)
		resp, err := next.Send(req)
		if err != nil {
			return nil, err
		}
		if _, ok := p.statuses[resp.StatusCode]; ok {
			return resp, &statusError{resp: resp}
		}
		return resp, nil
	})

	var se *statusError
	if errors.As(err, &se) {
		return se.resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (p *Retry) shouldRetry(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return true
	}
	var decodeErr *pipeline.DecodeError
	if errors.As(err, &decodeErr) {
		return false
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Retryable
	}
	return resilience.DefaultRetryIf(err)
}

// retryAfterDelay reads the server-requested delay from a retryable
// response. Millisecond headers take precedence over Retry-After.
func retryAfterDelay(err error) (time.Duration, bool) {
	var se *statusError
	if !errors.As(err, &se) {
		return 0, false
	}
	return RetryAfter(se.resp.Header, time.Now())
}

// RetryAfter parses retry-after-ms, x-ms-retry-after-ms and Retry-After
// (delta seconds or an HTTP date) relative to now.
func RetryAfter(h *pipeline.Header, now time.Time) (time.Duration, bool) {
	for _, name := range []string{"retry-after-ms", "x-ms-retry-after-ms"} {
		if v, ok := h.Lookup(name); ok {
			if ms, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && ms >= 0 {
				return time.Duration(ms * float64(time.Millisecond)), true
			}
		}
	}

	v, ok := h.Lookup("Retry-After")
	if !ok {
		return 0, false
	}
	v = strings.TrimSpace(v)
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second)), true
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}
