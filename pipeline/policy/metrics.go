package policy

import (
	"strconv"
	"time"

	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/kbukum/httppipe/errors"
	"github.com/kbukum/httppipe/observability"
	"github.com/kbukum/httppipe/pipeline"
)

const keyMetricsStart = "metrics_start"

// Metrics records request count, duration and in-flight gauge for every
// attempt that reaches it.
type Metrics struct {
	metrics *observability.ClientMetrics
}

// NewMetrics creates the policy with instruments from meter. A nil meter
// uses the global provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = observability.Meter(observability.InstrumentationName)
	}
	m, err := observability.NewClientMetrics(meter)
	if err != nil {
		return nil, err
	}
	return &Metrics{metrics: m}, nil
}

func (p *Metrics) OnRequest(req *pipeline.Request) error {
	req.Context.Set(keyMetricsStart, time.Now())
	p.metrics.RecordRequestStart(req.Ctx(), req.Method, req.URL.Hostname())
	return nil
}

func (p *Metrics) OnResponse(req *pipeline.Request, resp *pipeline.Response) error {
	errType := ""
	if resp.StatusCode >= 400 {
		errType = strconv.Itoa(resp.StatusCode)
	}
	p.metrics.RecordRequestEnd(req.Ctx(), req.Method, req.URL.Hostname(), resp.StatusCode, errType, p.elapsed(req))
	return nil
}

func (p *Metrics) OnError(req *pipeline.Request, err error) {
	p.metrics.RecordRequestEnd(req.Ctx(), req.Method, req.URL.Hostname(), 0, string(apperrors.CodeOf(err)), p.elapsed(req))
}

func (p *Metrics) elapsed(req *pipeline.Request) time.Duration {
	v, ok := req.Context.Value(keyMetricsStart)
	if !ok {
		return 0
	}
	req.Context.Delete(keyMetricsStart)
	start, ok := v.(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}
