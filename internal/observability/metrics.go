package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Metrics records pipeline counters through an OpenTelemetry meter exported
// to a private Prometheus registry. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry      *prometheus.Registry
	meterProvider *metric.MeterProvider

	scans         otelmetric.Int64Counter
	demoFallbacks otelmetric.Int64Counter
	fetchFailures otelmetric.Int64Counter
	scanDuration  otelmetric.Float64Histogram
}

func New(serviceName string) (*Metrics, error) {
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	m := &Metrics{registry: reg, meterProvider: provider}
	if m.scans, err = meter.Int64Counter("scan.runs",
		otelmetric.WithDescription("Scans finished, by terminal status")); err != nil {
		return nil, err
	}
	if m.demoFallbacks, err = meter.Int64Counter("scan.demo_substitutions",
		otelmetric.WithDescription("Scans that fell back to synthetic pages")); err != nil {
		return nil, err
	}
	if m.fetchFailures, err = meter.Int64Counter("fetch.failures",
		otelmetric.WithDescription("Homepage fetch failures, by error code")); err != nil {
		return nil, err
	}
	if m.scanDuration, err = meter.Float64Histogram("scan.duration",
		otelmetric.WithDescription("Pipeline wall-clock duration"),
		otelmetric.WithUnit("s")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) RecordScan(ctx context.Context, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	m.scans.Add(ctx, 1, attrs)
	m.scanDuration.Record(ctx, d.Seconds(), attrs)
}

func (m *Metrics) RecordDemoSubstitution(ctx context.Context) {
	if m == nil {
		return
	}
	m.demoFallbacks.Add(ctx, 1)
}

func (m *Metrics) RecordFetchFailure(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.fetchFailures.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("code", code)))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.meterProvider.Shutdown(ctx)
}
