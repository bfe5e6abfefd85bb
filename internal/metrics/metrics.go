// Package metrics exports request metrics in the Prometheus text format.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

var (
	methodKey = attribute.Key("method")
	routeKey  = attribute.Key("route")
	statusKey = attribute.Key("status")
)

// durationBoundaries are the histogram buckets of request latency, in ms.
var durationBoundaries = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

type Metrics struct {
	exporter *prometheus.Exporter

	requests metric.Int64Counter
	duration metric.Float64ValueRecorder
	pings    metric.Int64Counter
}

// New builds a pull exporter and the instruments of the service.
func New(service string) (*Metrics, error) {
	config := prometheus.Config{DefaultHistogramBoundaries: durationBoundaries}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)
	exporter, err := prometheus.New(config, c)
	if err != nil {
		return nil, fmt.Errorf("initialize prometheus exporter: %w", err)
	}

	meter := metric.Must(exporter.MeterProvider().Meter(service))

	return &Metrics{
		exporter: exporter,
		requests: meter.NewInt64Counter(
			"http/server/request_count",
			metric.WithDescription("Count of handled requests, by HTTP method, route and response status"),
		),
		duration: meter.NewFloat64ValueRecorder(
			"http/server/duration_ms",
			metric.WithDescription("Request latency in milliseconds, by HTTP method, route and response status"),
		),
		pings: meter.NewInt64Counter(
			"http/client/completed_count",
			metric.WithDescription("Count of completed pings"),
		),
	}, nil
}

// MeterProvider is handed to otel's global registry by main.
func (m *Metrics) MeterProvider() metric.MeterProvider {
	return m.exporter.MeterProvider()
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return m.exporter
}

// Ping counts one completed ping.
func (m *Metrics) Ping(ctx context.Context) {
	m.pings.Add(ctx, 1, attribute.String("status", "200"))
}

// Middleware records every request once the handler returns. The route is
// the matched chi pattern so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		labels := []attribute.KeyValue{
			methodKey.String(r.Method),
			routeKey.String(route),
			statusKey.String(strconv.Itoa(status)),
		}
		m.requests.Add(r.Context(), 1, labels...)
		m.duration.Record(r.Context(), float64(time.Since(start))/float64(time.Millisecond), labels...)
	})
}
