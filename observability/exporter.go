package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/multierr"

	"github.com/benz9527/xrbtree/lib/infra"
)

type MetricsExporterKind string

const (
	NoneMetricsExporter       MetricsExporterKind = "none"
	StdoutMetricsExporter     MetricsExporterKind = "stdout"
	PrometheusMetricsExporter MetricsExporterKind = "prometheus"
)

func ParseMetricsExporterKind(kind string) (MetricsExporterKind, error) {
	switch k := MetricsExporterKind(strings.ToLower(strings.TrimSpace(kind))); k {
	case "", NoneMetricsExporter:
		return NoneMetricsExporter, nil
	case StdoutMetricsExporter, PrometheusMetricsExporter:
		return k, nil
	default:
	}
	return NoneMetricsExporter, infra.NewErrorStack("unknown metrics exporter " + kind)
}

type MetricsExporterConfig struct {
	Kind MetricsExporterKind
	// Stdout exporter only.
	Interval time.Duration
	Timeout  time.Duration
	Writer   io.Writer
	// Prometheus exporter only. Empty means the metrics are not served.
	Addr string
}

// ShutdownFunc flushes and stops the installed exporter.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitMetricsExporter installs the global otel meter provider of kind.
func InitMetricsExporter(cfg MetricsExporterConfig) (ShutdownFunc, error) {
	switch cfg.Kind {
	case StdoutMetricsExporter:
		if cfg.Interval <= 0 {
			cfg.Interval = 10 * time.Second
		}
		if cfg.Timeout <= 0 {
			cfg.Timeout = 5 * time.Second
		}
		if cfg.Writer == nil {
			cfg.Writer = os.Stdout
		}
		return newConsoleMetricsExporter(cfg.Interval, cfg.Timeout, stdoutmetric.WithWriter(cfg.Writer))
	case PrometheusMetricsExporter:
		shutdown, err := newPrometheusMetricsExporter()
		if err != nil || len(cfg.Addr) == 0 {
			return shutdown, err
		}
		return servePrometheusMetrics(cfg.Addr, shutdown), nil
	case NoneMetricsExporter, "":
		return noopShutdown, nil
	default:
	}
	return noopShutdown, infra.NewErrorStack("unknown metrics exporter " + string(cfg.Kind))
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (ShutdownFunc, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "stdout metrics exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter() (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "prometheus metrics exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// MetricsHandler serves the metrics gathered by the prometheus exporter.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func servePrometheusMetrics(addr string, shutdown ShutdownFunc) ShutdownFunc {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			otel.Handle(err)
		}
	}()
	return func(ctx context.Context) error {
		return multierr.Combine(srv.Shutdown(ctx), shutdown(ctx))
	}
}
