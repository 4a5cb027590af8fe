// Package metrics exposes the session service's OpenTelemetry instruments through
// a Prometheus scrape endpoint: per-route HTTP counters labelled with the session
// outcome, and auth/user operation counters recorded by the use case decorators.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// DefaultNamespace prefixes every metric name when no namespace is configured.
const DefaultNamespace = "sessions"

// Provider owns the meter provider, its Prometheus registry and the namespace
// the service's instruments are created under.
type Provider struct {
	namespace     string
	meterProvider *metric.MeterProvider
	exporter      *promexporter.Exporter
	registry      *prometheus.Registry
}

// NewProvider creates a Prometheus backed provider. An empty namespace falls
// back to DefaultNamespace.
func NewProvider(namespace string) (*Provider, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	return &Provider{
		namespace:     namespace,
		meterProvider: metric.NewMeterProvider(metric.WithReader(exporter)),
		exporter:      exporter,
		registry:      registry,
	}, nil
}

// Namespace returns the metric name prefix.
func (p *Provider) Namespace() string {
	return p.namespace
}

// Handler serves the registry in Prometheus exposition format at /metrics.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// MeterProvider returns the OpenTelemetry meter provider.
func (p *Provider) MeterProvider() *metric.MeterProvider {
	return p.meterProvider
}

// HTTPMiddleware returns the request metrics middleware bound to this provider's namespace.
func (p *Provider) HTTPMiddleware() gin.HandlerFunc {
	return HTTPMetricsMiddleware(p.meterProvider, p.namespace)
}

// BusinessMetrics returns the operation recorder bound to this provider's namespace.
func (p *Provider) BusinessMetrics() (BusinessMetrics, error) {
	return NewBusinessMetrics(p.meterProvider, p.namespace)
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
