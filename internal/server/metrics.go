package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joshp123/gopool/internal/connectmypool"
	"github.com/joshp123/gopool/internal/coordinator"
)

// NewRegistry assembles the daemon's Prometheus registry: process and Go
// runtime collectors plus every package's own metrics.
func NewRegistry(extra ...prometheus.Collector) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(connectmypool.MetricsCollectors()...)
	registry.MustRegister(coordinator.MetricsCollectors()...)
	registry.MustRegister(extra...)
	return registry
}

// MetricsHandler exposes the Prometheus registry.
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
