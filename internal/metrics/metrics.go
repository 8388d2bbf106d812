// Package metrics exposes simulation and delivery counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric of a server instance. Each collector owns its
// registry, so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	StepDuration  prometheus.Histogram
	Steps         prometheus.Counter
	Nodes         prometheus.Gauge
	FramesSent    prometheus.Counter
	FramesDropped prometheus.Counter
	Clients       prometheus.Gauge

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates the metrics under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		StepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of one simulation step",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of simulation step batches observed",
		}),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Number of simulated nodes",
		}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Frames delivered to websocket clients",
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Frames dropped for slow or rate-limited clients",
		}),
		Clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected websocket clients",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		c.StepDuration,
		c.Steps,
		c.Nodes,
		c.FramesSent,
		c.FramesDropped,
		c.Clients,
		c.HTTPRequests,
		c.HTTPDuration,
		collectors.NewGoCollector(),
	)
	return c
}

// ObserveStep records one step batch. It satisfies session.Stats.
func (c *Collector) ObserveStep(d time.Duration, nodes int) {
	c.StepDuration.Observe(d.Seconds())
	c.Steps.Inc()
	c.Nodes.Set(float64(nodes))
}

// FrameSent, FrameDropped and ClientsChanged satisfy render.HubStats.
func (c *Collector) FrameSent()           { c.FramesSent.Inc() }
func (c *Collector) FrameDropped()        { c.FramesDropped.Inc() }
func (c *Collector) ClientsChanged(n int) { c.Clients.Set(float64(n)) }

// ObserveRequest records a finished HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
