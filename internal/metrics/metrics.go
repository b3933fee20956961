package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "metrograph"

// Metrics groups the collectors exported by both binaries
type Metrics struct {
	Builds        prometheus.Counter
	BuildErrors   prometheus.Counter
	BuildLatency  prometheus.Histogram
	GraphNodes    prometheus.Gauge
	GraphEdges    prometheus.Gauge
	HTTPRequests  *prometheus.CounterVec
	LastBuildTime prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Builds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_total",
			Help:      "Graph builds attempted.",
		}),
		BuildErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_errors_total",
			Help:      "Graph builds that failed.",
		}),
		BuildLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time spent loading and assembling the graph.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the last successfully built graph.",
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edges in the last successfully built graph.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
		LastBuildTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time of the last successful build.",
		}),
	}

	reg.MustRegister(
		m.Builds, m.BuildErrors, m.BuildLatency,
		m.GraphNodes, m.GraphEdges, m.HTTPRequests, m.LastBuildTime)

	return m
}

// ObserveBuild records the outcome of one build. nodes and edges are ignored when
// err is non-nil.
func (m *Metrics) ObserveBuild(started time.Time, nodes, edges int, err error) {
	m.Builds.Inc()
	m.BuildLatency.Observe(time.Since(started).Seconds())
	if err != nil {
		m.BuildErrors.Inc()
		return
	}
	m.GraphNodes.Set(float64(nodes))
	m.GraphEdges.Set(float64(edges))
	m.LastBuildTime.SetToCurrentTime()
}
