package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Metrics holds the Prometheus collectors shared by the recommendation
// services. Upstream failures are counted per source so operators can tell a
// degraded search index apart from a broken interaction store.
type Metrics struct {
	UpstreamFailures *prometheus.CounterVec
	FusionDuration   prometheus.Histogram
	RebuildDuration  prometheus.Histogram
	SnapshotUsers    prometheus.Gauge
	SnapshotItems    prometheus.Gauge
	SnapshotNNZ      prometheus.Gauge
	SnapshotBuiltAt  prometheus.Gauge
}

func NewMetrics(logger *logrus.Logger) *Metrics {
	m := &Metrics{
		UpstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_upstream_failures_total",
			Help: "Failed calls to external recommendation sources, by source",
		}, []string{"source"}),
		FusionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommendation_fusion_duration_seconds",
			Help:    "Wall time of hybrid fusion requests",
			Buckets: prometheus.DefBuckets,
		}),
		RebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommendation_snapshot_rebuild_duration_seconds",
			Help:    "Wall time of matrix and similarity rebuilds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),
		SnapshotUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recommendation_snapshot_users",
			Help: "Distinct users in the active snapshot",
		}),
		SnapshotItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recommendation_snapshot_items",
			Help: "Distinct items in the active snapshot",
		}),
		SnapshotNNZ: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recommendation_snapshot_interactions",
			Help: "Nonzero user-item pairs in the active snapshot",
		}),
		SnapshotBuiltAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recommendation_snapshot_built_at_seconds",
			Help: "Unix timestamp of the active snapshot build",
		}),
	}

	collectors := []prometheus.Collector{
		m.UpstreamFailures, m.FusionDuration, m.RebuildDuration,
		m.SnapshotUsers, m.SnapshotItems, m.SnapshotNNZ, m.SnapshotBuiltAt,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				logger.WithError(err).Warn("Failed to register metric")
			}
		}
	}

	return m
}

// ObserveFusion records one fusion request duration.
func (m *Metrics) ObserveFusion(start time.Time) {
	if m == nil {
		return
	}
	m.FusionDuration.Observe(time.Since(start).Seconds())
}

// CountUpstreamFailure records a failed external source call.
func (m *Metrics) CountUpstreamFailure(source string) {
	if m == nil {
		return
	}
	m.UpstreamFailures.WithLabelValues(source).Inc()
}
