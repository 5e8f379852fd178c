package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option tunes the collectors built by Configure.
type Option func(*Manager)

// WithNamespace replaces the "codex" prefix of every metric name.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem replaces the "collection" part of every metric name.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithBuckets sets the buckets shared by the latency histograms.
func WithBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithNode labels every series with node=name so several players' services
// can be told apart on one Prometheus.
func WithNode(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.constLabels = prometheus.Labels{"node": name}
		}
	}
}

func withRegisterer(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}
