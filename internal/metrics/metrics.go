// SPDX-License-Identifier: MPL-2.0

// Package metrics records counters and timings of a buildconv run on a
// private Prometheus registry and writes them out in the text exposition
// format, for node_exporter's textfile collector or CI artifacts.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "buildconv"

// Probe results recorded by LocateProbe.
const (
	ProbeFound   = "found"
	ProbeMissing = "missing"
	ProbeError   = "error"
	ProbeSkipped = "skipped"
)

// Recorder holds the run's collectors. A nil *Recorder discards everything,
// so callers never need to check whether metrics are enabled.
type Recorder struct {
	registry *prometheus.Registry

	modulesResolved    prometheus.Counter
	constraintsEmitted *prometheus.CounterVec
	resolutionDuration prometheus.Histogram
	locateProbes       *prometheus.CounterVec
}

// New creates a Recorder on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		modulesResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "modules_resolved_total",
			Help:      "Modules whose effective configuration was resolved.",
		}),
		constraintsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "constraints_emitted_total",
			Help:      "Version constraints emitted per platform module.",
		}, []string{"platform"}),
		resolutionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Wall time of a full workspace evaluation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		locateProbes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locate_probes_total",
			Help:      "Repository lookups performed by verify, by result.",
		}, []string{"result"}),
	}
	r.registry.MustRegister(r.modulesResolved, r.constraintsEmitted, r.resolutionDuration, r.locateProbes)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ModuleResolved counts one resolved module.
func (r *Recorder) ModuleResolved() {
	if r == nil {
		return
	}
	r.modulesResolved.Inc()
}

// ConstraintsEmitted adds n constraints generated for platform.
func (r *Recorder) ConstraintsEmitted(platform string, n int) {
	if r == nil {
		return
	}
	r.constraintsEmitted.WithLabelValues(platform).Add(float64(n))
}

// ObserveResolution records the duration of one workspace evaluation.
func (r *Recorder) ObserveResolution(d time.Duration) {
	if r == nil {
		return
	}
	r.resolutionDuration.Observe(d.Seconds())
}

// LocateProbe counts one repository lookup with the given result.
func (r *Recorder) LocateProbe(result string) {
	if r == nil {
		return
	}
	r.locateProbes.WithLabelValues(result).Inc()
}

// WriteTextfile atomically writes the registry to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
