// Package metrics exposes adapter statistics to Prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironsheep/annotated-augment/internal/adapter"
)

// Metrics holds the collectors on a private registry. It implements
// adapter.Recorder and is safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	samples      prometheus.Counter
	instancesIn  prometheus.Counter
	instancesOut prometheus.Counter
	dropped      *prometheus.CounterVec
	failures     *prometheus.CounterVec
}

var _ adapter.Recorder = (*Metrics)(nil)

// New creates a Metrics instance with its collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "augment_samples_total",
			Help: "Samples transformed successfully",
		}),
		instancesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "augment_instances_in_total",
			Help: "Annotated instances received",
		}),
		instancesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "augment_instances_out_total",
			Help: "Annotated instances that survived augmentation",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "augment_instances_dropped_total",
			Help: "Instances dropped during reconciliation, by reason",
		}, []string{"reason"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "augment_failures_total",
			Help: "Failed transform calls, by error class",
		}, []string{"class"}),
	}

	m.registry.MustRegister(m.samples, m.instancesIn, m.instancesOut, m.dropped, m.failures)
	return m
}

// ObserveApply counts one successful call.
func (m *Metrics) ObserveApply(in, out int) {
	m.samples.Inc()
	m.instancesIn.Add(float64(in))
	m.instancesOut.Add(float64(out))
}

// ObserveDrop counts n instances dropped for reason.
func (m *Metrics) ObserveDrop(reason string, n int) {
	m.dropped.WithLabelValues(reason).Add(float64(n))
}

// ObserveError counts a failed call under its error class.
func (m *Metrics) ObserveError(err error) {
	m.failures.WithLabelValues(Class(err)).Inc()
}

// Class names the error class used as the failures label.
func Class(err error) string {
	var (
		cfgErr    *adapter.ConfigurationError
		icErr     *adapter.InternalConsistencyError
		sampleErr *adapter.SampleError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &icErr):
		return "internal_consistency"
	case errors.As(err, &sampleErr):
		return "sample"
	}
	return "other"
}

// Registry returns the private registry, for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
