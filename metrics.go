package nbsite

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics records build outcomes as Prometheus metrics.
// A nil *Metrics records nothing.
type Metrics struct {
	generated  *prom.CounterVec
	skipped    *prom.CounterVec
	failures   *prom.CounterVec
	duration   *prom.HistogramVec
	collisions prom.Counter
}

// NewMetrics creates the build metrics and registers them with reg.
// Create it once per process and share it across builds.
func NewMetrics(reg prom.Registerer) (*Metrics, error) {
	m := &Metrics{
		generated: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "nbsite",
			Name:      "pages_generated_total",
			Help:      "Pages written, by source kind",
		}, []string{"kind"}),
		skipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "nbsite",
			Name:      "entries_skipped_total",
			Help:      "Registry entries skipped, by reason",
		}, []string{"reason"}),
		failures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "nbsite",
			Name:      "conversion_failures_total",
			Help:      "Source documents that failed to convert, by source kind",
		}, []string{"kind"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "nbsite",
			Name:      "conversion_duration_seconds",
			Help:      "Time spent converting one source document",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"}),
		collisions: prom.NewCounter(prom.CounterOpts{
			Namespace: "nbsite",
			Name:      "output_collisions_total",
			Help:      "Pages that overwrote an earlier page in the same run",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prom.Collector{m.generated, m.skipped, m.failures, m.duration, m.collisions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) pageGenerated(kind SourceKind) {
	if m == nil {
		return
	}
	m.generated.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) entrySkipped(status PageStatus) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) conversionFailed(kind SourceKind) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) observeConversion(kind SourceKind, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

func (m *Metrics) outputCollision() {
	if m == nil {
		return
	}
	m.collisions.Inc()
}
