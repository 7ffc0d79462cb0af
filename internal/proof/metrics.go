package proof

import "github.com/prometheus/client_golang/prometheus"

// MetricsRecorder receives one event per protocol operation. Implementations
// must be safe for concurrent use.
type MetricsRecorder interface {
	// RecordProve is called once per Prove with the result:
	// "proved", "unauthenticated", or "error".
	RecordProve(result string)
	// RecordTest is called once per Test with the outcome code.
	RecordTest(code string)
}

// NopMetrics discards all events. The default when no recorder is
// configured.
type NopMetrics struct{}

func (NopMetrics) RecordProve(string) {}
func (NopMetrics) RecordTest(string)  {}

// PrometheusMetrics exports protocol outcome counters.
type PrometheusMetrics struct {
	proves *prometheus.CounterVec
	tests  *prometheus.CounterVec
}

// NewPrometheusMetrics creates and registers the protocol counters with
// the given registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		proves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mld_agreement_proofs_total",
			Help: "Proof commitments attempted, by result.",
		}, []string{"result"}),
		tests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mld_agreement_tests_total",
			Help: "Agreement tests performed, by outcome code.",
		}, []string{"code"}),
	}
	if err := reg.Register(m.proves); err != nil {
		return nil, err
	}
	if err := reg.Register(m.tests); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordProve implements MetricsRecorder.
func (m *PrometheusMetrics) RecordProve(result string) {
	m.proves.WithLabelValues(result).Inc()
}

// RecordTest implements MetricsRecorder.
func (m *PrometheusMetrics) RecordTest(code string) {
	m.tests.WithLabelValues(code).Inc()
}
