package meter

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ineyio/llmselector"
)

// PrometheusMeter exports selection metrics.
type PrometheusMeter struct {
	selections *prometheus.CounterVec
	exactPass  prometheus.Counter
	estimated  prometheus.Histogram
}

var _ llmselector.Meter = (*PrometheusMeter)(nil)

// NewPrometheusMeter creates the collectors and registers them with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewPrometheusMeter(reg prometheus.Registerer) (*PrometheusMeter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMeter{
		selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmselector_selections_total",
				Help: "Total backend selections by model, streaming and fallback",
			},
			[]string{"model", "streaming", "fallback"},
		),
		exactPass: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "llmselector_exact_passes_total",
				Help: "Selections that needed exact tokenization",
			},
		),
		estimated: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "llmselector_estimated_tokens",
				Help:    "Estimated total tokens per selection",
				Buckets: prometheus.ExponentialBuckets(256, 2, 12),
			},
		),
	}

	for _, c := range []prometheus.Collector{m.selections, m.exactPass, m.estimated} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMeter) OnSelect(e llmselector.SelectEvent) {
	m.selections.WithLabelValues(e.Model, strconv.FormatBool(e.Streaming), strconv.FormatBool(e.Fallback)).Inc()
	if e.ExactPass {
		m.exactPass.Inc()
	}
	m.estimated.Observe(float64(e.EstimatedTokens))
}
