package report

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maxgio92/perf-class/pkg/classify"
)

const metricsNamespace = "perf_class"

// NewRegistry exposes report entries and run totals as gauges.
func NewRegistry(entries []Entry, totals classify.Totals) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	classCycles := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "class_cycles",
		Help:      "CPU cycles attributed to a class.",
	}, []string{"class"})
	classPercent := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "class_percent",
		Help:      "Share of the denominator cycles attributed to a class.",
	}, []string{"class"})
	traceCycles := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "trace_cycles",
		Help:      "CPU cycles in the trace, by match state.",
	}, []string{"kind"})

	for _, c := range []prometheus.Collector{classCycles, classPercent, traceCycles} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register collector")
		}
	}

	for _, e := range entries {
		// Fallback labels are raw trace symbols; label values must be UTF-8.
		label := strings.ToValidUTF8(e.Label, "\uFFFD")

		cycles, err := classCycles.GetMetricWithLabelValues(label)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid class %q", e.Label)
		}
		cycles.Add(float64(e.Cycles))

		percent, err := classPercent.GetMetricWithLabelValues(label)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid class %q", e.Label)
		}
		percent.Add(e.Percent)
	}
	traceCycles.WithLabelValues("total").Set(float64(totals.Total))
	traceCycles.WithLabelValues("matched").Set(float64(totals.Matched))

	return reg, nil
}

// WritePrometheusTextfile writes the gauges in the text exposition format,
// for the node_exporter textfile collector.
func WritePrometheusTextfile(path string, entries []Entry, totals classify.Totals) error {
	reg, err := NewRegistry(entries, totals)
	if err != nil {
		return err
	}

	return errors.Wrapf(prometheus.WriteToTextfile(path, reg), "failed to write %s", path)
}
