// Package metrics records the counters of a dataset build and writes them in
// the Prometheus textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/japaniel/veselinovanegex/pkg/negex"
)

// Metrics holds Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	rowsTotal          prometheus.Counter
	valuesTotal        *prometheus.CounterVec
	unmatchedCodes     *prometheus.CounterVec
	citationsTotal     *prometheus.CounterVec
	unmatchedLanguoids prometheus.Counter
	sourcesEmitted     prometheus.Gauge
	buildDuration      prometheus.Gauge
}

// New creates the metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "negex_rows_total",
			Help: "Raw survey rows processed",
		}),
		valuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "negex_values_total",
				Help: "Values emitted per parameter",
			},
			[]string{"parameter"},
		),
		unmatchedCodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "negex_unmatched_codes_total",
				Help: "Values without a code dictionary entry, per parameter",
			},
			[]string{"parameter"},
		),
		citationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "negex_citations_total",
				Help: "Citations seen in source fields, by outcome",
			},
			[]string{"outcome"},
		),
		unmatchedLanguoids: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "negex_unmatched_languoids_total",
			Help: "Languages without a Glottolog languoid",
		}),
		sourcesEmitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "negex_sources",
			Help: "Bibliography entries written to sources.bib",
		}),
		buildDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "negex_build_duration_seconds",
			Help: "Wall time of the last makecldf run",
		}),
	}

	m.registry.MustRegister(
		m.rowsTotal,
		m.valuesTotal,
		m.unmatchedCodes,
		m.citationsTotal,
		m.unmatchedLanguoids,
		m.sourcesEmitted,
		m.buildDuration,
	)
	return m
}

// Record adds the counters of a finished build.
func (m *Metrics) Record(ds *negex.Dataset, took time.Duration) {
	m.rowsTotal.Add(float64(ds.Stats.Rows))
	for _, v := range ds.Values {
		m.valuesTotal.WithLabelValues(v.ParameterID).Inc()
	}
	for param, n := range ds.Stats.UnmatchedCodes {
		m.unmatchedCodes.WithLabelValues(param).Add(float64(n))
	}
	c := ds.Stats.Citations
	m.citationsTotal.WithLabelValues("resolved").Add(float64(c.Resolved))
	m.citationsTotal.WithLabelValues("unresolved").Add(float64(c.Unresolved))
	m.citationsTotal.WithLabelValues("personal").Add(float64(c.Personal))
	m.unmatchedLanguoids.Add(float64(ds.Stats.UnmatchedLanguoids))
	m.sourcesEmitted.Set(float64(len(ds.Sources)))
	m.buildDuration.Set(took.Seconds())
}

// WriteFile writes all metrics to path in the textfile collector format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
