// Package metrics exports factormerge run metrics in the Prometheus format.
package metrics

import (
	"time"

	"github.com/hupe1980/factormerge"
	"github.com/hupe1980/factormerge/merge"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "factormerge"

// Prometheus implements factormerge.MetricsCollector on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	opLatency *prometheus.HistogramVec
	ops       *prometheus.CounterVec
	sharedIDs prometheus.Gauge
	overlap   prometheus.Gauge
	rows      prometheus.Gauge
	columns   prometheus.Gauge
	outputDim prometheus.Gauge
	lastRun   prometheus.Gauge
}

var _ factormerge.MetricsCollector = (*Prometheus)(nil)

// NewPrometheus creates a collector with its own registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of load, merge and save operations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"op", "status"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operations performed, by outcome.",
		}, []string{"op", "status"}),
		sharedIDs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "merge_shared_ids",
			Help:      "Ids present in both model A's columns and model B's rows in the last merge.",
		}),
		overlap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "merge_overlap_ratio",
			Help:      "Shared ids divided by the smaller id space in the last merge.",
		}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "merge_rows",
			Help:      "Row factors in the last merged model.",
		}),
		columns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "merge_columns",
			Help:      "Column factors in the last merged model.",
		}),
		outputDim: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "merge_output_dimension",
			Help:      "Vector length of the last merged model.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful save.",
		}),
	}

	p.registry.MustRegister(
		p.opLatency, p.ops,
		p.sharedIDs, p.overlap, p.rows, p.columns, p.outputDim,
		p.lastRun,
	)
	return p
}

// Registry exposes the underlying registry, e.g. for promhttp.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (p *Prometheus) observe(op string, d time.Duration, err error) {
	s := status(err)
	p.opLatency.WithLabelValues(op, s).Observe(d.Seconds())
	p.ops.WithLabelValues(op, s).Inc()
}

// RecordLoad implements factormerge.MetricsCollector.
func (p *Prometheus) RecordLoad(role string, d time.Duration, err error) {
	p.observe("load_"+role, d, err)
}

// RecordMerge implements factormerge.MetricsCollector.
func (p *Prometheus) RecordMerge(stats merge.Stats, err error) {
	p.observe("merge", stats.Duration, err)
	if err != nil {
		return
	}
	p.sharedIDs.Set(float64(stats.SharedIDs))
	p.overlap.Set(stats.Overlap)
	p.rows.Set(float64(stats.Rows))
	p.columns.Set(float64(stats.Columns))
	p.outputDim.Set(float64(stats.OutputDim))
}

// RecordSave implements factormerge.MetricsCollector.
func (p *Prometheus) RecordSave(d time.Duration, err error) {
	p.observe("save", d, err)
	if err == nil {
		p.lastRun.SetToCurrentTime()
	}
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node_exporter textfile collector. The file is replaced atomically.
func (p *Prometheus) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}
