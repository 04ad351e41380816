package factormerge

import (
	"github.com/hupe1980/factormerge/merge"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	mergeOptions     []merge.Option
}

// Option configures a Tool.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics sink.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithMergeOptions forwards options to the merger, e.g. merge.WithWorkers.
func WithMergeOptions(opts ...merge.Option) Option {
	return func(o *options) {
		o.mergeOptions = append(o.mergeOptions, opts...)
	}
}
