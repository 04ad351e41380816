package factormerge

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/factormerge/merge"
)

// MetricsCollector receives one call per tool phase.
// Implement this interface to integrate with monitoring systems like Prometheus;
// see the metrics package for a ready-made implementation.
type MetricsCollector interface {
	// RecordLoad is called after each model load. role is "a" or "b".
	RecordLoad(role string, duration time.Duration, err error)

	// RecordMerge is called after each merge. stats is the zero value
	// when err is not nil.
	RecordMerge(stats merge.Stats, err error)

	// RecordSave is called after the merged model has been written.
	RecordSave(duration time.Duration, err error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordMerge(merge.Stats, error)          {}
func (NoopMetricsCollector) RecordSave(time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicMetricsCollector struct {
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadTotalNanos atomic.Int64
	MergeCount     atomic.Int64
	MergeErrors    atomic.Int64
	MergeNanos     atomic.Int64
	SharedIDs      atomic.Int64
	MergedRows     atomic.Int64
	SaveCount      atomic.Int64
	SaveErrors     atomic.Int64
	SaveTotalNanos atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ string, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordMerge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMerge(stats merge.Stats, err error) {
	b.MergeCount.Add(1)
	if err != nil {
		b.MergeErrors.Add(1)
		return
	}
	b.MergeNanos.Add(stats.Duration.Nanoseconds())
	b.SharedIDs.Add(int64(stats.SharedIDs))
	b.MergedRows.Add(int64(stats.Rows))
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:    b.LoadCount.Load(),
		LoadErrors:   b.LoadErrors.Load(),
		LoadAvgNanos: avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		MergeCount:   b.MergeCount.Load(),
		MergeErrors:  b.MergeErrors.Load(),
		MergeNanos:   b.MergeNanos.Load(),
		SharedIDs:    b.SharedIDs.Load(),
		MergedRows:   b.MergedRows.Load(),
		SaveCount:    b.SaveCount.Load(),
		SaveErrors:   b.SaveErrors.Load(),
		SaveAvgNanos: avg(b.SaveTotalNanos.Load(), b.SaveCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount    int64
	LoadErrors   int64
	LoadAvgNanos int64
	MergeCount   int64
	MergeErrors  int64
	MergeNanos   int64
	SharedIDs    int64
	MergedRows   int64
	SaveCount    int64
	SaveErrors   int64
	SaveAvgNanos int64
}
