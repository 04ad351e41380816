package merge

import (
	"log/slog"

	"github.com/hupe1980/factormerge/resource"
)

const defaultChunkSize = 1024

type options struct {
	workers    int
	chunkSize  int
	minOverlap float64
	controller *resource.Controller
	logger     *slog.Logger
}

// Option configures a Merger.
type Option func(*options)

// WithWorkers sets the number of goroutines used per phase.
// If n <= 0, the controller's worker limit (or GOMAXPROCS) is used.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithChunkSize sets the minimum number of ids handed to a worker at once.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithMinOverlap makes Merge fail with ErrInsufficientOverlap when the shared
// fraction of A's column ids and B's row ids is below f. 0 disables the check.
func WithMinOverlap(f float64) Option {
	return func(o *options) {
		o.minOverlap = f
	}
}

// WithController bounds worker slots and memory reservations.
// A controller may be shared by several Mergers.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithLogger sets the logger. If nil, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
