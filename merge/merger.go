package merge

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/hupe1980/factormerge/model"
	"gonum.org/v1/gonum/mat"
)

// Stats describes a completed merge.
type Stats struct {
	// SharedIDs is the number of ids present in both A's columns and B's rows.
	SharedIDs int
	// LeftIDs is the number of A's column ids.
	LeftIDs int
	// RightIDs is the number of B's row ids.
	RightIDs int
	// Overlap is SharedIDs / min(LeftIDs, RightIDs).
	Overlap float64
	// InputDim is the length of A's vectors.
	InputDim int
	// OutputDim is the length of B's row vectors and of every merged row.
	OutputDim int
	// Rows is the number of merged row factors.
	Rows int
	// Columns is the number of carried-through column factors.
	Columns  int
	Duration time.Duration
}

// Result is the outcome of Merge.
type Result struct {
	Model *model.FactorModel
	// Translation is the InputDim×OutputDim matrix Y(A)ᵀ·X(B).
	Translation *mat.Dense
	Stats       Stats
}

// Merger merges factor models. The zero value is not usable; use New.
type Merger struct {
	opts options
}

// New creates a Merger.
func New(optFns ...Option) *Merger {
	opts := options{chunkSize: defaultChunkSize}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.logger == nil {
		opts.logger = slog.New(slog.DiscardHandler)
	}
	return &Merger{opts: opts}
}

// Merge builds the X→Z model from a (X→Y) and b (Y→Z).
//
// The merged model's columns are b.Y itself; callers must not mutate it
// afterwards. Merge fails with model.ErrEmptyModel if any factor mapping of
// either model is empty and with a *model.DimensionMismatchError if a mapping
// is ragged or a's row and column vectors differ in length.
func (m *Merger) Merge(ctx context.Context, a, b *model.FactorModel) (*Result, error) {
	start := time.Now()

	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil model", model.ErrEmptyModel)
	}
	inputDim, outputDim, err := checkInputs(a, b)
	if err != nil {
		return nil, err
	}

	t, shared, err := m.Translation(ctx, a.Y, b.X)
	if err != nil {
		return nil, err
	}

	stats := Stats{
		SharedIDs: shared,
		LeftIDs:   len(a.Y),
		RightIDs:  len(b.X),
		Overlap:   float64(shared) / float64(min(len(a.Y), len(b.X))),
		InputDim:  inputDim,
		OutputDim: outputDim,
		Rows:      len(a.X),
		Columns:   len(b.Y),
	}

	if shared == 0 {
		m.opts.logger.WarnContext(ctx, "models share no ids, translation is all zero",
			"left_ids", stats.LeftIDs,
			"right_ids", stats.RightIDs,
		)
	}
	if m.opts.minOverlap > 0 && stats.Overlap < m.opts.minOverlap {
		return nil, overlapError(stats.Overlap, m.opts.minOverlap, shared)
	}

	x, err := m.Project(ctx, t, a.X)
	if err != nil {
		return nil, err
	}

	empty := model.EmptyIDSet()
	known := make(map[uint64]*model.IDSet, len(x))
	for id := range x {
		known[id] = empty
	}

	stats.Duration = time.Since(start)

	m.opts.logger.DebugContext(ctx, "merge completed",
		"rows", stats.Rows,
		"columns", stats.Columns,
		"shared_ids", stats.SharedIDs,
		"overlap", stats.Overlap,
		"input_dim", stats.InputDim,
		"output_dim", stats.OutputDim,
		"duration", stats.Duration,
	)

	return &Result{
		Model:       model.New(x, b.Y, known),
		Translation: t,
		Stats:       stats,
	}, nil
}

// checkInputs validates all four mappings and returns A's vector length and
// B's row vector length.
func checkInputs(a, b *model.FactorModel) (int, int, error) {
	axDim, err := a.X.Dim("A.X")
	if err != nil {
		return 0, 0, err
	}
	ayDim, err := a.Y.Dim("A.Y")
	if err != nil {
		return 0, 0, err
	}
	bxDim, err := b.X.Dim("B.X")
	if err != nil {
		return 0, 0, err
	}
	if _, err := b.Y.Dim("B.Y"); err != nil {
		return 0, 0, err
	}
	if axDim != ayDim {
		return 0, 0, &model.DimensionMismatchError{Mapping: "A.X", ID: a.X.IDs()[0], Expected: ayDim, Actual: axDim}
	}
	return ayDim, bxDim, nil
}

func (m *Merger) workerCount() int {
	if m.opts.workers > 0 {
		return m.opts.workers
	}
	if n := m.opts.controller.MaxWorkers(); n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// partition splits n items into at most workers contiguous ranges of at least
// minChunk items each.
func partition(n, workers, minChunk int) [][2]int {
	if n == 0 {
		return nil
	}
	workers = max(1, min(workers, (n+minChunk-1)/minChunk))
	size := (n + workers - 1) / workers

	ranges := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += size {
		ranges = append(ranges, [2]int{lo, min(lo+size, n)})
	}
	return ranges
}

// loadVec copies a float32 factor vector into dst.
func loadVec(dst *mat.VecDense, src []float32) {
	for i, v := range src {
		dst.SetVec(i, float64(v))
	}
}
