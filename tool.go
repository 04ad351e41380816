package factormerge

import (
	"context"
	"time"

	"github.com/hupe1980/factormerge/merge"
	"github.com/hupe1980/factormerge/model"
	"github.com/hupe1980/factormerge/store"
)

// Ref names a model inside a store.
type Ref struct {
	Store store.ModelStore
	Name  string
}

// Tool runs the load, merge and save sequence.
type Tool struct {
	merger  *merge.Merger
	logger  *Logger
	metrics MetricsCollector
}

// New creates a Tool.
func New(optFns ...Option) *Tool {
	opts := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	mergeOpts := append([]merge.Option{merge.WithLogger(opts.logger.Logger)}, opts.mergeOptions...)
	return &Tool{
		merger:  merge.New(mergeOpts...),
		logger:  opts.logger,
		metrics: opts.metricsCollector,
	}
}

// Run loads model A and model B, merges them and saves the result to out.
// Nothing is written unless both loads and the merge succeed. Errors are
// *PhaseError.
func (t *Tool) Run(ctx context.Context, a, b, out Ref) (merge.Stats, error) {
	ma, err := t.load(ctx, "a", a)
	if err != nil {
		return merge.Stats{}, &PhaseError{Phase: PhaseLoadA, Err: err}
	}
	mb, err := t.load(ctx, "b", b)
	if err != nil {
		return merge.Stats{}, &PhaseError{Phase: PhaseLoadB, Err: err}
	}

	res, err := t.merger.Merge(ctx, ma, mb)
	if err != nil {
		t.metrics.RecordMerge(merge.Stats{}, err)
		t.logger.LogMerge(ctx, merge.Stats{}, err)
		return merge.Stats{}, &PhaseError{Phase: PhaseMerge, Err: err}
	}
	t.metrics.RecordMerge(res.Stats, nil)
	t.logger.LogMerge(ctx, res.Stats, nil)

	start := time.Now()
	err = out.Store.Save(ctx, res.Model, out.Name)
	duration := time.Since(start)
	t.metrics.RecordSave(duration, err)
	t.logger.LogSave(ctx, out.Name, duration, err)
	if err != nil {
		return res.Stats, &PhaseError{Phase: PhaseSave, Err: err}
	}
	return res.Stats, nil
}

func (t *Tool) load(ctx context.Context, role string, ref Ref) (*model.FactorModel, error) {
	start := time.Now()
	m, err := ref.Store.Load(ctx, ref.Name)
	duration := time.Since(start)

	t.metrics.RecordLoad(role, duration, err)
	if err != nil {
		t.logger.LogLoad(ctx, role, ref.Name, 0, 0, duration, err)
		return nil, err
	}
	t.logger.LogLoad(ctx, role, ref.Name, len(m.X), len(m.Y), duration, nil)
	return m, nil
}

// Inspect loads a model and summarizes it.
func (t *Tool) Inspect(ctx context.Context, ref Ref) (model.Summary, error) {
	m, err := t.load(ctx, "inspect", ref)
	if err != nil {
		return model.Summary{}, &PhaseError{Phase: PhaseLoad, Err: err}
	}
	return m.Summary(), nil
}
