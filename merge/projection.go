package merge

import (
	"context"

	"github.com/hupe1980/factormerge/model"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Project multiplies tᵀ by every row vector, re-expressing rows in the
// coordinate space of t's columns. Row vectors must have as many elements as
// t has rows.
func (m *Merger) Project(ctx context.Context, t mat.Matrix, rows model.Vectors) (model.Vectors, error) {
	tRows, tCols := t.Dims()

	dim, err := rows.Dim("rows")
	if err != nil {
		return nil, err
	}
	ids := rows.IDs()
	if dim != tRows {
		return nil, &model.DimensionMismatchError{Mapping: "rows", ID: ids[0], Expected: tRows, Actual: dim}
	}

	reserved := int64(len(ids)) * int64(tCols) * 4
	if err := m.opts.controller.AcquireMemory(ctx, reserved); err != nil {
		return nil, err
	}
	defer m.opts.controller.ReleaseMemory(reserved)

	out := make([][]float32, len(ids))
	tt := t.T()

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range partition(len(ids), m.workerCount(), m.opts.chunkSize) {
		g.Go(func() error {
			if err := m.opts.controller.AcquireWorker(gctx); err != nil {
				return err
			}
			defer m.opts.controller.ReleaseWorker()

			x := mat.NewVecDense(tRows, nil)
			y := mat.NewVecDense(tCols, nil)
			for i := r[0]; i < r[1]; i++ {
				if (i-r[0])%ctxCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				loadVec(x, rows[ids[i]])
				y.MulVec(tt, x)

				vec := make([]float32, tCols)
				for j := range vec {
					vec[j] = float32(y.AtVec(j))
				}
				out[i] = vec
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	projected := make(model.Vectors, len(ids))
	for i, id := range ids {
		projected[id] = out[i]
	}
	return projected, nil
}
