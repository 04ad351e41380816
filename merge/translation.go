package merge

import (
	"context"

	"github.com/hupe1980/factormerge/model"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

const ctxCheckInterval = 256

// Translation computes leftᵀ·right over the ids both mappings share, i.e. the
// sum of outer(left[k], right[k]). It returns the len(left vector) ×
// len(right vector) matrix and the number of shared ids.
func (m *Merger) Translation(ctx context.Context, left, right model.Vectors) (*mat.Dense, int, error) {
	rows, err := left.Dim("left")
	if err != nil {
		return nil, 0, err
	}
	cols, err := right.Dim("right")
	if err != nil {
		return nil, 0, err
	}

	shared := sharedIDs(left, right)
	t := mat.NewDense(rows, cols, nil)
	if len(shared) == 0 {
		return t, 0, nil
	}

	workers := m.workerCount()
	partialBytes := int64(rows) * int64(cols) * 8
	if limit := m.opts.controller.Config().MemoryLimitBytes; limit > 0 && partialBytes > 0 {
		workers = max(1, min(workers, int(limit/partialBytes)))
	}
	ranges := partition(len(shared), workers, m.opts.chunkSize)

	// One private partial per range; the first range accumulates into t directly.
	reserved := int64(len(ranges)-1) * partialBytes
	if err := m.opts.controller.AcquireMemory(ctx, reserved); err != nil {
		return nil, 0, err
	}
	defer m.opts.controller.ReleaseMemory(reserved)
	m.opts.logger.DebugContext(ctx, "translation partials reserved",
		"partials", len(ranges),
		"reserved_bytes", reserved,
		"memory_in_use", m.opts.controller.MemoryUsage(),
	)

	partials := make([]*mat.Dense, len(ranges))
	partials[0] = t
	for i := 1; i < len(ranges); i++ {
		partials[i] = mat.NewDense(rows, cols, nil)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		g.Go(func() error {
			if err := m.opts.controller.AcquireWorker(gctx); err != nil {
				return err
			}
			defer m.opts.controller.ReleaseWorker()
			return accumulate(gctx, left, right, shared[r[0]:r[1]], partials[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	for _, p := range partials[1:] {
		t.Add(t, p)
	}

	return t, len(shared), nil
}

// accumulate adds outer(left[id], right[id]) into dst for every id.
func accumulate(ctx context.Context, left, right model.Vectors, ids []uint64, dst *mat.Dense) error {
	rows, cols := dst.Dims()
	x := mat.NewVecDense(rows, nil)
	y := mat.NewVecDense(cols, nil)

	for n, id := range ids {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		loadVec(x, left[id])
		loadVec(y, right[id])
		dst.RankOne(dst, 1, x, y)
	}
	return nil
}

// sharedIDs returns the ids present in both mappings, in ascending order.
func sharedIDs(left, right model.Vectors) []uint64 {
	small, large := left, right
	if len(large) < len(small) {
		small, large = large, small
	}

	ids := make([]uint64, 0, len(small))
	for _, id := range small.IDs() {
		if _, ok := large[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
