package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/factormerge/model"
	"gonum.org/v1/gonum/mat"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fillLocked(dst, minVal, maxVal)
}

func (r *RNG) fillLocked(dst []float32, minVal, maxVal float32) {
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// Vectors returns num vectors with values in [-1, 1), keyed firstID,
// firstID+1, and so on. Uses a single backing array for efficiency.
func (r *RNG) Vectors(num, dim int, firstID uint64) model.Vectors {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	r.fillLocked(data, -1, 1)

	v := make(model.Vectors, num)
	for i := range num {
		v[firstID+uint64(i)] = data[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return v
}

// FactorModel returns a model with rows row factors (ids from 0) and cols
// column factors (ids from colOffset), all of length dim. Every row knows a
// random column, or none when cols is 0.
func (r *RNG) FactorModel(rows, cols, dim int, colOffset uint64) *model.FactorModel {
	x := r.Vectors(rows, dim, 0)
	y := r.Vectors(cols, dim, colOffset)

	known := make(map[uint64]*model.IDSet, rows)
	for id := range x {
		if cols == 0 {
			known[id] = model.EmptyIDSet()
			continue
		}
		known[id] = model.NewIDSet(colOffset + uint64(r.Intn(cols)))
	}
	return model.New(x, y, known)
}

// OrthonormalBasis returns dim orthonormal vectors of length dim, keyed
// firstID onwards. They are the columns of Q in the QR factorization of a
// Gaussian matrix.
func (r *RNG) OrthonormalBasis(dim int, firstID uint64) model.Vectors {
	r.mu.Lock()
	g := mat.NewDense(dim, dim, nil)
	for i := range dim {
		for j := range dim {
			g.Set(i, j, r.rand.NormFloat64())
		}
	}
	r.mu.Unlock()

	var qr mat.QR
	qr.Factorize(g)
	var q mat.Dense
	qr.QTo(&q)

	v := make(model.Vectors, dim)
	for j := range dim {
		vec := make([]float32, dim)
		for i := range dim {
			vec[i] = float32(q.At(i, j))
		}
		v[firstID+uint64(j)] = vec
	}
	return v
}
