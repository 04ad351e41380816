package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectors(t *testing.T) {
	rng := NewRNG(42)
	v := rng.Vectors(100, 8, 1000)

	require.Len(t, v, 100)
	assert.Equal(t, uint64(1000), v.IDs()[0])
	assert.Equal(t, uint64(1099), v.IDs()[99])

	dim, err := v.Dim("v")
	require.NoError(t, err)
	assert.Equal(t, 8, dim)

	for _, vec := range v {
		for _, x := range vec {
			assert.GreaterOrEqual(t, x, float32(-1))
			assert.Less(t, x, float32(1))
		}
	}
}

func TestVectors_NoAliasing(t *testing.T) {
	v := NewRNG(1).Vectors(2, 3, 0)
	v[0] = append(v[0], 9)
	assert.Len(t, v[1], 3)
}

func TestFactorModel(t *testing.T) {
	m := NewRNG(7).FactorModel(20, 10, 4, 500)
	require.NoError(t, m.Validate())
	assert.Len(t, m.X, 20)
	assert.Len(t, m.Y, 10)

	for id, set := range m.KnownItems {
		require.Equal(t, uint64(1), set.Len(), "row %d", id)
		_, ok := m.Y[set.IDs()[0]]
		assert.True(t, ok)
	}
}

func TestOrthonormalBasis(t *testing.T) {
	const dim = 6
	basis := NewRNG(3).OrthonormalBasis(dim, 10)
	require.Len(t, basis, dim)

	ids := basis.IDs()
	for i, a := range ids {
		for j, b := range ids {
			var dot float64
			for k := range dim {
				dot += float64(basis[a][k]) * float64(basis[b][k])
			}
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, dot, 1e-5, "<%d,%d>", a, b)
		}
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(99)
	first := rng.Vectors(3, 3, 0)
	rng.Reset()
	second := rng.Vectors(3, 3, 0)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(99), rng.Seed())
	assert.False(t, math.IsNaN(float64(first[0][0])))
}
