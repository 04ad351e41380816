package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectors_Dim(t *testing.T) {
	t.Run("Uniform", func(t *testing.T) {
		v := Vectors{1: {1, 2, 3}, 2: {4, 5, 6}}
		dim, err := v.Dim("X")
		require.NoError(t, err)
		assert.Equal(t, 3, dim)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := Vectors{}.Dim("X")
		assert.ErrorIs(t, err, ErrEmptyModel)
	})

	t.Run("ZeroLength", func(t *testing.T) {
		_, err := Vectors{1: {}}.Dim("X")
		assert.ErrorIs(t, err, ErrEmptyModel)
	})

	t.Run("Ragged", func(t *testing.T) {
		v := Vectors{1: {1, 2}, 2: {1, 2}, 3: {1, 2, 3}}
		_, err := v.Dim("Y")
		require.Error(t, err)

		var dm *DimensionMismatchError
		require.True(t, errors.As(err, &dm))
		assert.Equal(t, "Y", dm.Mapping)
		assert.Equal(t, uint64(3), dm.ID)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 3, dm.Actual)
		assert.True(t, IsDimensionMismatch(err))
	})
}

func TestVectors_IDs(t *testing.T) {
	v := Vectors{30: {1}, 10: {1}, 20: {1}}
	assert.Equal(t, []uint64{10, 20, 30}, v.IDs())
}

func TestFactorModel_Validate(t *testing.T) {
	good := New(Vectors{1: {1, 0}}, Vectors{10: {1, 1, 1}}, nil)
	require.NoError(t, good.Validate())
	assert.NotNil(t, good.KnownItems)

	noRows := New(Vectors{}, Vectors{10: {1}}, nil)
	assert.ErrorIs(t, noRows.Validate(), ErrEmptyModel)

	noCols := New(Vectors{1: {1}}, nil, nil)
	assert.ErrorIs(t, noCols.Validate(), ErrEmptyModel)

	var nilModel *FactorModel
	assert.ErrorIs(t, nilModel.Validate(), ErrEmptyModel)

	ragged := New(Vectors{1: {1}}, Vectors{10: {1}, 11: {1, 2}}, nil)
	assert.True(t, IsDimensionMismatch(ragged.Validate()))
}

func TestFactorModel_Summary(t *testing.T) {
	m := New(
		Vectors{1: {1, 0}, 2: {0, 1}},
		Vectors{10: {1, 1}, 20: {2, 0}, 30: {0, 0}},
		map[uint64]*IDSet{1: NewIDSet(10, 20), 2: EmptyIDSet()},
	)

	s := m.Summary()
	assert.Equal(t, Summary{Rows: 2, RowDim: 2, Columns: 3, ColumnDim: 2, KnownItems: 2, Associations: 2}, s)
	assert.Contains(t, s.String(), "rows=2")
}
