package model

import (
	"fmt"
	"slices"
)

// Vectors maps an entity id to its latent factor vector.
type Vectors map[uint64][]float32

// Dim returns the uniform vector length of the mapping.
//
// It returns ErrEmptyModel if the mapping is empty or holds zero-length
// vectors, and a
// *DimensionMismatchError (labelled with name) if lengths differ.
func (v Vectors) Dim(name string) (int, error) {
	if len(v) == 0 {
		return 0, fmt.Errorf("%w: %s has no entries", ErrEmptyModel, name)
	}

	dim := -1
	for _, id := range v.IDs() {
		n := len(v[id])
		if dim < 0 {
			dim = n
			continue
		}
		if n != dim {
			return 0, &DimensionMismatchError{Mapping: name, ID: id, Expected: dim, Actual: n}
		}
	}
	if dim == 0 {
		return 0, fmt.Errorf("%w: %s has zero-length vectors", ErrEmptyModel, name)
	}
	return dim, nil
}

// IDs returns the ids of the mapping in ascending order.
func (v Vectors) IDs() []uint64 {
	ids := make([]uint64, 0, len(v))
	for id := range v {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FactorModel is a pair of factor mappings plus the known row→column associations.
type FactorModel struct {
	// X holds the row factors (e.g. users).
	X Vectors
	// Y holds the column factors (e.g. items).
	Y Vectors
	// KnownItems maps a row id to the column ids already associated with it.
	KnownItems map[uint64]*IDSet
}

// New creates a FactorModel. A nil knownItems is replaced by an empty map.
func New(x, y Vectors, knownItems map[uint64]*IDSet) *FactorModel {
	if knownItems == nil {
		knownItems = make(map[uint64]*IDSet)
	}
	return &FactorModel{X: x, Y: y, KnownItems: knownItems}
}

// Validate checks that both factor mappings are non-empty and uniformly sized.
func (m *FactorModel) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil model", ErrEmptyModel)
	}
	if _, err := m.X.Dim("X"); err != nil {
		return err
	}
	if _, err := m.Y.Dim("Y"); err != nil {
		return err
	}
	return nil
}

// Summary describes the shape of a model.
type Summary struct {
	Rows       int `json:"rows"`
	RowDim     int `json:"row_dim"`
	Columns    int `json:"columns"`
	ColumnDim  int `json:"column_dim"`
	KnownItems int `json:"known_items"`
	// Associations is the total number of known row→column pairs.
	Associations uint64 `json:"associations"`
}

// Summary returns the shape of the model. Dimensions of empty or ragged
// mappings are reported as 0.
func (m *FactorModel) Summary() Summary {
	s := Summary{
		Rows:       len(m.X),
		Columns:    len(m.Y),
		KnownItems: len(m.KnownItems),
	}
	s.RowDim, _ = m.X.Dim("X")
	s.ColumnDim, _ = m.Y.Dim("Y")
	for _, set := range m.KnownItems {
		s.Associations += set.Len()
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("rows=%d row_dim=%d columns=%d column_dim=%d known_items=%d associations=%d",
		s.Rows, s.RowDim, s.Columns, s.ColumnDim, s.KnownItems, s.Associations)
}
