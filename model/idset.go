package model

import (
	"bytes"
	"iter"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// IDSet is an immutable set of 64-bit identifiers backed by a Roaring bitmap.
// It is safe for concurrent use.
type IDSet struct {
	rb *roaring64.Bitmap
}

var (
	emptyOnce sync.Once
	emptySet  *IDSet
)

// EmptyIDSet returns the shared empty set. Since IDSet is immutable, the same
// instance can back any number of map entries.
func EmptyIDSet() *IDSet {
	emptyOnce.Do(func() {
		emptySet = &IDSet{rb: roaring64.New()}
	})
	return emptySet
}

// NewIDSet creates a set holding ids.
func NewIDSet(ids ...uint64) *IDSet {
	return &IDSet{rb: roaring64.BitmapOf(ids...)}
}

// ReadIDSet decodes a set from Roaring's portable serialization format.
func ReadIDSet(data []byte) (*IDSet, error) {
	rb := roaring64.New()
	if len(data) == 0 {
		return &IDSet{rb: rb}, nil
	}
	if _, err := rb.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return &IDSet{rb: rb}, nil
}

// Bytes encodes the set in Roaring's portable serialization format.
func (s *IDSet) Bytes() ([]byte, error) {
	if s == nil {
		return EmptyIDSet().Bytes()
	}
	return s.rb.ToBytes()
}

// Contains reports whether id is in the set.
func (s *IDSet) Contains(id uint64) bool {
	return s != nil && s.rb.Contains(id)
}

// Len returns the number of ids in the set.
func (s *IDSet) Len() uint64 {
	if s == nil {
		return 0
	}
	return s.rb.GetCardinality()
}

// IsEmpty returns true if the set holds no ids.
func (s *IDSet) IsEmpty() bool {
	return s == nil || s.rb.IsEmpty()
}

// IDs returns the ids in ascending order.
func (s *IDSet) IDs() []uint64 {
	if s == nil {
		return nil
	}
	return s.rb.ToArray()
}

// All returns an iterator over the ids in ascending order.
func (s *IDSet) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		if s == nil {
			return
		}
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Equal reports whether both sets hold the same ids.
func (s *IDSet) Equal(other *IDSet) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return s.IsEmpty() && other.IsEmpty()
	}
	return s.rb.Equals(other.rb)
}
