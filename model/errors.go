package model

import (
	"errors"
	"fmt"
)

// ErrEmptyModel is returned when a factor mapping has no entries, so its
// vector length cannot be determined.
var ErrEmptyModel = errors.New("empty model")

// DimensionMismatchError indicates that vectors which must share a length do not.
type DimensionMismatchError struct {
	// Mapping names the offending mapping (e.g. "X", "Y", "A.X").
	Mapping  string
	ID       uint64
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch in %s (id %d): expected %d, got %d", e.Mapping, e.ID, e.Expected, e.Actual)
}

// IsDimensionMismatch reports whether err is (or wraps) a *DimensionMismatchError.
func IsDimensionMismatch(err error) bool {
	var dm *DimensionMismatchError
	return errors.As(err, &dm)
}
