package merge

import (
	"errors"
	"fmt"
)

// ErrInsufficientOverlap is returned when WithMinOverlap is set and A's column
// ids and B's row ids share too small a fraction.
var ErrInsufficientOverlap = errors.New("insufficient overlap between model A columns and model B rows")

func overlapError(got, want float64, shared int) error {
	return fmt.Errorf("%w: %.4f < %.4f (%d shared ids)", ErrInsufficientOverlap, got, want, shared)
}
