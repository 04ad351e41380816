package factormerge

import (
	"errors"
	"fmt"

	"github.com/hupe1980/factormerge/merge"
	"github.com/hupe1980/factormerge/model"
	"github.com/hupe1980/factormerge/store"
)

var (
	// ErrEmptyModel is returned when a model has no row or no column factors.
	ErrEmptyModel = model.ErrEmptyModel

	// ErrInsufficientOverlap is returned when WithMinOverlap is set and the
	// shared id space is too small.
	ErrInsufficientOverlap = merge.ErrInsufficientOverlap
)

// Phases reported by PhaseError.
const (
	PhaseLoadA = "load model A"
	PhaseLoadB = "load model B"
	PhaseMerge = "merge"
	PhaseSave  = "save"
	PhaseLoad  = "load"
)

// PhaseError records which step of a run failed.
//
// The original error can be accessed via errors.Unwrap, so errors.Is and
// errors.As see through it to *store.StoreReadError,
// *model.DimensionMismatchError and friends.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// IsReadError reports whether err came from loading a model.
func IsReadError(err error) bool {
	var re *store.StoreReadError
	return errors.As(err, &re)
}

// IsWriteError reports whether err came from saving the merged model.
func IsWriteError(err error) bool {
	var we *store.StoreWriteError
	return errors.As(err, &we)
}
