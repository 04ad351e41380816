package store

import (
	"errors"
	"fmt"

	"github.com/hupe1980/factormerge/blobstore"
	"github.com/hupe1980/factormerge/codec"
)

// ReadErrorKind classifies a failed load.
type ReadErrorKind int

const (
	// ReadIO means the bytes could not be obtained.
	ReadIO ReadErrorKind = iota
	// ReadFormat means the bytes are not a model this build can decode.
	ReadFormat
)

func (k ReadErrorKind) String() string {
	switch k {
	case ReadIO:
		return "io"
	case ReadFormat:
		return "format"
	default:
		return fmt.Sprintf("ReadErrorKind(%d)", int(k))
	}
}

// StoreReadError is returned by Load.
type StoreReadError struct {
	Name string
	Kind ReadErrorKind
	Err  error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("read model %q (%s): %v", e.Name, e.Kind, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// NotFound reports whether the model did not exist.
func (e *StoreReadError) NotFound() bool {
	return errors.Is(e.Err, blobstore.ErrNotFound)
}

// StoreWriteError is returned by Save.
type StoreWriteError struct {
	Name string
	Err  error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("write model %q: %v", e.Name, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

func readError(name string, err error) *StoreReadError {
	kind := ReadIO
	if errors.Is(err, codec.ErrUnknownFormat) ||
		errors.Is(err, codec.ErrUnsupportedVersion) ||
		errors.Is(err, codec.ErrCorrupt) {
		kind = ReadFormat
	}
	return &StoreReadError{Name: name, Kind: kind, Err: err}
}

// IsFormatError reports whether err is a StoreReadError of kind ReadFormat.
func IsFormatError(err error) bool {
	var re *StoreReadError
	return errors.As(err, &re) && re.Kind == ReadFormat
}
