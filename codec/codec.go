// Package codec reads and writes factor models.
//
// Two formats exist: a versioned binary format (optionally lz4 or zstd
// compressed) and a self-describing JSON document. Both carry a format
// marker, so a reader can pick the codec from the first bytes of the data.
package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/factormerge/model"
)

var (
	// ErrUnknownFormat is returned when data is not in any known model format.
	ErrUnknownFormat = errors.New("codec: unknown model format")
	// ErrUnsupportedVersion is returned for a known format with a version this
	// package cannot read.
	ErrUnsupportedVersion = errors.New("codec: unsupported format version")
	// ErrCorrupt is returned for truncated data, checksum mismatches and
	// inconsistent section lengths.
	ErrCorrupt = errors.New("codec: corrupt model data")
)

// Codec encodes/decodes factor models.
// Implementations must be safe for concurrent use.
type Codec interface {
	Encode(w io.Writer, m *model.FactorModel) error
	Decode(r io.Reader) (*model.FactorModel, error)
	Name() string
}

// Default is the codec used for writing when none is configured.
var Default Codec = Binary{Compression: CompressionZSTD}

// ByName returns a built-in codec by its stable name.
//
// "binary" selects the uncompressed binary format; "binary+lz4" and
// "binary+zstd" select a compressed one.
func ByName(name string) (Codec, bool) {
	switch name {
	case "binary":
		return Binary{}, true
	case "binary+lz4":
		return Binary{Compression: CompressionLZ4}, true
	case "binary+zstd":
		return Binary{Compression: CompressionZSTD}, true
	case "json":
		return JSON{}, true
	default:
		return nil, false
	}
}

// detectLen is the number of leading bytes Detect needs at most.
const detectLen = 64

// Detect returns the codec able to decode data starting with prefix.
func Detect(prefix []byte) (Codec, error) {
	if len(prefix) >= 4 && binary.LittleEndian.Uint32(prefix) == binaryMagic {
		return Binary{}, nil
	}
	if trimmed := bytes.TrimLeft(prefix, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
		return JSON{}, nil
	}
	return nil, ErrUnknownFormat
}

// Decode reads a model in any known format.
func Decode(r io.Reader) (*model.FactorModel, error) {
	br := bufio.NewReader(r)

	prefix, err := br.Peek(detectLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	c, err := Detect(prefix)
	if err != nil {
		return nil, err
	}
	return c.Decode(br)
}

// MustEncode is a helper for tests and benchmarks.
func MustEncode(c Codec, m *model.FactorModel) []byte {
	if c == nil {
		c = Default
	}
	var buf bytes.Buffer
	if err := c.Encode(&buf, m); err != nil {
		panic(fmt.Errorf("codec %s encode failed: %w", c.Name(), err))
	}
	return buf.Bytes()
}
