package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/hupe1980/factormerge/model"
)

const (
	binaryMagic   = 0x4C444D46 // "FMDL"
	binaryVersion = 1

	headerSize = 24

	// maxPrealloc bounds allocations sized from untrusted header fields.
	maxPrealloc = 64 << 20
)

// Binary is the compact binary model format.
//
// Format (little-endian):
// Header (24 bytes)
//
//	Magic        (4 bytes)
//	Version      (2 bytes)
//	Compression  (2 bytes)
//	Checksum     (4 bytes) - CRC32 of the uncompressed payload
//	RawLength    (4 bytes) - uncompressed payload length
//	StoredLength (8 bytes) - payload bytes that follow
//
// Payload:
//
//	X section: Count (8 bytes), Dim (4 bytes), Count × (ID (8 bytes), Dim × float32)
//	Y section: same layout
//	K section: Count (8 bytes), Count × (ID (8 bytes), Len (4 bytes), roaring64 bytes)
//
// Entries are written in ascending id order, so equal models encode to equal
// bytes. Decode accepts any compression regardless of the receiver's.
type Binary struct {
	Compression Compression
}

// Name returns "binary", "binary+lz4" or "binary+zstd".
func (b Binary) Name() string {
	if b.Compression == CompressionNone {
		return "binary"
	}
	return "binary+" + b.Compression.String()
}

// Encode writes m to w.
func (b Binary) Encode(w io.Writer, m *model.FactorModel) error {
	if m == nil {
		return fmt.Errorf("codec: %w", model.ErrEmptyModel)
	}

	pb := newPayloadBuffer(make([]byte, 0, estimateSize(m)))
	pb.writeVectors("x", m.X)
	pb.writeVectors("y", m.Y)
	pb.writeKnownItems(m.KnownItems)
	if pb.err != nil {
		return pb.err
	}

	payload := pb.buf
	if err := checkPayloadSize(uint64(len(payload))); err != nil {
		return err
	}
	checksum := crc32.ChecksumIEEE(payload)

	stored, applied, err := compress(payload, b.Compression)
	if err != nil {
		return err
	}

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], binaryMagic)
	binary.LittleEndian.PutUint16(header[4:6], binaryVersion)
	binary.LittleEndian.PutUint16(header[6:8], uint16(applied))
	binary.LittleEndian.PutUint32(header[8:12], checksum)
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(payload)))
	binary.LittleEndian.PutUint64(header[16:24], uint64(len(stored)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(stored); err != nil {
		return err
	}
	return nil
}

// checkPayloadSize rejects payloads whose length does not fit the header's
// 32-bit RawLength field.
func checkPayloadSize(n uint64) error {
	if n > math.MaxUint32 {
		return fmt.Errorf("codec: payload too large: %d bytes", n)
	}
	return nil
}

// Decode reads a model from r.
func (Binary) Decode(r io.Reader) (*model.FactorModel, error) {
	header := make([]byte, headerSize)
	n, err := io.ReadFull(r, header)
	switch {
	case errors.Is(err, io.EOF):
		return nil, fmt.Errorf("%w: empty input", ErrUnknownFormat)
	case errors.Is(err, io.ErrUnexpectedEOF):
		if n < 4 || binary.LittleEndian.Uint32(header) != binaryMagic {
			return nil, ErrUnknownFormat
		}
		return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
	case err != nil:
		return nil, err
	}

	if magic := binary.LittleEndian.Uint32(header[0:4]); magic != binaryMagic {
		return nil, fmt.Errorf("%w: invalid magic: %x", ErrUnknownFormat, magic)
	}
	if version := binary.LittleEndian.Uint16(header[4:6]); version != binaryVersion {
		return nil, fmt.Errorf("%w: binary version %d", ErrUnsupportedVersion, version)
	}
	compression := Compression(binary.LittleEndian.Uint16(header[6:8]))
	checksum := binary.LittleEndian.Uint32(header[8:12])
	rawLen := binary.LittleEndian.Uint32(header[12:16])
	storedLen := binary.LittleEndian.Uint64(header[16:24])

	stored, err := io.ReadAll(io.LimitReader(r, int64(min(storedLen, math.MaxInt64))))
	if err != nil {
		return nil, err
	}
	if uint64(len(stored)) != storedLen {
		return nil, fmt.Errorf("%w: payload truncated: %d of %d bytes", ErrCorrupt, len(stored), storedLen)
	}

	payload, err := decompress(stored, compression, int(rawLen))
	if err != nil {
		return nil, err
	}
	if crc32.ChecksumIEEE(payload) != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	pb := newPayloadBuffer(payload)
	x := pb.readVectors()
	y := pb.readVectors()
	known := pb.readKnownItems()
	if pb.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, pb.err)
	}
	if pb.pos != len(payload) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(payload)-pb.pos)
	}

	return model.New(x, y, known), nil
}

func estimateSize(m *model.FactorModel) int {
	size := 3*8 + 2*4
	for _, v := range m.X {
		size += len(m.X) * (8 + 4*len(v))
		break
	}
	for _, v := range m.Y {
		size += len(m.Y) * (8 + 4*len(v))
		break
	}
	size += len(m.KnownItems) * 32
	return min(size, maxPrealloc)
}
