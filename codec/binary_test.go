package codec

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"
	"testing"

	"github.com/hupe1980/factormerge/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinary_RoundTrip(t *testing.T) {
	m := testModel()

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Binary{Compression: c}.Encode(&buf, m))

			got, err := Binary{}.Decode(&buf)
			require.NoError(t, err)
			requireModelEqual(t, m, got)
			assert.Same(t, model.EmptyIDSet(), got.KnownItems[1<<40])
		})
	}
}

func TestBinary_Deterministic(t *testing.T) {
	a := MustEncode(Binary{}, testModel())
	b := MustEncode(Binary{}, testModel())
	assert.Equal(t, a, b)
}

func TestBinary_Header(t *testing.T) {
	data := MustEncode(Binary{}, testModel())
	require.GreaterOrEqual(t, len(data), headerSize)

	assert.Equal(t, "FMDL", string(data[0:4]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[4:6]))
	assert.Equal(t, uint16(CompressionNone), binary.LittleEndian.Uint16(data[6:8]))
	assert.Equal(t, uint64(len(data)-headerSize), binary.LittleEndian.Uint64(data[16:24]))
	assert.Equal(t, uint32(len(data)-headerSize), binary.LittleEndian.Uint32(data[12:16]))
}

func TestBinary_CompressesLargeModel(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := make(model.Vectors, 2000)
	for i := range 2000 {
		// Few distinct values, so the payload compresses well.
		x[uint64(i)] = []float32{float32(rng.Intn(4)), 0, 0, 1}
	}
	m := model.New(x, model.Vectors{1: {1, 2, 3, 4}}, nil)

	plain := MustEncode(Binary{}, m)
	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		packed := MustEncode(Binary{Compression: c}, m)
		assert.Less(t, len(packed), len(plain), c.String())
		assert.Equal(t, uint16(c), binary.LittleEndian.Uint16(packed[6:8]))

		got, err := Binary{}.Decode(bytes.NewReader(packed))
		require.NoError(t, err)
		requireModelEqual(t, m, got)
	}
}

func TestCompress_IncompressibleStoredPlain(t *testing.T) {
	data := make([]byte, 4096)
	rand.New(rand.NewSource(9)).Read(data)

	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		out, applied, err := compress(data, c)
		require.NoError(t, err)
		assert.Equal(t, CompressionNone, applied, c.String())
		assert.Equal(t, data, out)
	}
}

func TestBinary_Truncated(t *testing.T) {
	data := MustEncode(Binary{}, testModel())

	for _, n := range []int{6, headerSize - 1, headerSize, headerSize + 5, len(data) - 1} {
		_, err := Binary{}.Decode(bytes.NewReader(data[:n]))
		assert.ErrorIs(t, err, ErrCorrupt, "truncated to %d bytes", n)
	}
}

func TestBinary_ChecksumMismatch(t *testing.T) {
	data := MustEncode(Binary{}, testModel())
	data[len(data)-3] ^= 0xFF

	_, err := Binary{}.Decode(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBinary_CorruptCompressedPayload(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	x := make(model.Vectors, 500)
	for i := range 500 {
		x[uint64(i)] = []float32{float32(rng.Intn(2)), 1}
	}
	m := model.New(x, model.Vectors{1: {1, 1}}, nil)

	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		data := MustEncode(Binary{Compression: c}, m)
		data[headerSize+len(data[headerSize:])/2] ^= 0x5A

		_, err := Binary{}.Decode(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrCorrupt, c.String())
	}
}

func TestBinary_LZ4RawLengthBeyondBound(t *testing.T) {
	data := make([]byte, headerSize+4)
	binary.LittleEndian.PutUint32(data[0:4], binaryMagic)
	binary.LittleEndian.PutUint16(data[4:6], binaryVersion)
	binary.LittleEndian.PutUint16(data[6:8], uint16(CompressionLZ4))
	binary.LittleEndian.PutUint32(data[12:16], 0xFFFFFFF0)
	binary.LittleEndian.PutUint64(data[16:24], 4)

	_, err := Binary{}.Decode(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), "cannot expand")
}

func TestCheckPayloadSize(t *testing.T) {
	require.NoError(t, checkPayloadSize(0))
	require.NoError(t, checkPayloadSize(math.MaxUint32))
	assert.Error(t, checkPayloadSize(math.MaxUint32+1))
}

func TestBinary_UnknownFormat(t *testing.T) {
	_, err := Binary{}.Decode(bytes.NewReader([]byte("not a model at all, just some text")))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Binary{}.Decode(bytes.NewReader([]byte("ab")))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Binary{}.Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestBinary_UnsupportedVersion(t *testing.T) {
	data := MustEncode(Binary{}, testModel())
	binary.LittleEndian.PutUint16(data[4:6], 7)

	_, err := Binary{}.Decode(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestBinary_SectionCountOverflow(t *testing.T) {
	pb := newPayloadBuffer(nil)
	pb.writeUint64(1 << 60) // claimed X entries
	pb.writeUint32(4)
	pb.writeUint64(1)

	r := newPayloadBuffer(pb.buf)
	assert.Nil(t, r.readVectors())
	assert.Error(t, r.err)
}

func TestBinary_EncodeRejectsRaggedVectors(t *testing.T) {
	m := model.New(model.Vectors{1: {1, 2}, 2: {1}}, model.Vectors{1: {1, 1}}, nil)

	err := Binary{}.Encode(&bytes.Buffer{}, m)
	assert.True(t, model.IsDimensionMismatch(err))
}

func BenchmarkBinary(b *testing.B) {
	rng := rand.New(rand.NewSource(3))
	x := make(model.Vectors, 10000)
	for i := range 10000 {
		vec := make([]float32, 32)
		for j := range vec {
			vec[j] = rng.Float32()
		}
		x[uint64(i)] = vec
	}
	m := model.New(x, x, nil)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		data := MustEncode(Binary{Compression: c}, m)

		b.Run("Encode/"+c.String(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			var buf bytes.Buffer
			for b.Loop() {
				buf.Reset()
				if err := (Binary{Compression: c}).Encode(&buf, m); err != nil {
					b.Fatal(err)
				}
			}
		})

		b.Run("Decode/"+c.String(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				if _, err := (Binary{}).Decode(bytes.NewReader(data)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
