package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hupe1980/factormerge/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel() *model.FactorModel {
	return model.New(
		model.Vectors{1: {1, 0.5}, 2: {-3.25, 0}, 1 << 40: {7, 8}},
		model.Vectors{10: {1, 1}, 20: {2, 0}},
		map[uint64]*model.IDSet{
			1:       model.NewIDSet(10),
			2:       model.NewIDSet(10, 20, 1<<50),
			1 << 40: model.EmptyIDSet(),
		},
	)
}

func requireModelEqual(t *testing.T, want, got *model.FactorModel) {
	t.Helper()

	require.Equal(t, want.X.IDs(), got.X.IDs())
	for id, vec := range want.X {
		assert.Equal(t, vec, got.X[id], "x[%d]", id)
	}
	require.Equal(t, want.Y.IDs(), got.Y.IDs())
	for id, vec := range want.Y {
		assert.Equal(t, vec, got.Y[id], "y[%d]", id)
	}
	require.Len(t, got.KnownItems, len(want.KnownItems))
	for id, set := range want.KnownItems {
		assert.True(t, set.Equal(got.KnownItems[id]), "known_items[%d]", id)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"binary", "binary+lz4", "binary+zstd", "json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("gob")
	assert.False(t, ok)
}

func TestDetect(t *testing.T) {
	m := testModel()

	c, err := Detect(MustEncode(Binary{Compression: CompressionLZ4}, m))
	require.NoError(t, err)
	assert.IsType(t, Binary{}, c)

	c, err = Detect(MustEncode(JSON{}, m))
	require.NoError(t, err)
	assert.IsType(t, JSON{}, c)

	c, err = Detect([]byte("\n  {\"format\":\"factormerge\"}"))
	require.NoError(t, err)
	assert.IsType(t, JSON{}, c)

	_, err = Detect([]byte("PK\x03\x04"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Detect(nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDecode_AnyFormat(t *testing.T) {
	m := testModel()

	for _, c := range []Codec{Binary{}, Binary{Compression: CompressionLZ4}, Binary{Compression: CompressionZSTD}, JSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			got, err := Decode(bytes.NewReader(MustEncode(c, m)))
			require.NoError(t, err)
			requireModelEqual(t, m, got)
		})
	}
}

func TestDecode_Unknown(t *testing.T) {
	_, err := Decode(strings.NewReader("id,x0,x1\n1,0.5,0.25\n"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, got)

	_, err = ParseCompression("brotli")
	assert.Error(t, err)
}
