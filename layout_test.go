package sasreader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveLayout_Flags(t *testing.T) {
	tests := []struct {
		name    string
		a2, a1  byte
		wide    bool
		padding int
	}{
		{"narrow unpadded", 0x22, 0x22, false, 0},
		{"wide unpadded", 0x33, 0x22, true, 0},
		{"narrow padded", 0x22, 0x33, false, 4},
		{"wide padded", 0x33, 0x33, true, 4},
		{"zero flags", 0x00, 0x00, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := make([]byte, 100)
			b[a2_offset] = tt.a2
			b[a1_offset] = tt.a1
			b[endianness_offset] = 0x01
			b[encoding_offset] = 20

			flags, err := DeriveLayout(b)
			require.NoError(t, err)
			assert.Equal(t, tt.wide, flags.WideOffsets)
			assert.Equal(t, tt.padding, flags.HeaderPadding)
			assert.Equal(t, LittleEndian, flags.Endianness)
			assert.Equal(t, "utf-8", flags.Encoding.Name)
		})
	}
}

func TestDeriveLayout_Errors(t *testing.T) {

	_, err := DeriveLayout(make([]byte, 37))
	assert.True(t, errors.Is(err, ErrTruncatedHeader))

	b := make([]byte, 100)
	b[endianness_offset] = 0x02
	_, err = DeriveLayout(b)
	require.Error(t, err)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindUnknownEndianness, fe.Kind)
	assert.Equal(t, int64(2), fe.Value)

	// Endianness is readable but the encoding byte is not there.
	b = make([]byte, 40)
	_, err = DeriveLayout(b)
	assert.True(t, errors.Is(err, ErrTruncatedHeader))

	b = make([]byte, 100)
	b[encoding_offset] = 1
	_, err = DeriveLayout(b)
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindUnknownEncoding, fe.Kind)
	assert.Equal(t, int64(1), fe.Value)
}

func TestDeriveLayout_EncodingTable(t *testing.T) {
	b := make([]byte, 100)
	b[encoding_offset] = 1

	table := EncodingMap{1: {Code: 1, Name: "custom"}}
	flags, err := DeriveLayoutWith(b, table)
	require.NoError(t, err)
	assert.Equal(t, "custom", flags.Encoding.Name)
	assert.Equal(t, BigEndian, flags.Endianness)
}

func TestLayoutFlags_Widths(t *testing.T) {
	narrow := LayoutFlags{}
	wide := LayoutFlags{WideOffsets: true, HeaderPadding: 4}

	assert.Equal(t, 4, narrow.IntWidth())
	assert.Equal(t, 8, wide.IntWidth())
	assert.Equal(t, 12, narrow.PointerWidth())
	assert.Equal(t, 24, wide.PointerWidth())
	assert.Equal(t, 24, narrow.PagePrologue())
	assert.Equal(t, 40, wide.PagePrologue())

	assert.Equal(t, 92, wide.HeaderOffset(92))
	assert.Equal(t, 164, narrow.HeaderOffset(164))
	assert.Equal(t, 168, wide.HeaderOffset(164))
	assert.Equal(t, 208, wide.HeaderOffset(204))
	assert.Equal(t, 216, narrow.HeaderOffset(216))
	assert.Equal(t, 224, wide.HeaderOffset(216))
}

func TestLayoutFlags_Integers(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	little := LayoutFlags{Endianness: LittleEndian}
	big := LayoutFlags{Endianness: BigEndian}

	assert.Equal(t, 0x0201, little.Uint16(b, 0))
	assert.Equal(t, 0x0102, big.Uint16(b, 0))
	assert.Equal(t, int64(0x04030201), little.Int(b, 0))
	assert.Equal(t, int64(0x01020304), big.Int(b, 0))
	assert.Equal(t, int64(0x0807060504030201), little.IntN(b, 0, 8))
	assert.Equal(t, int64(0x05), little.IntN(b, 4, 1))

	assert.Panics(t, func() { little.IntN(b, 0, 3) })
}
