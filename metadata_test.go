package sasreader

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flagsFor(wide, little bool) LayoutFlags {
	f := LayoutFlags{WideOffsets: wide, Endianness: BigEndian}
	if little {
		f.Endianness = LittleEndian
	}
	return f
}

func record(s testSub) SubheaderRecord {
	return SubheaderRecord{
		SubheaderPointer: SubheaderPointer{Length: len(s.data), Compression: s.compression, Type: s.typ},
		Data:             s.data,
	}
}

func TestClassifySubheader(t *testing.T) {
	for _, wide := range []bool{false, true} {
		for _, little := range []bool{false, true} {
			f := flagsFor(wide, little)

			assert.Equal(t, SubheaderRowSize, ClassifySubheader(record(rowSizeSub(f, 8, 1, 1, 0, 1, 0)), f, false))
			assert.Equal(t, SubheaderColumnSize, ClassifySubheader(record(columnSizeSub(f, 1)), f, false))
			assert.Equal(t, SubheaderColumnText, ClassifySubheader(record(columnTextSub(f, "", "")), f, false))

			data := record(dataSub([]byte{0x81, 'a', 'b', 0xE0}))
			assert.Equal(t, SubheaderData, ClassifySubheader(data, f, true))
			assert.Equal(t, SubheaderUnknown, ClassifySubheader(data, f, false))
		}
	}

	// Uncompressed payloads with compression code 0 are data too.
	f := flagsFor(false, true)
	rec := record(testSub{data: []byte("plain row"), typ: 1})
	assert.Equal(t, SubheaderData, ClassifySubheader(rec, f, true))

	rec = record(testSub{data: []byte("plain row"), typ: 0})
	assert.Equal(t, SubheaderUnknown, ClassifySubheader(rec, f, true))

	rec = record(testSub{data: []byte{0xFE, 0xFB}})
	assert.Equal(t, SubheaderUnknown, ClassifySubheader(rec, f, false))
}

func TestMetadata_Apply(t *testing.T) {
	for _, wide := range []bool{false, true} {
		for _, little := range []bool{false, true} {
			f := flagsFor(wide, little)
			var m Metadata

			subs := []testSub{
				rowSizeSub(f, 48, 1000, 3, 1, 70, 8),
				columnSizeSub(f, 4),
				columnTextSub(f, rle_compression, "DATASTEP"),
			}
			for _, s := range subs {
				rec := record(s)
				require.NoError(t, m.apply(ClassifySubheader(rec, f, false), rec, f))
			}

			assert.Equal(t, 48, m.RowLength)
			assert.Equal(t, 1000, m.RowCount)
			assert.Equal(t, 3, m.ColumnCountP1)
			assert.Equal(t, 1, m.ColumnCountP2)
			assert.Equal(t, 4, m.ColumnCount)
			assert.Equal(t, 70, m.MixPageRowCount)
			assert.Equal(t, CompressionRLE, m.Compression)
			assert.Equal(t, "DATASTEP", m.CreatorProc)
		}
	}
}

func TestMetadata_ColumnTextOnlyFirst(t *testing.T) {
	f := flagsFor(false, true)
	var m Metadata

	first := record(columnTextSub(f, "", ""))
	second := record(columnTextSub(f, rle_compression, ""))
	require.NoError(t, m.apply(SubheaderColumnText, first, f))
	require.NoError(t, m.apply(SubheaderColumnText, second, f))
	assert.Equal(t, CompressionNone, m.Compression)
}

func TestMetadata_Errors(t *testing.T) {
	f := flagsFor(false, true)
	var m Metadata

	err := m.apply(SubheaderColumnText, record(columnTextSub(f, rdc_compression, "")), f)
	assert.True(t, errors.Is(err, ErrUnsupportedCompression))

	short := rowSizeSub(f, 8, 1, 1, 0, 1, 0)
	short.data = short.data[:40]
	err = m.apply(SubheaderRowSize, record(short), f)
	assert.True(t, errors.Is(err, ErrSubheaderOutOfBounds))

	err = m.apply(SubheaderColumnSize, record(testSub{data: []byte{0xF6, 0xF6, 0xF6, 0xF6}}), f)
	assert.True(t, errors.Is(err, ErrSubheaderOutOfBounds))

	wide := flagsFor(true, true)
	for _, n := range []int{1 << 62, math.MaxInt32 + 1} {
		err = m.apply(SubheaderRowSize, record(rowSizeSub(wide, n, 1, 1, 0, 0, 0)), wide)
		assert.True(t, errors.Is(err, ErrInvalidLayout), "row length %d: %v", n, err)
	}

	// Other kinds are ignored.
	assert.NoError(t, m.apply(SubheaderFormatAndLabel, record(testSub{data: []byte{1}}), f))
}

func TestMetadata_RowMode(t *testing.T) {
	m := Metadata{RowLength: 32, Compression: CompressionRLE}
	assert.Equal(t, CompressionRLE, m.RowMode(10))
	assert.Equal(t, CompressionNone, m.RowMode(32))

	m.Compression = CompressionNone
	assert.Equal(t, CompressionNone, m.RowMode(10))
}
