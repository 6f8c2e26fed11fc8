package sasreader

import (
	"encoding/binary"
	"math"
)

const (
	align_checker_value  = 0x33
	align_value          = 4
	a2_offset            = 32
	a1_offset            = 35
	endianness_offset    = 37
	platform_offset      = 39
	encoding_offset      = 70
	layout_min_length    = endianness_offset + 1
	padded_fields_offset = 164
	widened_fields_start = 216
	page_bit_offset_x86  = 16
	page_bit_offset_x64  = 32
	subheader_ptr_x86    = 12
	subheader_ptr_x64    = 24
	page_header_length   = 8
)

// Endianness is the byte order of every multi-byte field in the file.
type Endianness int

const (
	BigEndian Endianness = iota
	LittleEndian
)

func (e Endianness) String() string {
	if e == LittleEndian {
		return "little"
	}
	return "big"
}

// ByteOrder returns the encoding/binary order for e.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// LayoutFlags holds everything the a1/a2/endianness/encoding bytes decide
// about the rest of the file. It is derived once from the header and passed
// by value to every later decoding step.
type LayoutFlags struct {

	// True if offsets, lengths and counts are 8 bytes wide (a2 flag).
	WideOffsets bool

	// Extra bytes (0 or 4) before the timestamp fields (a1 flag).
	HeaderPadding int

	Endianness Endianness

	Encoding Encoding
}

// DeriveLayout decodes the layout flags from the start of a header using
// DefaultEncodings.
func DeriveLayout(b []byte) (LayoutFlags, error) {
	return DeriveLayoutWith(b, DefaultEncodings)
}

// DeriveLayoutWith decodes the layout flags, resolving the encoding byte
// through table.
func DeriveLayoutWith(b []byte, table EncodingTable) (LayoutFlags, error) {

	var flags LayoutFlags

	if len(b) < layout_min_length {
		return flags, formatErr(KindTruncatedHeader, int64(len(b)), int64(layout_min_length),
			"layout flags need the first 38 header bytes")
	}

	flags.WideOffsets = alignment(b[a2_offset]) == align_value
	flags.HeaderPadding = alignment(b[a1_offset])

	switch b[endianness_offset] {
	case 0x00:
		flags.Endianness = BigEndian
	case 0x01:
		flags.Endianness = LittleEndian
	default:
		return flags, formatErr(KindUnknownEndianness, endianness_offset, int64(b[endianness_offset]), "")
	}

	if len(b) <= encoding_offset {
		return flags, formatErr(KindTruncatedHeader, int64(len(b)), encoding_offset+1,
			"encoding byte not present")
	}
	code := b[encoding_offset]
	e, ok := table.Lookup(code)
	if !ok {
		return flags, formatErr(KindUnknownEncoding, encoding_offset, int64(code), "")
	}
	flags.Encoding = e

	return flags, nil
}

func alignment(b byte) int {
	if b == align_checker_value {
		return align_value
	}
	return 0
}

// IntWidth is the width in bytes of offsets, lengths and counts.
func (f LayoutFlags) IntWidth() int {
	if f.WideOffsets {
		return 8
	}
	return 4
}

// WideDelta is the extra shift (0 or 4) that the wide page count field adds
// to every header field after it.
func (f LayoutFlags) WideDelta() int {
	if f.WideOffsets {
		return align_value
	}
	return 0
}

// PointerWidth is the stride of one subheader pointer table entry.
func (f LayoutFlags) PointerWidth() int {
	if f.WideOffsets {
		return subheader_ptr_x64
	}
	return subheader_ptr_x86
}

// PageBitOffset is where the page type field starts.
func (f LayoutFlags) PageBitOffset() int {
	if f.WideOffsets {
		return page_bit_offset_x64
	}
	return page_bit_offset_x86
}

// PagePrologue is the fixed page preamble length; the subheader pointer
// table starts here.
func (f LayoutFlags) PagePrologue() int {
	return f.PageBitOffset() + page_header_length
}

// HeaderOffset maps a nominal header offset to its position in this file.
// Fields from byte 164 on move by the a1 padding, and fields from byte 216
// on also move by the wide page count delta.
func (f LayoutFlags) HeaderOffset(base int) int {
	switch {
	case base < padded_fields_offset:
		return base
	case base < widened_fields_start:
		return base + f.HeaderPadding
	default:
		return base + f.HeaderPadding + f.WideDelta()
	}
}

// ByteOrder returns the file's byte order.
func (f LayoutFlags) ByteOrder() binary.ByteOrder {
	return f.Endianness.ByteOrder()
}

// Uint16 reads a 2 byte unsigned integer at off. The caller guarantees the
// bounds.
func (f LayoutFlags) Uint16(b []byte, off int) int {
	return int(f.ByteOrder().Uint16(b[off : off+2]))
}

// Uint32 reads a 4 byte unsigned integer at off.
func (f LayoutFlags) Uint32(b []byte, off int) int64 {
	return int64(f.ByteOrder().Uint32(b[off : off+4]))
}

// Int reads an IntWidth-wide integer at off.
func (f LayoutFlags) Int(b []byte, off int) int64 {
	return f.IntN(b, off, f.IntWidth())
}

// IntN reads a 1, 2, 4 or 8 byte integer at off. Widths of 4 bytes are
// read as unsigned and 8 bytes as signed, matching how the format stores
// offsets and counts.
func (f LayoutFlags) IntN(b []byte, off, width int) int64 {
	bo := f.ByteOrder()
	switch width {
	case 1:
		return int64(b[off])
	case 2:
		return int64(bo.Uint16(b[off : off+2]))
	case 4:
		return int64(bo.Uint32(b[off : off+4]))
	case 8:
		return int64(bo.Uint64(b[off : off+8]))
	}
	panic("sasreader: invalid integer width")
}

// Float64 reads an 8 byte IEEE float at off.
func (f LayoutFlags) Float64(b []byte, off int) float64 {
	return math.Float64frombits(f.ByteOrder().Uint64(b[off : off+8]))
}
