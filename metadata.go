package sasreader

import (
	"bytes"
	"math"
	"strings"
)

// SubheaderKind is what a subheader holds, as told by its signature.
type SubheaderKind int

const (
	SubheaderUnknown SubheaderKind = iota
	SubheaderRowSize
	SubheaderColumnSize
	SubheaderCounts
	SubheaderColumnText
	SubheaderColumnName
	SubheaderColumnAttributes
	SubheaderFormatAndLabel
	SubheaderColumnList
	SubheaderData
)

var subheaderKindNames = [...]string{
	"unknown", "row-size", "column-size", "subheader-counts", "column-text",
	"column-name", "column-attributes", "format-and-label", "column-list", "data",
}

func (k SubheaderKind) String() string {
	if int(k) < len(subheaderKindNames) {
		return subheaderKindNames[k]
	}
	return "unknown"
}

// Subheader signatures, 32 and 64 bit, little and big endian
var subheader_signature_to_kind = map[string]SubheaderKind{
	"\xF7\xF7\xF7\xF7":                 SubheaderRowSize,
	"\x00\x00\x00\x00\xF7\xF7\xF7\xF7": SubheaderRowSize,
	"\xF7\xF7\xF7\xF7\x00\x00\x00\x00": SubheaderRowSize,
	"\xF7\xF7\xF7\xF7\xFF\xFF\xFB\xFE": SubheaderRowSize,
	"\xF6\xF6\xF6\xF6":                 SubheaderColumnSize,
	"\x00\x00\x00\x00\xF6\xF6\xF6\xF6": SubheaderColumnSize,
	"\xF6\xF6\xF6\xF6\x00\x00\x00\x00": SubheaderColumnSize,
	"\xF6\xF6\xF6\xF6\xFF\xFF\xFB\xFE": SubheaderColumnSize,
	"\x00\xFC\xFF\xFF":                 SubheaderCounts,
	"\xFF\xFF\xFC\x00":                 SubheaderCounts,
	"\x00\xFC\xFF\xFF\xFF\xFF\xFF\xFF": SubheaderCounts,
	"\xFF\xFF\xFF\xFF\xFF\xFF\xFC\x00": SubheaderCounts,
	"\xFD\xFF\xFF\xFF":                 SubheaderColumnText,
	"\xFF\xFF\xFF\xFD":                 SubheaderColumnText,
	"\xFD\xFF\xFF\xFF\xFF\xFF\xFF\xFF": SubheaderColumnText,
	"\xFF\xFF\xFF\xFF\xFF\xFF\xFF\xFD": SubheaderColumnText,
	"\xFF\xFF\xFF\xFF":                 SubheaderColumnName,
	"\xFF\xFF\xFF\xFF\xFF\xFF\xFF\xFF": SubheaderColumnName,
	"\xFC\xFF\xFF\xFF":                 SubheaderColumnAttributes,
	"\xFF\xFF\xFF\xFC":                 SubheaderColumnAttributes,
	"\xFC\xFF\xFF\xFF\xFF\xFF\xFF\xFF": SubheaderColumnAttributes,
	"\xFF\xFF\xFF\xFF\xFF\xFF\xFF\xFC": SubheaderColumnAttributes,
	"\xFE\xFB\xFF\xFF":                 SubheaderFormatAndLabel,
	"\xFF\xFF\xFB\xFE":                 SubheaderFormatAndLabel,
	"\xFE\xFB\xFF\xFF\xFF\xFF\xFF\xFF": SubheaderFormatAndLabel,
	"\xFF\xFF\xFF\xFF\xFF\xFF\xFB\xFE": SubheaderFormatAndLabel,
	"\xFE\xFF\xFF\xFF":                 SubheaderColumnList,
	"\xFF\xFF\xFF\xFE":                 SubheaderColumnList,
	"\xFE\xFF\xFF\xFF\xFF\xFF\xFF\xFF": SubheaderColumnList,
	"\xFF\xFF\xFF\xFF\xFF\xFF\xFF\xFE": SubheaderColumnList,
}

const (
	truncated_subheader_id            = 1
	compressed_subheader_id           = 4
	compressed_subheader_type         = 1
	row_length_offset_multiplier      = 5
	row_count_offset_multiplier       = 6
	col_count_p1_multiplier           = 9
	col_count_p2_multiplier           = 10
	row_count_on_mix_page_multiplier  = 15
	lcs_offset_x86                    = 354
	lcs_offset_x64                    = 682
	lcp_offset_x86                    = 378
	lcp_offset_x64                    = 706
	column_text_literal_offset        = 16
	column_text_creator_offset        = 32
	column_text_creator_offset_rle    = 40
	compression_literal_length        = 8
	row_size_subheader_min_multiplier = 16
)

// Metadata is the part of the file's metadata subheaders that row
// iteration depends on.
type Metadata struct {

	// Bytes per logical row
	RowLength int

	// Number of rows in the file
	RowCount int

	// Number of columns, from the column size subheader
	ColumnCount int

	// The two column counts of the row size subheader
	ColumnCountP1 int
	ColumnCountP2 int

	// Maximum number of rows on a mix page
	MixPageRowCount int

	// How row payloads are compressed
	Compression CompressionMode

	// The procedure that created the file, when recorded
	CreatorProc string

	// Lengths of the creator proc strings
	lcs int
	lcp int

	textBlocks int
}

// ClassifySubheader tells what a subheader holds. compressed says whether
// the file's rows are compressed, which is needed to recognize data
// subheaders.
func ClassifySubheader(rec SubheaderRecord, flags LayoutFlags, compressed bool) SubheaderKind {

	intLen := flags.IntWidth()
	if len(rec.Data) >= intLen {
		if k, ok := subheader_signature_to_kind[string(rec.Data[0:intLen])]; ok {
			return k
		}
	}

	f := rec.Compression == compressed_subheader_id || rec.Compression == 0
	if compressed && f && rec.Type == compressed_subheader_type {
		return SubheaderData
	}
	return SubheaderUnknown
}

// apply records what a metadata subheader says. Subheaders other than row
// size, column size and column text are ignored.
func (m *Metadata) apply(kind SubheaderKind, rec SubheaderRecord, flags LayoutFlags) error {
	switch kind {
	case SubheaderRowSize:
		return m.applyRowSize(rec, flags)
	case SubheaderColumnSize:
		return m.applyColumnSize(rec, flags)
	case SubheaderColumnText:
		return m.applyColumnText(rec, flags)
	}
	return nil
}

func (m *Metadata) applyRowSize(rec SubheaderRecord, flags LayoutFlags) error {

	intLen := flags.IntWidth()
	if need := row_size_subheader_min_multiplier * intLen; len(rec.Data) < need {
		return formatErr(KindSubheaderOutOfBounds, int64(rec.Offset), int64(len(rec.Data)),
			"row size subheader too short")
	}

	b := rec.Data
	m.RowLength = int(flags.Int(b, row_length_offset_multiplier*intLen))
	m.RowCount = int(flags.Int(b, row_count_offset_multiplier*intLen))
	m.ColumnCountP1 = int(flags.Int(b, col_count_p1_multiplier*intLen))
	m.ColumnCountP2 = int(flags.Int(b, col_count_p2_multiplier*intLen))
	m.MixPageRowCount = int(flags.Int(b, row_count_on_mix_page_multiplier*intLen))

	if m.RowLength < 0 || m.RowCount < 0 || m.MixPageRowCount < 0 {
		return formatErr(KindInvalidLayout, int64(rec.Offset), int64(m.RowLength), "negative row size field")
	}
	if m.RowLength > math.MaxInt32 {
		return formatErr(KindInvalidLayout, int64(rec.Offset), int64(m.RowLength), "row length out of range")
	}

	lcsOffset, lcpOffset := lcs_offset_x86, lcp_offset_x86
	if flags.WideOffsets {
		lcsOffset, lcpOffset = lcs_offset_x64, lcp_offset_x64
	}
	if len(b) >= lcpOffset+2 {
		m.lcs = flags.Uint16(b, lcsOffset)
		m.lcp = flags.Uint16(b, lcpOffset)
	}

	return nil
}

func (m *Metadata) applyColumnSize(rec SubheaderRecord, flags LayoutFlags) error {
	intLen := flags.IntWidth()
	if len(rec.Data) < 2*intLen {
		return formatErr(KindSubheaderOutOfBounds, int64(rec.Offset), int64(len(rec.Data)),
			"column size subheader too short")
	}
	m.ColumnCount = int(flags.Int(rec.Data, intLen))
	return nil
}

// applyColumnText inspects the first column text subheader, which names
// the compression algorithm and the creator procedure.
func (m *Metadata) applyColumnText(rec SubheaderRecord, flags LayoutFlags) error {

	m.textBlocks++
	if m.textBlocks > 1 {
		return nil
	}

	b := rec.Data
	text := string(b[min(flags.IntWidth(), len(b)):])
	switch {
	case strings.Contains(text, rdc_compression):
		return formatErr(KindUnsupportedCompression, int64(rec.Offset), 0, rdc_compression)
	case strings.Contains(text, rle_compression):
		m.Compression = CompressionRLE
	default:
		m.Compression = CompressionNone
	}

	w := flags.WideDelta()
	literal := ""
	if off := column_text_literal_offset + w; len(b) >= off+compression_literal_length {
		literal = string(bytes.Trim(b[off:off+compression_literal_length], "\x00"))
	}

	creator := func(off, length int) string {
		off += w
		if length <= 0 || off+length > len(b) {
			return ""
		}
		return strings.TrimRight(string(b[off:off+length]), "\x00 ")
	}

	switch {
	case literal == "":
		m.lcs = 0
		m.CreatorProc = creator(column_text_creator_offset, m.lcp)
	case literal == rle_compression:
		m.CreatorProc = creator(column_text_creator_offset_rle, m.lcp)
	case m.lcs > 0:
		m.lcp = 0
		m.CreatorProc = creator(column_text_literal_offset, m.lcs)
	}

	return nil
}

// RowMode is the decompression mode for a stored row of the given length.
// Rows stored at full length are never compressed.
func (m *Metadata) RowMode(stored int) CompressionMode {
	if m.Compression == CompressionRLE && stored < m.RowLength {
		return CompressionRLE
	}
	return CompressionNone
}
