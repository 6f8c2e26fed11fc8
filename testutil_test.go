package sasreader

import (
	"bytes"
	"math"
	"runtime"
)

// fileSpec describes a synthetic file for tests.
type fileSpec struct {
	wide     bool
	padded   bool
	little   bool
	encoding byte
	osByte   byte

	name    string
	kind    string
	release string
	host    string
	osMaker string
	osName  string

	created  float64
	modified float64

	headerLength int
	pageSize     int
}

func defaultSpec() fileSpec {
	return fileSpec{
		little:       true,
		encoding:     20,
		osByte:       '1',
		name:         "TESTDATA",
		kind:         "DATA",
		release:      "9.0401M0",
		host:         "X64_7PRO",
		osMaker:      "Linux",
		created:      1.8e9,
		modified:     1.8e9 + 60,
		headerLength: 1024,
		pageSize:     4096,
	}
}

func (s fileSpec) flags() LayoutFlags {
	f := LayoutFlags{WideOffsets: s.wide, Endianness: BigEndian}
	if s.padded {
		f.HeaderPadding = 4
	}
	if s.little {
		f.Endianness = LittleEndian
	}
	f.Encoding, _ = DefaultEncodings.Lookup(s.encoding)
	return f
}

func putInt(f LayoutFlags, b []byte, off int, v int64, width int) {
	bo := f.ByteOrder()
	switch width {
	case 1:
		b[off] = byte(v)
	case 2:
		bo.PutUint16(b[off:], uint16(v))
	case 4:
		bo.PutUint32(b[off:], uint32(v))
	case 8:
		bo.PutUint64(b[off:], uint64(v))
	default:
		panic("bad width")
	}
}

func putText(b []byte, off, length int, s string, pad byte) {
	copy(b[off:off+length], bytes.Repeat([]byte{pad}, length))
	copy(b[off:off+length], s)
}

// buildHeader returns the header bytes for a file with pageCount pages.
func buildHeader(s fileSpec, pageCount int) []byte {

	f := s.flags()
	b := make([]byte, s.headerLength)

	copy(b, magic)
	if s.wide {
		b[a2_offset] = align_checker_value
	}
	if s.padded {
		b[a1_offset] = align_checker_value
	}
	if s.little {
		b[endianness_offset] = 1
	}
	b[platform_offset] = s.osByte
	b[encoding_offset] = s.encoding

	copy(b[file_marker_offset:], file_marker)
	putText(b, dataset_offset, dataset_length, s.name, ' ')
	putText(b, file_type_offset, file_type_length, s.kind, ' ')

	bo := f.ByteOrder()
	bo.PutUint64(b[f.HeaderOffset(date_created_offset):], math.Float64bits(s.created))
	bo.PutUint64(b[f.HeaderOffset(date_modified_offset):], math.Float64bits(s.modified))

	putInt(f, b, f.HeaderOffset(header_size_offset), int64(s.headerLength), 4)
	putInt(f, b, f.HeaderOffset(page_size_offset), int64(s.pageSize), 4)
	putInt(f, b, f.HeaderOffset(page_count_offset), int64(pageCount), f.IntWidth())

	putText(b, f.HeaderOffset(sas_release_offset), sas_release_length, s.release, 0)
	putText(b, f.HeaderOffset(sas_server_type_offset), sas_server_type_length, s.host, ' ')
	putText(b, f.HeaderOffset(os_version_number_offset), os_version_number_length, "4.4.0", 0)
	putText(b, f.HeaderOffset(os_maker_offset), os_maker_length, s.osMaker, ' ')
	putText(b, f.HeaderOffset(os_name_offset), os_name_length, s.osName, ' ')

	return b
}

// buildFile joins a header and pages.
func buildFile(s fileSpec, pages ...[]byte) []byte {
	out := buildHeader(s, len(pages))
	for _, p := range pages {
		out = append(out, p...)
	}
	return out
}

// testSub is a subheader to place on a synthetic page.
type testSub struct {
	data        []byte
	compression byte
	typ         byte
}

// buildPage lays out a page: the pointer table after the prologue, the
// subheaders packed from the end of the page backwards, and the rows after
// the pointer table. Rows on mix pages start at the next 8 byte boundary.
func buildPage(f LayoutFlags, pageSize int, typ uint16, subs []testSub, rows [][]byte) []byte {

	b := make([]byte, pageSize)
	bitOffset := f.PageBitOffset()
	intLen := f.IntWidth()

	blocks := len(subs) + len(rows)
	if typ == page_data_type {
		blocks = len(rows)
	}
	putInt(f, b, bitOffset+page_type_offset, int64(typ), 2)
	putInt(f, b, bitOffset+block_count_offset, int64(blocks), 2)
	putInt(f, b, bitOffset+subheader_count_offset, int64(len(subs)), 2)

	pos := pageSize
	ptr := f.PagePrologue()
	for _, s := range subs {
		pos -= len(s.data)
		copy(b[pos:], s.data)
		putInt(f, b, ptr, int64(pos), intLen)
		putInt(f, b, ptr+intLen, int64(len(s.data)), intLen)
		b[ptr+2*intLen] = s.compression
		b[ptr+2*intLen+1] = s.typ
		ptr += f.PointerWidth()
	}

	if typ == page_mix_type || typ == page_mix2_type {
		ptr += ptr % 8
	}
	for _, row := range rows {
		copy(b[ptr:], row)
		ptr += len(row)
	}
	if ptr > pos {
		panic("page overflow")
	}

	return b
}

func signature(f LayoutFlags, narrow string) []byte {
	sig := []byte(narrow)
	if !f.WideOffsets {
		return sig
	}
	fill := byte(0x00)
	if sig[0] == 0xFF || sig[len(sig)-1] == 0xFF {
		fill = 0xFF
	}
	pad := bytes.Repeat([]byte{fill}, 4)
	if f.Endianness == LittleEndian {
		return append(sig, pad...)
	}
	return append(pad, sig...)
}

// rowSizeSub builds a row size subheader.
func rowSizeSub(f LayoutFlags, rowLength, rowCount, p1, p2, mixRows, lcp int) testSub {

	intLen := f.IntWidth()
	n := 480
	lcpOffset := lcp_offset_x86
	if f.WideOffsets {
		n = 808
		lcpOffset = lcp_offset_x64
	}
	b := make([]byte, n)
	copy(b, signature(f, "\xF7\xF7\xF7\xF7"))
	putInt(f, b, row_length_offset_multiplier*intLen, int64(rowLength), intLen)
	putInt(f, b, row_count_offset_multiplier*intLen, int64(rowCount), intLen)
	putInt(f, b, col_count_p1_multiplier*intLen, int64(p1), intLen)
	putInt(f, b, col_count_p2_multiplier*intLen, int64(p2), intLen)
	putInt(f, b, row_count_on_mix_page_multiplier*intLen, int64(mixRows), intLen)
	putInt(f, b, lcpOffset, int64(lcp), 2)

	return testSub{data: b}
}

// columnSizeSub builds a column size subheader.
func columnSizeSub(f LayoutFlags, columns int) testSub {
	intLen := f.IntWidth()
	b := make([]byte, 3*intLen)
	copy(b, signature(f, "\xF6\xF6\xF6\xF6"))
	putInt(f, b, intLen, int64(columns), intLen)
	return testSub{data: b}
}

// columnTextSub builds the first column text subheader with the given
// compression literal and creator procedure name.
func columnTextSub(f LayoutFlags, literal, creator string) testSub {
	w := f.WideDelta()
	b := make([]byte, 64+w)
	sig := "\xFD\xFF\xFF\xFF"
	if f.Endianness == BigEndian {
		sig = "\xFF\xFF\xFF\xFD"
	}
	copy(b, signature(f, sig))
	copy(b[column_text_literal_offset+w:], literal)
	copy(b[column_text_creator_offset_rle+w:], creator)
	return testSub{data: b}
}

// dataSub builds a compressed data subheader.
func dataSub(payload []byte) testSub {
	return testSub{data: payload, compression: compressed_subheader_id, typ: compressed_subheader_type}
}

// testRows returns n rows of rowLength bytes, each filled with its index.
func testRows(n, rowLength int) [][]byte {
	rows := make([][]byte, n)
	for i := range rows {
		rows[i] = bytes.Repeat([]byte{byte('A' + i%26)}, rowLength)
	}
	return rows
}

// allocatedBy returns the number of bytes allocated while fn runs.
func allocatedBy(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

// hugeSize is a page or header size far larger than any test file.
const hugeSize = 0x7FFFFFF0
