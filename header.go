package sasreader

import (
	"bytes"
	"io"
	"math"
	"strings"
	"time"
)

const (
	magic = ("\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\xc2\xea\x81\x60" +
		"\xb3\x14\x11\xcf\xbd\x92\x08\x00\x09\xc7\x31\x8c\x18\x1f\x10\x11")
	magic_length             = 32
	file_marker              = "SAS FILE"
	file_marker_offset       = 84
	file_marker_length       = 8
	dataset_offset           = 92
	dataset_length           = 64
	file_type_offset         = 156
	file_type_length         = 8
	date_created_offset      = 164
	date_modified_offset     = 172
	header_size_offset       = 196
	page_size_offset         = 200
	page_count_offset        = 204
	sas_release_offset       = 216
	sas_release_length       = 8
	sas_server_type_offset   = 224
	sas_server_type_length   = 16
	os_version_number_offset = 240
	os_version_number_length = 16
	os_maker_offset          = 256
	os_maker_length          = 16
	os_name_offset           = 272
	os_name_length           = 16
	header_fixed_length      = 288
)

// FileKind is the kind of SAS file, from the 8 byte field at offset 156.
type FileKind int

const (
	KindData FileKind = iota
	KindCatalog
)

func (k FileKind) String() string {
	if k == KindCatalog {
		return "catalog"
	}
	return "data"
}

// OSType is the platform byte at offset 39.
type OSType int

const (
	OSUnknown OSType = iota
	OSUnix
	OSWindows
)

func (o OSType) String() string {
	switch o {
	case OSUnix:
		return "unix"
	case OSWindows:
		return "windows"
	}
	return "unknown"
}

// ParseOSType maps the platform byte ('1' or '2') to an OSType.
func ParseOSType(b byte) (OSType, bool) {
	switch b {
	case '1':
		return OSUnix, true
	case '2':
		return OSWindows, true
	}
	return OSUnknown, false
}

// sasEpoch is the zero point of all SAS timestamps.
var sasEpoch = time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)

// maxSASSeconds is the largest offset a time.Duration can hold.
const maxSASSeconds = float64(math.MaxInt64 / int64(time.Second))

// SASTime converts seconds since the SAS epoch to a time. NaN and
// infinities (missing values) give the zero time.
func SASTime(seconds float64) time.Time {
	if math.IsNaN(seconds) || math.Abs(seconds) > maxSASSeconds {
		return time.Time{}
	}
	whole, frac := math.Modf(seconds)
	return sasEpoch.Add(time.Duration(whole) * time.Second).Add(time.Duration(frac * float64(time.Second)))
}

// FileHeader is the decoded file header. It is immutable once decoded.
type FileHeader struct {
	Layout LayoutFlags

	// The name of the data set
	Name string

	Kind FileKind

	// Creation and modification times, and the raw seconds they come from
	Created     time.Time
	Modified    time.Time
	CreatedRaw  float64
	ModifiedRaw float64

	// Length in bytes of the header; the first page starts here
	HeaderLength int

	PageSize  int
	PageCount int

	// The SAS release used to create the file
	Release string

	// The server type used to create the file
	Host string

	OSVersion string
	OSMaker   string
	OSName    string
	OSType    OSType
}

// DecodeHeader decodes a file header using DefaultEncodings. The slice must
// hold at least the fixed part of the header; it does not need to hold all
// HeaderLength bytes.
func DecodeHeader(b []byte) (*FileHeader, error) {
	return DecodeHeaderWith(b, DefaultEncodings)
}

// DecodeHeaderWith is DecodeHeader with an explicit encoding table.
func DecodeHeaderWith(b []byte, table EncodingTable) (*FileHeader, error) {

	if err := checkMagic(b); err != nil {
		return nil, err
	}

	flags, err := DeriveLayoutWith(b, table)
	if err != nil {
		return nil, err
	}

	if err := checkFileMarker(b); err != nil {
		return nil, err
	}

	if need := flags.HeaderOffset(header_fixed_length); len(b) < need {
		return nil, formatErr(KindTruncatedHeader, int64(len(b)), int64(need), "fixed header fields missing")
	}

	h := &FileHeader{Layout: flags}

	if h.Name, err = datasetName(b, flags); err != nil {
		return nil, err
	}
	if h.Kind, err = fileKind(b); err != nil {
		return nil, err
	}

	readTimestamps(h, b, flags)

	if err := readSizes(h, b, flags); err != nil {
		return nil, err
	}

	readHostStrings(h, b, flags)

	return h, nil
}

func checkMagic(b []byte) error {
	if len(b) < magic_length {
		return formatErr(KindTruncatedHeader, int64(len(b)), magic_length, "magic number missing")
	}
	if !bytes.Equal(b[0:magic_length], []byte(magic)) {
		return formatErr(KindBadMagic, 0, 0, "")
	}
	return nil
}

func checkFileMarker(b []byte) error {
	end := file_marker_offset + file_marker_length
	if len(b) < end {
		return formatErr(KindTruncatedHeader, int64(len(b)), int64(end), "file marker missing")
	}
	s := string(bytes.TrimRight(b[file_marker_offset:end], "\x00"))
	if s != file_marker {
		return formatErr(KindNotASasFile, file_marker_offset, 0, s)
	}
	return nil
}

func datasetName(b []byte, flags LayoutFlags) (string, error) {
	raw := bytes.TrimRight(b[dataset_offset:dataset_offset+dataset_length], "\x00 ")
	if len(raw) == 0 {
		return "", formatErr(KindEmptyDatasetName, dataset_offset, 0, "")
	}
	return strings.TrimRight(flags.Encoding.Decode(raw), "\x00 \t\r\n"), nil
}

// ParseFileKind maps the file type field to a FileKind. Matching ignores
// case and surrounding white space.
func ParseFileKind(s string) (FileKind, bool) {
	switch strings.ToLower(strings.TrimSpace(strings.TrimRight(s, "\x00"))) {
	case "data":
		return KindData, true
	case "catalog":
		return KindCatalog, true
	}
	return KindData, false
}

func fileKind(b []byte) (FileKind, error) {
	s := string(b[file_type_offset : file_type_offset+file_type_length])
	k, ok := ParseFileKind(s)
	if !ok {
		return k, formatErr(KindUnknownFileKind, file_type_offset, 0, strings.TrimRight(s, "\x00 "))
	}
	return k, nil
}

func readTimestamps(h *FileHeader, b []byte, flags LayoutFlags) {
	h.CreatedRaw = flags.Float64(b, flags.HeaderOffset(date_created_offset))
	h.ModifiedRaw = flags.Float64(b, flags.HeaderOffset(date_modified_offset))
	h.Created = SASTime(h.CreatedRaw)
	h.Modified = SASTime(h.ModifiedRaw)
}

func readSizes(h *FileHeader, b []byte, flags LayoutFlags) error {

	h.HeaderLength = int(flags.Uint32(b, flags.HeaderOffset(header_size_offset)))
	h.PageSize = int(flags.Uint32(b, flags.HeaderOffset(page_size_offset)))
	h.PageCount = int(flags.Int(b, flags.HeaderOffset(page_count_offset)))

	if need := flags.HeaderOffset(header_fixed_length); h.HeaderLength < need {
		return formatErr(KindInvalidLayout, int64(flags.HeaderOffset(header_size_offset)),
			int64(h.HeaderLength), "header length shorter than the fixed header fields")
	}
	if h.PageSize < flags.PagePrologue() {
		return formatErr(KindInvalidLayout, int64(flags.HeaderOffset(page_size_offset)),
			int64(h.PageSize), "page size smaller than the page prologue")
	}
	if h.PageCount < 0 {
		return formatErr(KindInvalidLayout, int64(flags.HeaderOffset(page_count_offset)),
			int64(h.PageCount), "negative page count")
	}
	return nil
}

func readHostStrings(h *FileHeader, b []byte, flags LayoutFlags) {

	field := func(base, length int, cutset string) string {
		off := flags.HeaderOffset(base)
		return string(bytes.TrimRight(b[off:off+length], cutset))
	}

	h.Release = field(sas_release_offset, sas_release_length, "\x00")
	h.Host = field(sas_server_type_offset, sas_server_type_length, " \x00")
	h.OSVersion = field(os_version_number_offset, os_version_number_length, "\x00")
	h.OSMaker = field(os_maker_offset, os_maker_length, " \x00")
	h.OSName = field(os_name_offset, os_name_length, " \x00")
	if h.OSName == "" {
		h.OSName = h.OSMaker
	}
	h.OSType, _ = ParseOSType(b[platform_offset])
}

// ReadHeader reads and decodes the header from the start of r. It returns
// the header and all HeaderLength header bytes; on return r is positioned
// at the first page.
func ReadHeader(r io.Reader) (*FileHeader, []byte, error) {
	return ReadHeaderWith(r, DefaultEncodings)
}

// ReadHeaderWith is ReadHeader with an explicit encoding table.
func ReadHeaderWith(r io.Reader, table EncodingTable) (*FileHeader, []byte, error) {

	buf := make([]byte, header_fixed_length)
	if err := readHeaderBytes(r, buf, 0); err != nil {
		return nil, nil, err
	}

	// The padded layouts push the fixed fields up to 8 bytes further.
	if err := checkMagic(buf); err != nil {
		return nil, nil, err
	}
	flags, err := DeriveLayoutWith(buf, table)
	if err != nil {
		return nil, nil, err
	}
	if need := flags.HeaderOffset(header_fixed_length); need > len(buf) {
		have := len(buf)
		buf = append(buf, make([]byte, need-have)...)
		if err := readHeaderBytes(r, buf[have:], have); err != nil {
			return nil, nil, err
		}
	}

	h, err := DecodeHeaderWith(buf, table)
	if err != nil {
		return nil, nil, err
	}

	// HeaderLength comes from the file, so the rest is read in bounded steps
	// rather than allocated up front.
	if h.HeaderLength > len(buf) {
		have := len(buf)
		rest, err := io.ReadAll(io.LimitReader(r, int64(h.HeaderLength-have)))
		if err != nil {
			return nil, nil, err
		}
		if len(rest) < h.HeaderLength-have {
			return nil, nil, formatErr(KindTruncatedHeader, int64(have+len(rest)), int64(h.HeaderLength),
				"file ends inside the header")
		}
		buf = append(buf, rest...)
	}

	return h, buf, nil
}

// readHeaderBytes fills p, reporting a short read as a truncated header.
// pos is the header offset p starts at.
func readHeaderBytes(r io.Reader, p []byte, pos int) error {
	n, err := io.ReadFull(r, p)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return formatErr(KindTruncatedHeader, int64(pos+n), int64(pos+len(p)), "file ends inside the header")
	}
	return err
}
