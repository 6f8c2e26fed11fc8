package sasreader

import (
	"fmt"
)

// ErrorKind identifies the class of a decoding failure.
type ErrorKind int

const (
	KindBadMagic ErrorKind = iota + 1
	KindNotASasFile
	KindEmptyDatasetName
	KindUnknownFileKind
	KindUnknownEndianness
	KindUnknownEncoding
	KindTruncatedHeader
	KindTruncatedPage
	KindTruncatedRow
	KindSubheaderOutOfBounds
	KindRowLengthMismatch
	KindRleOverflow
	KindRleUnderflow
	KindUnknownRleCommand
	KindUnknownCompression
	KindUnsupportedCompression
	KindInvalidLayout
)

var kindNames = map[ErrorKind]string{
	KindBadMagic:               "bad magic number",
	KindNotASasFile:            "not a SAS file",
	KindEmptyDatasetName:       "empty dataset name",
	KindUnknownFileKind:        "unknown file kind",
	KindUnknownEndianness:      "unknown endianness",
	KindUnknownEncoding:        "unknown encoding",
	KindTruncatedHeader:        "truncated header",
	KindTruncatedPage:          "truncated page",
	KindTruncatedRow:           "truncated row",
	KindSubheaderOutOfBounds:   "subheader out of bounds",
	KindRowLengthMismatch:      "row length mismatch",
	KindRleOverflow:            "RLE overflow",
	KindRleUnderflow:           "RLE underflow",
	KindUnknownRleCommand:      "unknown RLE command",
	KindUnknownCompression:     "unknown compression code",
	KindUnsupportedCompression: "unsupported compression",
	KindInvalidLayout:          "invalid layout",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// FormatError reports malformed input. Offset is the byte position that
// triggered the failure (relative to the header, page or row being
// decoded), and Value is the offending raw value when there is one.
type FormatError struct {
	Kind   ErrorKind
	Offset int64
	Value  int64
	Text   string
}

func (e *FormatError) Error() string {
	msg := "sas7bdat: " + e.Kind.String()
	if e.Text != "" {
		msg += ": " + e.Text
	}
	return fmt.Sprintf("%s (offset %d, value %d)", msg, e.Offset, e.Value)
}

// Is matches any FormatError of the same kind, so the sentinels below work
// with errors.Is.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrBadMagic               = &FormatError{Kind: KindBadMagic}
	ErrNotASasFile            = &FormatError{Kind: KindNotASasFile}
	ErrEmptyDatasetName       = &FormatError{Kind: KindEmptyDatasetName}
	ErrUnknownFileKind        = &FormatError{Kind: KindUnknownFileKind}
	ErrUnknownEndianness      = &FormatError{Kind: KindUnknownEndianness}
	ErrUnknownEncoding        = &FormatError{Kind: KindUnknownEncoding}
	ErrTruncatedHeader        = &FormatError{Kind: KindTruncatedHeader}
	ErrTruncatedPage          = &FormatError{Kind: KindTruncatedPage}
	ErrTruncatedRow           = &FormatError{Kind: KindTruncatedRow}
	ErrSubheaderOutOfBounds   = &FormatError{Kind: KindSubheaderOutOfBounds}
	ErrRowLengthMismatch      = &FormatError{Kind: KindRowLengthMismatch}
	ErrRleOverflow            = &FormatError{Kind: KindRleOverflow}
	ErrRleUnderflow           = &FormatError{Kind: KindRleUnderflow}
	ErrUnknownRleCommand      = &FormatError{Kind: KindUnknownRleCommand}
	ErrUnknownCompression     = &FormatError{Kind: KindUnknownCompression}
	ErrUnsupportedCompression = &FormatError{Kind: KindUnsupportedCompression}
	ErrInvalidLayout          = &FormatError{Kind: KindInvalidLayout}
)

func formatErr(kind ErrorKind, offset, value int64, text string) *FormatError {
	return &FormatError{Kind: kind, Offset: offset, Value: value, Text: text}
}
