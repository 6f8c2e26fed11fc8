package sasreader

// Row decompression.
//
// The RLE command set is partially documented here:
//
// https://cran.r-project.org/web/packages/sas7bdat/vignettes/sas7bdat.pdf

const (
	rle_compression = "SASYZCRL"
	rdc_compression = "SASYZCR2"

	// Longest run (0x4F 0xFF x) over its 3 instruction bytes, rounded up.
	rle_max_expansion = 1372
)

// CompressionMode is how row payloads are stored.
type CompressionMode int

const (
	CompressionNone CompressionMode = iota
	CompressionTruncated
	CompressionRLE
)

func (m CompressionMode) String() string {
	switch m {
	case CompressionTruncated:
		return "truncated"
	case CompressionRLE:
		return "rle"
	}
	return "none"
}

// CompressionModeFromCode maps a subheader compression code (0, 1 or 4).
func CompressionModeFromCode(code byte) (CompressionMode, error) {
	switch code {
	case 0:
		return CompressionNone, nil
	case 1:
		return CompressionTruncated, nil
	case 4:
		return CompressionRLE, nil
	}
	return CompressionNone, formatErr(KindUnknownCompression, 0, int64(code), "")
}

// Decompress expands one stored row to rowLength bytes. The result of
// CompressionNone is raw itself.
func Decompress(raw []byte, rowLength int, mode CompressionMode) ([]byte, error) {
	if rowLength < 0 {
		return nil, formatErr(KindRowLengthMismatch, int64(len(raw)), int64(rowLength), "negative row length")
	}
	switch mode {
	case CompressionNone:
		if len(raw) != rowLength {
			return nil, formatErr(KindRowLengthMismatch, int64(len(raw)), int64(rowLength), "")
		}
		return raw, nil
	case CompressionTruncated:
		if len(raw) > rowLength {
			return nil, formatErr(KindRowLengthMismatch, int64(len(raw)), int64(rowLength),
				"truncated row longer than the row length")
		}
		out := make([]byte, rowLength)
		copy(out, raw)
		return out, nil
	case CompressionRLE:
		return rleDecompress(rowLength, raw)
	}
	return nil, formatErr(KindUnknownCompression, 0, int64(mode), "")
}

// rleDecompress expands an RLE instruction stream. Each instruction starts
// with a control byte: the high nibble selects the command and the low
// nibble is part of the count.
func rleDecompress(resultLength int, inbuff []byte) ([]byte, error) {

	// Each input byte expands to at most rle_max_expansion output bytes.
	result := make([]byte, 0, min(resultLength, len(inbuff)*rle_max_expansion))
	pos := 0

	// next consumes one input byte.
	next := func() (int, error) {
		if pos >= len(inbuff) {
			return 0, formatErr(KindRleUnderflow, int64(pos), int64(len(result)), "instruction cut short")
		}
		b := inbuff[pos]
		pos++
		return int(b), nil
	}

	copyBytes := func(n int) error {
		if pos+n > len(inbuff) {
			return formatErr(KindRleUnderflow, int64(pos), int64(n), "literal run cut short")
		}
		if len(result)+n > resultLength {
			return formatErr(KindRleOverflow, int64(pos), int64(len(result)+n), "")
		}
		result = append(result, inbuff[pos:pos+n]...)
		pos += n
		return nil
	}

	fill := func(n int, x byte) error {
		if len(result)+n > resultLength {
			return formatErr(KindRleOverflow, int64(pos), int64(len(result)+n), "")
		}
		for k := 0; k < n; k++ {
			result = append(result, x)
		}
		return nil
	}

	for pos < len(inbuff) {
		start := pos
		controlByte := inbuff[pos] & 0xF0
		endOfFirstByte := int(inbuff[pos] & 0x0F)
		pos++

		var err error
		switch controlByte {
		case 0x00:
			var b int
			if b, err = next(); err == nil {
				err = copyBytes(b + 64 + endOfFirstByte*256)
			}
		case 0x10:
			var b int
			if b, err = next(); err == nil {
				err = copyBytes(b + 64 + endOfFirstByte*256 + 4096)
			}
		case 0x20:
			err = copyBytes(endOfFirstByte + 96)
		case 0x40:
			var b, x int
			if b, err = next(); err == nil {
				if x, err = next(); err == nil {
					err = fill(b+18+endOfFirstByte*256, byte(x))
				}
			}
		case 0x50:
			var b int
			if b, err = next(); err == nil {
				err = fill(b+17+endOfFirstByte*256, '@')
			}
		case 0x60:
			var b int
			if b, err = next(); err == nil {
				err = fill(b+17+endOfFirstByte*256, ' ')
			}
		case 0x70:
			var b int
			if b, err = next(); err == nil {
				err = fill(b+17+endOfFirstByte*256, 0x00)
			}
		case 0x80:
			err = copyBytes(endOfFirstByte + 1)
		case 0x90:
			err = copyBytes(endOfFirstByte + 17)
		case 0xA0:
			err = copyBytes(endOfFirstByte + 33)
		case 0xB0:
			err = copyBytes(endOfFirstByte + 49)
		case 0xC0:
			var x int
			if x, err = next(); err == nil {
				err = fill(endOfFirstByte+3, byte(x))
			}
		case 0xD0:
			err = fill(endOfFirstByte+2, '@')
		case 0xE0:
			err = fill(endOfFirstByte+2, ' ')
		case 0xF0:
			err = fill(endOfFirstByte+2, 0x00)
		default:
			err = formatErr(KindUnknownRleCommand, int64(start), int64(inbuff[start]), "")
		}
		if err != nil {
			return nil, err
		}
	}

	if len(result) != resultLength {
		return nil, formatErr(KindRleUnderflow, int64(pos), int64(len(result)),
			"input ended before the row was complete")
	}

	return result, nil
}
