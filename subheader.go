package sasreader

// SubheaderPointer is one entry of a page's subheader pointer table.
// Offset is measured from the start of the page.
type SubheaderPointer struct {
	Offset      int
	Length      int
	Compression byte
	Type        byte
}

// SubheaderRecord is a subheader pointer together with the bytes it points
// at. Data borrows from the page and must not outlive it.
type SubheaderRecord struct {
	SubheaderPointer
	Data []byte
}

// ParsePointers decodes a subheader pointer table. Entries with zero length
// are padding and are left out. Offsets are relative to the start of the
// page, so limit is the full page length and not the length of the data
// region after the pointer table.
func ParsePointers(ptrs []byte, limit int, flags LayoutFlags) ([]SubheaderPointer, error) {

	width := flags.PointerWidth()
	intLen := flags.IntWidth()

	if len(ptrs)%width != 0 {
		return nil, formatErr(KindSubheaderOutOfBounds, int64(len(ptrs)-len(ptrs)%width),
			int64(len(ptrs)), "partial subheader pointer")
	}

	out := make([]SubheaderPointer, 0, len(ptrs)/width)
	for pos := 0; pos < len(ptrs); pos += width {

		offset := flags.Int(ptrs, pos)
		length := flags.Int(ptrs, pos+intLen)
		if length == 0 {
			continue
		}

		if offset < 0 || length < 0 || offset > int64(limit) || length > int64(limit)-offset {
			return nil, formatErr(KindSubheaderOutOfBounds, int64(pos), offset+length,
				"subheader extends past the page")
		}

		out = append(out, SubheaderPointer{
			Offset:      int(offset),
			Length:      int(length),
			Compression: ptrs[pos+2*intLen],
			Type:        ptrs[pos+2*intLen+1],
		})
	}

	return out, nil
}
