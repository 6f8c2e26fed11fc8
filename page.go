package sasreader

import (
	"fmt"
)

const (
	page_type_offset       = 0
	block_count_offset     = 2
	subheader_count_offset = 4
	page_meta_type         = 0
	page_data_type         = 256
	page_mix_type          = 512
	page_mix2_type         = 640
	page_amd_type          = 1024
)

// PageKind classifies a page.
type PageKind int

const (
	PageMeta PageKind = iota
	PageData
	PageMix
	PageAMD
	PageUnknown
)

func (k PageKind) String() string {
	switch k {
	case PageMeta:
		return "meta"
	case PageData:
		return "data"
	case PageMix:
		return "mix"
	case PageAMD:
		return "amd"
	}
	return "unknown"
}

// PageType is the raw page type code.
type PageType uint16

// Kind classifies the code. Codes other than the known ones are
// PageUnknown, which callers skip.
func (t PageType) Kind() PageKind {
	switch t {
	case page_meta_type:
		return PageMeta
	case page_data_type:
		return PageData
	case page_mix_type, page_mix2_type:
		return PageMix
	case page_amd_type:
		return PageAMD
	}
	return PageUnknown
}

func (t PageType) String() string {
	if t.Kind() == PageUnknown {
		return fmt.Sprintf("unknown(%d)", uint16(t))
	}
	return t.Kind().String()
}

// Page is one decoded page. Pointers and Data are views into Raw, and all
// three are only valid until the buffer behind Raw is reused, which for
// pages from a PageIterator is the next call to Next.
type Page struct {
	Type           PageType
	BlockCount     int
	SubheaderCount int

	// The whole page
	Raw []byte

	// The subheader pointer table
	Pointers []byte

	// Everything after the pointer table
	Data []byte

	flags LayoutFlags
}

// DecodePage decodes one page of pageSize bytes.
func DecodePage(b []byte, pageSize int, flags LayoutFlags) (*Page, error) {

	if len(b) != pageSize {
		return nil, formatErr(KindTruncatedPage, int64(len(b)), int64(pageSize), "page length differs from page size")
	}

	prologue := flags.PagePrologue()
	if len(b) < prologue {
		return nil, formatErr(KindTruncatedPage, int64(len(b)), int64(prologue), "page shorter than its prologue")
	}

	bitOffset := flags.PageBitOffset()
	p := &Page{
		Type:           PageType(flags.Uint16(b, bitOffset+page_type_offset)),
		BlockCount:     flags.Uint16(b, bitOffset+block_count_offset),
		SubheaderCount: flags.Uint16(b, bitOffset+subheader_count_offset),
		Raw:            b,
		flags:          flags,
	}

	end := prologue + p.SubheaderCount*flags.PointerWidth()
	if end > len(b) {
		return nil, formatErr(KindSubheaderOutOfBounds, int64(prologue), int64(p.SubheaderCount),
			"subheader pointer table runs past the page end")
	}
	p.Pointers = b[prologue:end]
	p.Data = b[end:]

	return p, nil
}

// Kind is shorthand for p.Type.Kind().
func (p *Page) Kind() PageKind {
	return p.Type.Kind()
}

// Flags returns the layout the page was decoded with.
func (p *Page) Flags() LayoutFlags {
	return p.flags
}

// Subheaders returns the page's non-empty subheaders. Their Data borrows
// from the page.
func (p *Page) Subheaders() ([]SubheaderRecord, error) {

	ptrs, err := ParsePointers(p.Pointers, len(p.Raw), p.flags)
	if err != nil {
		return nil, err
	}

	recs := make([]SubheaderRecord, len(ptrs))
	for i, ptr := range ptrs {
		recs[i] = SubheaderRecord{
			SubheaderPointer: ptr,
			Data:             p.Raw[ptr.Offset : ptr.Offset+ptr.Length],
		}
	}
	return recs, nil
}

// RowRegion returns the bytes that packed rows start at. On mix pages the
// rows follow the pointer table, moved up to an 8 byte boundary when
// alignCorrection is set. Other pages return Data unchanged.
func (p *Page) RowRegion(alignCorrection bool) []byte {
	if p.Kind() != PageMix || !alignCorrection {
		return p.Data
	}
	start := len(p.Raw) - len(p.Data)
	pad := start % 8
	if pad > len(p.Data) {
		return p.Data[len(p.Data):]
	}
	return p.Data[pad:]
}
