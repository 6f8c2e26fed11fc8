package sasreader

import (
	"io"
)

// PageIterator reads pages one at a time from a byte source positioned at
// the first page. A single buffer is reused, so a returned page is only
// valid until the next call to Next.
type PageIterator struct {
	r         io.Reader
	pageSize  int
	remaining int
	index     int
	flags     LayoutFlags
	buf       []byte
	done      bool
}

// NewPageIterator returns an iterator over pageCount pages of pageSize
// bytes read from r.
func NewPageIterator(r io.Reader, pageSize, pageCount int, flags LayoutFlags) *PageIterator {
	return &PageIterator{
		r:         r,
		pageSize:  pageSize,
		remaining: pageCount,
		flags:     flags,
	}
}

// Next returns the next page. It returns io.EOF after the last page. A
// short read or a malformed page is reported once; every later call
// returns io.EOF.
func (it *PageIterator) Next() (*Page, error) {

	if it.done || it.remaining <= 0 {
		it.done = true
		return nil, io.EOF
	}
	it.remaining--

	var n int
	var err error
	if it.buf == nil {
		// The first page sizes the buffer from what is actually read, so a
		// bogus page size in a short file fails without a large allocation.
		it.buf, err = io.ReadAll(io.LimitReader(it.r, int64(it.pageSize)))
		n = len(it.buf)
		if err == nil && n < it.pageSize {
			it.buf = nil
			err = io.ErrUnexpectedEOF
		}
	} else {
		n, err = io.ReadFull(it.r, it.buf)
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		it.done = true
		return nil, formatErr(KindTruncatedPage, int64(it.index), int64(n), "file ends inside a page")
	} else if err != nil {
		it.done = true
		return nil, err
	}

	p, err := DecodePage(it.buf, it.pageSize, it.flags)
	if err != nil {
		it.done = true
		return nil, err
	}
	it.index++

	return p, nil
}

// Index is the number of pages returned so far.
func (it *PageIterator) Index() int {
	return it.index
}

// RowIterator slices fixed-length rows out of a byte region. The rows are
// views into the region.
type RowIterator struct {
	data      []byte
	pos       int
	rowLength int
	remaining int
	done      bool
}

// NewRowIterator returns an iterator over rowCount rows of rowLength bytes
// packed at the start of data.
func NewRowIterator(data []byte, rowLength, rowCount int) *RowIterator {
	return &RowIterator{
		data:      data,
		rowLength: rowLength,
		remaining: rowCount,
	}
}

// Next returns the next row, or io.EOF when rowCount rows have been read.
// If the region ends inside a row a TruncatedRow error is returned once,
// then io.EOF.
func (it *RowIterator) Next() ([]byte, error) {

	if it.done || it.remaining <= 0 || it.rowLength <= 0 {
		it.done = true
		return nil, io.EOF
	}
	it.remaining--

	end := it.pos + it.rowLength
	if end > len(it.data) {
		it.done = true
		return nil, formatErr(KindTruncatedRow, int64(it.pos), int64(len(it.data)-it.pos), "")
	}

	row := it.data[it.pos:end:end]
	it.pos = end
	return row, nil
}
