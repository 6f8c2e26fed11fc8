package sasreader

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Reader reads the logical rows of a SAS7BDAT file as raw bytes. It
// decodes the header and the row-related metadata when it is created, then
// streams rows page by page.
type Reader struct {
	header *FileHeader
	meta   Metadata

	file            io.ReadSeeker
	log             logrus.FieldLogger
	table           EncodingTable
	alignCorrection bool

	pages    *PageIterator
	rows     *RowIterator
	dataSubs []SubheaderRecord
	subIndex int
	rowsRead int
	done     bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger for warnings and debug output. By default
// nothing is logged.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Reader) {
		r.log = l
	}
}

// WithAlignCorrection turns the 8 byte alignment of rows on mix pages on
// or off. It is on by default; some files are only read correctly with it
// off, and there is no known way to tell which from the file itself.
func WithAlignCorrection(on bool) Option {
	return func(r *Reader) {
		r.alignCorrection = on
	}
}

// WithEncodingTable resolves the header's encoding byte through t.
func WithEncodingTable(t EncodingTable) Option {
	return func(r *Reader) {
		r.table = t
	}
}

// NewReader returns a Reader for the file in f.
func NewReader(f io.ReadSeeker, opts ...Option) (*Reader, error) {

	r := &Reader{
		file:            f,
		table:           DefaultEncodings,
		alignCorrection: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		l := logrus.New()
		l.Out = io.Discard
		r.log = l
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seek to file start")
	}

	h, _, err := ReadHeaderWith(f, r.table)
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	r.header = h

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "seek to file end")
	}
	if err := checkFirstPage(h, size); err != nil {
		return nil, err
	}
	if _, err := f.Seek(int64(h.HeaderLength), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seek to first page")
	}

	if err := r.parseMetadata(); err != nil {
		return nil, err
	}

	if _, err := f.Seek(int64(h.HeaderLength), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seek to first page")
	}
	r.pages = NewPageIterator(f, h.PageSize, h.PageCount, h.Layout)

	return r, nil
}

// checkFirstPage reports a file of size bytes that cannot hold the first
// page the header declares.
func checkFirstPage(h *FileHeader, size int64) error {
	if h.PageCount == 0 {
		return nil
	}
	if need := int64(h.HeaderLength) + int64(h.PageSize); need > size {
		return formatErr(KindTruncatedPage, size, need, "file too short for its first page")
	}
	return nil
}

// parseMetadata reads pages until the first one holding rows, collecting
// the row size, column size and column text information.
func (r *Reader) parseMetadata() error {

	h := r.header
	it := NewPageIterator(r.file, h.PageSize, h.PageCount, h.Layout)
	sawRowSize := false

	for {
		p, err := it.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrapf(err, "read metadata page %d", it.Index())
		}

		kind := p.Kind()
		if kind == PageUnknown {
			r.log.WithField("page", it.Index()-1).Debugf("skipping page of type %v", p.Type)
			continue
		}
		if kind == PageData {
			break
		}

		recs, err := p.Subheaders()
		if err != nil {
			return errors.Wrapf(err, "subheaders of page %d", it.Index()-1)
		}

		hasRows := kind == PageMix
		for _, rec := range recs {
			if rec.Compression == truncated_subheader_id {
				continue
			}
			sk := ClassifySubheader(rec, h.Layout, r.meta.Compression != CompressionNone)
			switch sk {
			case SubheaderData:
				hasRows = true
			case SubheaderRowSize:
				sawRowSize = true
			case SubheaderUnknown:
				r.log.WithFields(logrus.Fields{"page": it.Index() - 1, "offset": rec.Offset}).
					Debug("unrecognized subheader")
			}
			if err := r.meta.apply(sk, rec, h.Layout); err != nil {
				return errors.Wrapf(err, "%v subheader on page %d", sk, it.Index()-1)
			}
		}

		if hasRows {
			break
		}
	}

	if !sawRowSize {
		return formatErr(KindInvalidLayout, int64(h.HeaderLength), 0, "no row size subheader")
	}

	m := &r.meta
	if m.ColumnCountP1+m.ColumnCountP2 != m.ColumnCount {
		r.log.Warnf("column count mismatch (%d + %d != %d)", m.ColumnCountP1, m.ColumnCountP2, m.ColumnCount)
	}
	r.log.WithFields(logrus.Fields{
		"rows":        m.RowCount,
		"row_length":  m.RowLength,
		"columns":     m.ColumnCount,
		"compression": m.Compression,
	}).Debug("read metadata")

	return nil
}

// Header returns the decoded file header.
func (r *Reader) Header() *FileHeader {
	return r.header
}

// Metadata returns the row-related metadata.
func (r *Reader) Metadata() Metadata {
	return r.meta
}

// RowCount returns the number of rows in the data set.
func (r *Reader) RowCount() int {
	return r.meta.RowCount
}

// RowLength returns the number of bytes in each row.
func (r *Reader) RowLength() int {
	return r.meta.RowLength
}

// Next returns the next logical row. The returned slice may share memory
// with the current page and is only valid until the next call. Next
// returns io.EOF once all rows have been read. After any other error the
// reader is finished and later calls return io.EOF.
func (r *Reader) Next() ([]byte, error) {

	for {
		if r.done || r.rowsRead >= r.meta.RowCount {
			r.done = true
			return nil, io.EOF
		}

		if r.subIndex < len(r.dataSubs) {
			rec := r.dataSubs[r.subIndex]
			r.subIndex++
			row, err := Decompress(rec.Data, r.meta.RowLength, r.meta.RowMode(rec.Length))
			if err != nil {
				r.done = true
				return nil, errors.Wrapf(err, "row %d (page %d, offset %d)", r.rowsRead, r.pages.Index()-1, rec.Offset)
			}
			r.rowsRead++
			return row, nil
		}

		if r.rows != nil {
			row, err := r.rows.Next()
			if err == nil {
				r.rowsRead++
				return row, nil
			}
			r.rows = nil
			if err != io.EOF {
				r.done = true
				return nil, errors.Wrapf(err, "row %d (page %d)", r.rowsRead, r.pages.Index()-1)
			}
		}

		if err := r.nextPage(); err == io.EOF {
			if r.rowsRead < r.meta.RowCount {
				r.log.Warnf("file ended after %d of %d rows", r.rowsRead, r.meta.RowCount)
			}
			r.done = true
			return nil, io.EOF
		} else if err != nil {
			r.done = true
			return nil, err
		}
	}
}

// nextPage loads the row sources of the next page.
func (r *Reader) nextPage() error {

	p, err := r.pages.Next()
	if err == io.EOF {
		return err
	} else if err != nil {
		return errors.Wrapf(err, "read page %d", r.pages.Index())
	}
	r.dataSubs = r.dataSubs[:0]
	r.subIndex = 0

	remaining := r.meta.RowCount - r.rowsRead
	index := r.pages.Index() - 1

	switch p.Kind() {
	case PageMeta, PageAMD, PageMix:
		recs, err := p.Subheaders()
		if err != nil {
			return errors.Wrapf(err, "subheaders of page %d", index)
		}
		for _, rec := range recs {
			if rec.Compression == truncated_subheader_id {
				continue
			}
			if ClassifySubheader(rec, p.Flags(), r.meta.Compression != CompressionNone) == SubheaderData {
				r.dataSubs = append(r.dataSubs, rec)
			}
		}
		if p.Kind() == PageMix {
			n := min(r.meta.MixPageRowCount, remaining-len(r.dataSubs))
			r.rows = NewRowIterator(p.RowRegion(r.alignCorrection), r.meta.RowLength, n)
		}
	case PageData:
		r.rows = NewRowIterator(p.Data, r.meta.RowLength, min(p.BlockCount, remaining))
	default:
		r.log.WithField("page", index).Debugf("skipping page of type %v", p.Type)
	}

	return nil
}

// Read returns up to n rows as independent copies. If n is negative the
// rest of the file is read. It returns (nil, io.EOF) when no rows remain.
func (r *Reader) Read(n int) ([][]byte, error) {

	if n < 0 {
		n = r.meta.RowCount - r.rowsRead
	}

	var out [][]byte
	for i := 0; i < n; i++ {
		row, err := r.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		out = append(out, append([]byte(nil), row...))
	}

	if len(out) == 0 {
		return nil, io.EOF
	}
	return out, nil
}
