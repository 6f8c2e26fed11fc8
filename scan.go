package sasreader

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// PageFunc is called once for every page visited by ScanPages. index is
// the page's position in the file. The page is only valid for the duration
// of the call.
type PageFunc func(index int, p *Page) error

// ScanPages decodes all pages of the file described by hdr using up to
// workers goroutines. Each worker reads a contiguous range of pages through
// its own section of src, so fn may be called concurrently but never twice
// for the same page. The first error returned by fn or by page decoding
// stops the scan and is returned.
func ScanPages(ctx context.Context, src io.ReaderAt, hdr *FileHeader, workers int, fn PageFunc) error {

	if workers < 1 {
		workers = 1
	}
	if workers > hdr.PageCount {
		workers = hdr.PageCount
	}
	if workers == 0 {
		return nil
	}
	if sz, ok := src.(interface{ Size() int64 }); ok {
		if err := checkFirstPage(hdr, sz.Size()); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	per := (hdr.PageCount + workers - 1) / workers
	for lo := 0; lo < hdr.PageCount; lo += per {
		lo := lo
		hi := min(lo+per, hdr.PageCount)
		flags := hdr.Layout
		start := int64(hdr.HeaderLength) + int64(lo)*int64(hdr.PageSize)
		size := int64(hi-lo) * int64(hdr.PageSize)

		g.Go(func() error {
			sr := io.NewSectionReader(src, start, size)
			it := NewPageIterator(sr, hdr.PageSize, hi-lo, flags)
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				p, err := it.Next()
				if err == io.EOF {
					return nil
				} else if err != nil {
					return errors.Wrapf(err, "scan page %d", lo+it.Index())
				}
				if err := fn(lo+it.Index()-1, p); err != nil {
					return err
				}
			}
		})
	}

	return g.Wait()
}
