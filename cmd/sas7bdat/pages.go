package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	sasreader "github.com/aaweaver-actuary/sas-reader-2000"
)

// walkPages calls fn for every page of the file in order. The Reader is
// built first so that the metadata is available to fn.
func (a *app) walkPages(path string, fn func(rdr *sasreader.Reader, index int, p *sasreader.Page) error) error {

	f, rdr, err := a.open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := rdr.Header()
	if _, err := f.Seek(int64(h.HeaderLength), io.SeekStart); err != nil {
		return errors.Wrap(err, "seek to first page")
	}

	it := sasreader.NewPageIterator(f, h.PageSize, h.PageCount, h.Layout)
	for {
		p, err := it.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Wrapf(err, "page %d", it.Index())
		}
		if err := fn(rdr, it.Index()-1, p); err != nil {
			return err
		}
	}
}

// CmdPages lists the pages of a file.
func CmdPages(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pages [file]",
		Short: "List the type and counts of every page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.out, "%6s %-12s %8s %10s\n", "page", "type", "blocks", "subheaders")
			return a.walkPages(args[0], func(_ *sasreader.Reader, index int, p *sasreader.Page) error {
				_, err := fmt.Fprintf(a.out, "%6d %-12v %8d %10d\n", index, p.Type, p.BlockCount, p.SubheaderCount)
				return err
			})
		},
	}
}

// CmdSubheaders lists the subheader pointers of every page.
func CmdSubheaders(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subheaders [file]",
		Short: "List the subheader pointers of every page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.out, "%6s %8s %8s %4s %4s %s\n", "page", "offset", "length", "comp", "type", "kind")
			return a.walkPages(args[0], func(rdr *sasreader.Reader, index int, p *sasreader.Page) error {
				if p.Kind() == sasreader.PageData || p.Kind() == sasreader.PageUnknown {
					return nil
				}
				recs, err := p.Subheaders()
				if err != nil {
					return errors.Wrapf(err, "page %d", index)
				}
				compressed := rdr.Metadata().Compression != sasreader.CompressionNone
				for _, rec := range recs {
					kind := sasreader.ClassifySubheader(rec, p.Flags(), compressed)
					fmt.Fprintf(a.out, "%6d %8d %8d %4d %4d %v\n",
						index, rec.Offset, rec.Length, rec.Compression, rec.Type, kind)
				}
				return nil
			})
		},
	}
}
