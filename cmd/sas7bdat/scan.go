package main

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	sasreader "github.com/aaweaver-actuary/sas-reader-2000"
)

type scanSummary struct {
	Pages      int            `yaml:"pages" json:"pages"`
	Kinds      map[string]int `yaml:"kinds" json:"kinds"`
	Subheaders int            `yaml:"subheaders" json:"subheaders"`
	Blocks     int            `yaml:"blocks" json:"blocks"`
}

// scanFile counts page kinds, subheaders and blocks with workers
// goroutines.
func scanFile(ctx context.Context, f *os.File, h *sasreader.FileHeader, workers int) (*scanSummary, error) {

	var mu sync.Mutex
	sum := &scanSummary{Kinds: make(map[string]int)}

	err := sasreader.ScanPages(ctx, f, h, workers, func(_ int, p *sasreader.Page) error {
		var recs []sasreader.SubheaderRecord
		if k := p.Kind(); k != sasreader.PageData && k != sasreader.PageUnknown {
			var err error
			if recs, err = p.Subheaders(); err != nil {
				return err
			}
		}
		mu.Lock()
		defer mu.Unlock()
		sum.Pages++
		sum.Kinds[p.Kind().String()]++
		sum.Subheaders += len(recs)
		sum.Blocks += p.BlockCount
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sum, nil
}

// CmdScan decodes all pages in parallel and prints a census of them.
func CmdScan(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [file]",
		Short: "Decode every page in parallel and count page kinds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			table, err := a.encodingTable()
			if err != nil {
				return err
			}

			h, _, err := sasreader.ReadHeaderWith(f, table)
			if err != nil {
				return errors.Wrap(err, args[0])
			}

			a.log.WithField("workers", a.cfg.Scan.Workers).Debug("scanning pages")
			sum, err := scanFile(cmd.Context(), f, h, a.cfg.Scan.Workers)
			if err != nil {
				return errors.Wrap(err, args[0])
			}

			return a.emit(sum)
		},
	}
}
