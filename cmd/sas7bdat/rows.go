package main

import (
	"encoding/csv"
	"encoding/hex"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

// CmdRows writes the rows of a file as CSV.
func CmdRows(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rows [file]",
		Short: "Write the rows as CSV (row number, row bytes in hex)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}
			chunk, err := cmd.Flags().GetInt("chunk")
			if err != nil {
				return err
			}

			f, rdr, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return writeRows(a.out, rdr, limit, chunk)
		},
	}
	cmd.Flags().Int("limit", -1, "maximum number of rows to write (negative for all)")
	cmd.Flags().Int("chunk", 1000, "number of rows read at a time")
	return cmd
}

type rowSource interface {
	Read(n int) ([][]byte, error)
}

func writeRows(out io.Writer, rdr rowSource, limit, chunk int) error {

	if chunk < 1 {
		chunk = 1
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"row", "data"}); err != nil {
		return err
	}

	rec := make([]string, 2)
	n := 0
	for limit < 0 || n < limit {
		want := chunk
		if limit >= 0 {
			want = min(chunk, limit-n)
		}
		rows, err := rdr.Read(want)
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		for _, row := range rows {
			rec[0] = strconv.Itoa(n)
			rec[1] = hex.EncodeToString(row)
			if err := w.Write(rec); err != nil {
				return err
			}
			n++
		}
	}

	w.Flush()
	return w.Error()
}
