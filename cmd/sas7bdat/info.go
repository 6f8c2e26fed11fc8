package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sasreader "github.com/aaweaver-actuary/sas-reader-2000"
)

type fileInfo struct {
	Name         string    `yaml:"name" json:"name"`
	Kind         string    `yaml:"kind" json:"kind"`
	Created      time.Time `yaml:"created" json:"created"`
	Modified     time.Time `yaml:"modified" json:"modified"`
	Encoding     string    `yaml:"encoding" json:"encoding"`
	Endianness   string    `yaml:"endianness" json:"endianness"`
	WideOffsets  bool      `yaml:"wide_offsets" json:"wide_offsets"`
	HeaderLength int       `yaml:"header_length" json:"header_length"`
	PageSize     int       `yaml:"page_size" json:"page_size"`
	PageCount    int       `yaml:"page_count" json:"page_count"`
	Release      string    `yaml:"release" json:"release"`
	Host         string    `yaml:"host" json:"host"`
	OSType       string    `yaml:"os_type" json:"os_type"`
	OSName       string    `yaml:"os_name" json:"os_name"`
	RowCount     int       `yaml:"row_count" json:"row_count"`
	RowLength    int       `yaml:"row_length" json:"row_length"`
	ColumnCount  int       `yaml:"column_count" json:"column_count"`
	MixPageRows  int       `yaml:"mix_page_rows" json:"mix_page_rows"`
	Compression  string    `yaml:"compression" json:"compression"`
	CreatorProc  string    `yaml:"creator_proc,omitempty" json:"creator_proc,omitempty"`
}

func newFileInfo(h *sasreader.FileHeader, m sasreader.Metadata) fileInfo {
	return fileInfo{
		Name:         h.Name,
		Kind:         h.Kind.String(),
		Created:      h.Created,
		Modified:     h.Modified,
		Encoding:     h.Layout.Encoding.Name,
		Endianness:   h.Layout.Endianness.String(),
		WideOffsets:  h.Layout.WideOffsets,
		HeaderLength: h.HeaderLength,
		PageSize:     h.PageSize,
		PageCount:    h.PageCount,
		Release:      h.Release,
		Host:         h.Host,
		OSType:       h.OSType.String(),
		OSName:       h.OSName,
		RowCount:     m.RowCount,
		RowLength:    m.RowLength,
		ColumnCount:  m.ColumnCount,
		MixPageRows:  m.MixPageRowCount,
		Compression:  m.Compression.String(),
		CreatorProc:  m.CreatorProc,
	}
}

// CmdInfo prints the header and row metadata of a file.
func CmdInfo(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Show the file header and row metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, rdr, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return a.emit(newFileInfo(rdr.Header(), rdr.Metadata()))
		},
	}
}

// emit writes v in the configured output format.
func (a *app) emit(v interface{}) error {
	if a.cfg.Output.Format == "json" {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
