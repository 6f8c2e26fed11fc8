package main

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	sasreader "github.com/aaweaver-actuary/sas-reader-2000"
	"github.com/aaweaver-actuary/sas-reader-2000/config"
)

const envPrefix = "SAS7BDAT"

// app is the state shared by all commands once the configuration has been
// resolved.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	out io.Writer
}

// NewRootCmd returns the sas7bdat command with all subcommands attached.
func NewRootCmd() *cobra.Command {

	a := &app{out: os.Stdout}
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "sas7bdat",
		Short:         "Inspect SAS7BDAT files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.out = cmd.OutOrStdout()
			return a.configure(v, cmd.Flags())
		},
	}

	fs := rootCmd.PersistentFlags()
	fs.String("config", "", "YAML configuration file")
	fs.String("log-level", "", "log level (trace, debug, info, warn, error)")
	fs.String("log-format", "", "log format (text or json)")
	fs.Bool("align-correction", true, "align rows on mix pages to 8 bytes")
	fs.String("encoding", "", "text encoding to use instead of the header's")
	fs.Int("workers", 0, "number of workers for the scan command")
	fs.String("format", "", "output format (yaml or json)")

	rootCmd.AddCommand(
		CmdInfo(a),
		CmdPages(a),
		CmdSubheaders(a),
		CmdRows(a),
		CmdScan(a),
	)

	return rootCmd
}

var flagKeys = map[string]string{
	"log.level":                "log-level",
	"log.format":               "log-format",
	"reader.align_correction":  "align-correction",
	"reader.encoding_override": "encoding",
	"scan.workers":             "workers",
	"output.format":            "format",
}

// configure loads the config file, then lets SAS7BDAT_* environment
// variables and explicitly set flags override it.
func (a *app) configure(v *viper.Viper, fs *pflag.FlagSet) error {

	path, err := fs.GetString("config")
	if err != nil {
		return err
	}
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}

	cfg := config.Default()
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("reader.align_correction", cfg.Reader.AlignCorrection)
	v.SetDefault("reader.encoding_override", cfg.Reader.EncodingOverride)
	v.SetDefault("scan.workers", cfg.Scan.Workers)
	v.SetDefault("output.format", cfg.Output.Format)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return errors.Wrapf(err, "bind flag %s", name)
		}
	}

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.Reader.AlignCorrection = v.GetBool("reader.align_correction")
	cfg.Reader.EncodingOverride = v.GetString("reader.encoding_override")
	cfg.Scan.Workers = v.GetInt("scan.workers")
	cfg.Output.Format = v.GetString("output.format")

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	a.cfg = cfg

	a.log = logrus.New()
	a.log.Out = os.Stderr
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.log.SetLevel(level)
	if strings.EqualFold(cfg.Log.Format, "json") {
		a.log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	return nil
}

// readerOptions turns the configuration into reader options.
func (a *app) readerOptions() ([]sasreader.Option, error) {

	opts := []sasreader.Option{
		sasreader.WithLogger(a.log),
		sasreader.WithAlignCorrection(a.cfg.Reader.AlignCorrection),
	}

	table, err := a.encodingTable()
	if err != nil {
		return nil, err
	}

	return append(opts, sasreader.WithEncodingTable(table)), nil
}

// encodingTable returns the table used to resolve the header's encoding
// byte, honoring the configured override.
func (a *app) encodingTable() (sasreader.EncodingTable, error) {
	name := a.cfg.Reader.EncodingOverride
	if name == "" {
		return sasreader.DefaultEncodings, nil
	}
	e, ok := sasreader.EncodingByName(name)
	if !ok {
		return nil, errors.Errorf("unknown encoding %q", name)
	}
	return overrideTable{e}, nil
}

// overrideTable resolves every encoding code to the same encoding.
type overrideTable struct {
	enc sasreader.Encoding
}

func (t overrideTable) Lookup(code byte) (sasreader.Encoding, bool) {
	e := t.enc
	e.Code = code
	return e, true
}

// open opens a file and builds a Reader for it.
func (a *app) open(path string) (*os.File, *sasreader.Reader, error) {

	opts, err := a.readerOptions()
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	rdr, err := sasreader.NewReader(f, opts...)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, path)
	}

	return f, rdr, nil
}
