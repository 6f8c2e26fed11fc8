package config

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ReaderConfig holds options passed to the sas7bdat reader.
type ReaderConfig struct {
	AlignCorrection bool `yaml:"align_correction"`

	// Encoding name used instead of the header's encoding byte. Empty
	// means use the header.
	EncodingOverride string `yaml:"encoding_override"`
}

// ScanConfig holds parallel page scan configuration.
type ScanConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig holds output configuration for the command line tool.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// Config is the top level configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Reader ReaderConfig `yaml:"reader"`
	Scan   ScanConfig   `yaml:"scan"`
	Output OutputConfig `yaml:"output"`
}

var (
	logLevels     = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic"}
	logFormats    = []string{"text", "json"}
	outputFormats = []string{"yaml", "json"}
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Reader: ReaderConfig{
			AlignCorrection: true,
		},
		Scan: ScanConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Format: "yaml",
		},
	}
}

// LoadFromReader reads a YAML configuration from r on top of the defaults.
// A nil or empty reader gives the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {

	cfg := Default()
	if r == nil {
		return cfg, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}
	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config yaml")
	}

	return cfg, nil
}

// Load reads the YAML file at path. A missing file gives the defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return LoadFromReader(nil)
		}
		return nil, errors.Wrapf(err, "failed to open config file %s", path)
	}
	defer file.Close()

	return LoadFromReader(file)
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if !oneOf(c.Log.Level, logLevels) {
		return errors.Errorf("unknown log level %q", c.Log.Level)
	}
	if !oneOf(c.Log.Format, logFormats) {
		return errors.Errorf("unknown log format %q", c.Log.Format)
	}
	if !oneOf(c.Output.Format, outputFormats) {
		return errors.Errorf("unknown output format %q", c.Output.Format)
	}
	if c.Scan.Workers < 1 {
		return errors.Errorf("scan workers must be positive, got %d", c.Scan.Workers)
	}
	return nil
}

func oneOf(s string, values []string) bool {
	s = strings.ToLower(s)
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}
