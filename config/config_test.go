package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromReader_ValidConfig(t *testing.T) {
	yamlContent := `
log:
  level: debug
reader:
  align_correction: false
  encoding_override: latin1
scan:
  workers: 8
`
	cfg, err := LoadFromReader(strings.NewReader(yamlContent))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Reader.AlignCorrection)
	assert.Equal(t, "latin1", cfg.Reader.EncodingOverride)
	assert.Equal(t, 8, cfg.Scan.Workers)

	// Not overridden
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "yaml", cfg.Output.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromReader_Empty(t *testing.T) {
	cfg, err := LoadFromReader(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromReader_InvalidYAML(t *testing.T) {
	yamlContent := `
log:
  level: debug
  this: is: invalid: yaml
`
	_, err := LoadFromReader(strings.NewReader(yamlContent))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config yaml")
}

func TestLoad_File(t *testing.T) {
	t.Run("FileExists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output:\n  format: json\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.Output.Format)
	})

	t.Run("FileMissing", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"upper case level", func(c *Config) { c.Log.Level = "WARN" }, ""},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "unknown log level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "unknown log format"},
		{"bad output format", func(c *Config) { c.Output.Format = "csv" }, "unknown output format"},
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }, "scan workers must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
