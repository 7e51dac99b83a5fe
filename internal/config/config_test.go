package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "use_mocks: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 35.0, cfg.TargetCMVPercent)
	assert.Equal(t, 10, cfg.PreviewRows)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, 1, cfg.CSV.HeaderRows)
	assert.Equal(t, 2, cfg.CSV.DataStartRow)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
api_url: https://api.example.com
request_timeout: 3s
target_cmv_percent: 30
csv:
  delimiter: ";"
  header_rows: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30.0, cfg.TargetCMVPercent)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.Equal(t, 3, cfg.CSV.DataStartRow)
}

func TestLoad_MissingFileNeedsAPIURLOrMocks(t *testing.T) {
	t.Setenv("BROAI_USE_MOCKS", "")
	t.Setenv("BROAI_API_URL", "")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "api_url is required")

	t.Setenv("BROAI_USE_MOCKS", "true")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.UseMocks)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "api_url: [unterminated\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BROAI_API_URL":   "http://localhost:9000",
		"BROAI_API_TOKEN": "secret",
		"BROAI_USE_MOCKS": "false",
		"BROAI_LOG_LEVEL": "debug",
		"BROAI_TIMEOUT":   "2s",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Config{APIURL: "http://from-file", UseMocks: true}
	require.NoError(t, applyEnv(&cfg, lookup))

	assert.Equal(t, "http://localhost:9000", cfg.APIURL)
	assert.Equal(t, "secret", cfg.APIToken)
	assert.False(t, cfg.UseMocks)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)

	env["BROAI_TIMEOUT"] = "soon"
	assert.ErrorContains(t, applyEnv(&cfg, lookup), "BROAI_TIMEOUT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"target too high", func(c *Config) { c.TargetCMVPercent = 100 }, "target_cmv_percent"},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, "request_timeout"},
		{"long delimiter", func(c *Config) { c.CSV.Delimiter = ";;" }, "csv.delimiter"},
		{"data inside header", func(c *Config) { c.CSV.DataStartRow = 1 }, "csv.data_start_row"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())
}
