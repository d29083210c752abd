package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Import.HeaderScanRows)
	assert.Equal(t, 5, cfg.Import.SampleSize)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, TargetAPI, cfg.Store.Target)
	assert.Equal(t, 30*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "oc_consolidator.db", cfg.DB.DSN)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Redis.PreviewTTL)
	assert.Equal(t, "{timestamp}_{uuid}", cfg.Reports.FileNameFormat)
}

func TestLoadReadsYAML(t *testing.T) {
	path := writeConfig(t, `
import:
  header_scan_rows: 10
  sample_size: 3
csv:
  delimiter: ";"
  encoding: Windows-1252
store:
  target: db
  timeout: 5s
db:
  driver: sqlite
  dsn: ":memory:"
log:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Import.HeaderScanRows)
	assert.Equal(t, 3, cfg.Import.SampleSize)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.Equal(t, "Windows-1252", cfg.CSV.Encoding)
	assert.Equal(t, TargetDB, cfg.Store.Target)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, ":memory:", cfg.DB.DSN)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestEnvironmentOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
store:
  target: api
  base_url: https://yaml.example.com
`)
	t.Setenv("OCC_STORE_BASE_URL", "https://env.example.com")
	t.Setenv("OCC_STORE_API_TOKEN", "secret")
	t.Setenv("OCC_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Store.BaseURL)
	assert.Equal(t, "secret", cfg.Store.APIToken)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.NoError(t, cfg.RequireAPI())
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Store.Target = "ftp"
	cfg.DB.Driver = "mysql"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestRequireAPIWithoutBaseURL(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Error(t, cfg.RequireAPI())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "import: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}
