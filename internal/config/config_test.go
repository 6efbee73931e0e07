package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_DefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "http", cfg.Oracle.Driver)
	assert.Equal(t, 10*time.Second, cfg.Oracle.Timeout())
	assert.False(t, cfg.Chain.Enabled)
	assert.Equal(t, "info", cfg.Log.GetLevel())
}

func TestLoadFrom_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9000"
database:
  driver: sqlite
  path: ":memory:"
oracle:
  driver: static
  payments:
    - tx_hash: "0xabc"
      sender_address: "0xsender"
      receiver_address: "0xreceiver"
      invoice_amount: "12.5"
      memo: "tier-1"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CROWDFUND_SERVER_PORT", "9090")
	t.Setenv("CROWDFUND_LOG_LEVEL", "debug")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	require.Len(t, cfg.Oracle.Payments, 1)
	assert.Equal(t, "0xabc", cfg.Oracle.Payments[0].TxHash)
	assert.Equal(t, "12.5", cfg.Oracle.Payments[0].InvoiceAmount)
}

func TestLoadFrom_MissingExplicitFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: "sqlite"},
			Oracle:   OracleConfig{Driver: "static", TimeoutSeconds: 5},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Oracle.Driver = "http"
	assert.Error(t, cfg.Validate(), "http oracle needs a base url")

	cfg = base()
	cfg.Oracle.TimeoutSeconds = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Chain.Enabled = true
	assert.Error(t, cfg.Validate(), "chain verification needs an rpc url")
}
