package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.MaxConnLifetime)
	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
	assert.Equal(t, 2, cfg.Extract.Page)
	assert.Equal(t, 4, cfg.Extract.Workers)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_URL", "postgres://u:p@localhost:5432/invoices")
	t.Setenv("DB_DIAL_TIMEOUT", "7s")
	t.Setenv("INVOICE_PAGE", "1")
	t.Setenv("EXTRACT_WORKERS", "9")
	t.Setenv("GRPC_RATE_LIMIT", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/invoices", cfg.Database.DSN)
	assert.Equal(t, 7*time.Second, cfg.Database.DialTimeout)
	assert.Equal(t, 1, cfg.Extract.Page)
	assert.Equal(t, 9, cfg.Extract.Workers)
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoices.yaml")
	require.NoError(t, os.WriteFile(path, []byte("CATALOG_PATH: /etc/invoices/catalog.json\nLOG_FORMAT: json\nEXTRACT_WORKERS: 3\n"), 0o644))
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("EXTRACT_WORKERS", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/etc/invoices/catalog.json", cfg.Extract.CatalogPath)
	assert.Equal(t, "json", cfg.Log.Format)
	// environment wins over the file
	assert.Equal(t, 5, cfg.Extract.Workers)
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("LOG_FORMAT: [unterminated\n"), 0o644))
	t.Setenv(ConfigFileEnv, path)

	_, err := LoadConfig()
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
}

func TestConfigValidate(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Database.Driver = "mysql"
	cfg.Extract.Workers = 0
	cfg.Log.Format = "xml"

	err = cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "EXTRACT_WORKERS")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}
