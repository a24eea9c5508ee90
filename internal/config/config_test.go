package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/edi")
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("EDI_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/edi", cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "5790001330552", cfg.SenderNumber)
	assert.Equal(t, 30*time.Second, cfg.SegmentInterval.Std())
	assert.Equal(t, 500, cfg.SegmentBatch)
}

func TestLoad_MissingDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_DSN", "")
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("EDI_CONFIG", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_YAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edi.yaml")
	content := "http_addr: \":9090\"\nsegment_interval: 5s\nsender_number: \"5790000432752\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DATABASE_URL", "postgres://localhost/edi")
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("EDI_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.SegmentInterval.Std())
	assert.Equal(t, "5790000432752", cfg.SenderNumber)
	assert.Equal(t, "postgres://localhost/edi", cfg.DatabaseURL)
}
