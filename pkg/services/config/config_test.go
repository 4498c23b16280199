package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
)

func TestLoad_NoFile_UsesDefaults(t *testing.T) {
	// When
	cfg, err := Load("")

	// Then
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyBalanced, cfg.DefaultPolicy())
	assert.Equal(t, reconcile.DayFirst, cfg.Order())
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 4, cfg.Batch.Parallelism)
}

func TestLoad_ValidYAML_PopulatesAllFields(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "reconciler.yaml")
	content := `policy: pending_aware
date_order: month_first
currency: GBP
log_level: debug
server:
  host: 127.0.0.1
  port: 9090
  max_upload_bytes: 1024
s3:
  region: eu-west-2
batch:
  parallelism: 2`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When
	cfg, err := Load(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyPendingAware, cfg.DefaultPolicy())
	assert.Equal(t, reconcile.MonthFirst, cfg.Order())
	assert.Equal(t, "GBP", cfg.Currency)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(1024), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "eu-west-2", cfg.S3.Region)
	assert.Equal(t, 2, cfg.Batch.Parallelism)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "reconciler.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy: plain\nserver:\n  port: 9090"), 0o644))
	t.Setenv("RECONCILER_POLICY", "balanced")
	t.Setenv("RECONCILER_SERVER_PORT", "7070")

	// When
	cfg, err := Load(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyBalanced, cfg.DefaultPolicy())
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_InvalidValues_ReturnError(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "policy", content: "policy: strict", wantErr: "invalid policy"},
		{name: "date order", content: "date_order: year_first", wantErr: "invalid date order"},
		{name: "log level", content: "log_level: loud", wantErr: "invalid log level"},
		{name: "port", content: "server:\n  port: 70000", wantErr: "invalid server port"},
		{name: "parallelism", content: "batch:\n  parallelism: 0", wantErr: "batch.parallelism"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			path := filepath.Join(t.TempDir(), "reconciler.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			// When
			_, err := Load(path)

			// Then
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_MissingFile_ReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
