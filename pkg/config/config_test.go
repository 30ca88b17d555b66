package config_test

import (
	"testing"

	"github.com/sdss/lvmmag/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := config.Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sdss5db", cfg.Database.Database)
	assert.Equal(t, "20GB", cfg.Database.WorkMem)
	assert.Equal(t, 8, cfg.Extract.Order)
	assert.Equal(t, 5, cfg.Extract.Jobs)
	assert.Equal(t, 1, cfg.Ingest.Jobs)
	assert.Equal(t, "catalogdb", cfg.Ingest.Schema)
	assert.Equal(t, "lvm_magnitude", cfg.Ingest.Table)
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Host = "pipelines.sdss.org"
	cfg.Extract.Order = 6
	cfg.Extract.Overwrite = true

	cfg.MergeWithDefaults()

	// Explicit values survive.
	assert.Equal(t, "pipelines.sdss.org", cfg.Database.Host)
	assert.Equal(t, 6, cfg.Extract.Order)
	assert.True(t, cfg.Extract.Overwrite)

	// Gaps are filled.
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "optimistic", cfg.Extract.Filter)
	assert.Equal(t, "*.parquet", cfg.Ingest.Pattern)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{
			name:   "empty host",
			mutate: func(c *config.Config) { c.Database.Host = "" },
		},
		{
			name:   "port out of range",
			mutate: func(c *config.Config) { c.Database.Port = 70000 },
		},
		{
			name:   "bad ssl mode",
			mutate: func(c *config.Config) { c.Database.SSLMode = "maybe" },
		},
		{
			name:   "negative order",
			mutate: func(c *config.Config) { c.Extract.Order = -2 },
		},
		{
			name:   "order too large",
			mutate: func(c *config.Config) { c.Extract.Order = 30 },
		},
		{
			name:   "zero extract jobs",
			mutate: func(c *config.Config) { c.Extract.Jobs = 0 },
		},
		{
			name:   "bad filter",
			mutate: func(c *config.Config) { c.Extract.Filter = "nominal" },
		},
		{
			name:   "zero ingest jobs",
			mutate: func(c *config.Config) { c.Ingest.Jobs = -1 },
		},
		{
			name:   "empty destination table",
			mutate: func(c *config.Config) { c.Ingest.Table = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
