package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Security.AuthEnabled)
	assert.Equal(t, 2, cfg.Analysis.MinCycleLength)
	assert.Equal(t, 3, cfg.Analysis.MinLayeringHops)
	assert.Equal(t, 10, cfg.Analysis.SmurfingThreshold)
	assert.InDelta(t, 0.05, cfg.Analysis.MalformedRowTolerance, 1e-9)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FRAUDGRAPH_SERVER__PORT", "9999")
	t.Setenv("FRAUDGRAPH_LOG_LEVEL", "debug")
	t.Setenv("FRAUDGRAPH_ANALYSIS__MIN_CYCLE_LENGTH", "4")
	t.Setenv("FRAUDGRAPH_ANALYSIS__MAX_CYCLE_LENGTH", "6")
	t.Setenv("FRAUDGRAPH_ANALYSIS__FILTER_FALSE_POSITIVES", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Analysis.MinCycleLength)
	assert.True(t, cfg.Analysis.FilterFalsePositives)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7070
analysis:
  smurfing_rule: stddev
  smurfing_stddev_k: 2.5
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "stddev", cfg.Analysis.SmurfingRule)
	assert.InDelta(t, 2.5, cfg.Analysis.SmurfingStdDevK, 1e-9)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad log level", map[string]string{"FRAUDGRAPH_LOG_LEVEL": "loud"}},
		{"bad smurfing rule", map[string]string{"FRAUDGRAPH_ANALYSIS__SMURFING_RULE": "magic"}},
		{"max cycle below min", map[string]string{
			"FRAUDGRAPH_ANALYSIS__MIN_CYCLE_LENGTH": "6",
			"FRAUDGRAPH_ANALYSIS__MAX_CYCLE_LENGTH": "3",
		}},
		{"auth without secret", map[string]string{"FRAUDGRAPH_SECURITY__AUTH_ENABLED": "true"}},
		{"tolerance above one", map[string]string{"FRAUDGRAPH_ANALYSIS__MALFORMED_ROW_TOLERANCE": "1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
		})
	}
}
