package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/domdrift/internal/logger"
	"github.com/dshills/domdrift/pkg/types"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)

	engCfg, err := cfg.EngineConfig()
	require.NoError(t, err)
	require.NoError(t, engCfg.Validate())
	assert.Equal(t, 1, engCfg.ChunkSize)
	assert.Equal(t, types.AlgorithmXXHash, engCfg.Algorithm)
	assert.Equal(t, types.MethodLite, engCfg.Method)
	assert.Equal(t, 80, engCfg.LineDiff.PreviewLength)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domdrift.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
compare:
  chunk_size: 4
  hash_algorithm: cryptographic
  method: tree
line_diff:
  enabled: true
  modify_distance: 2
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Compare.ChunkSize)
	assert.Equal(t, "tree", cfg.Compare.Method)
	assert.True(t, cfg.LineDiff.Enabled)
	assert.Equal(t, 2, cfg.LineDiff.ModifyDistance)
	// untouched keys keep their defaults
	assert.True(t, cfg.Compare.UseCache)
	assert.Equal(t, 80, cfg.LineDiff.PreviewLength)

	engCfg, err := cfg.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, types.AlgorithmSHA256, engCfg.Algorithm)
	assert.Equal(t, types.MethodTree, engCfg.Method)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DOMDRIFT_COMPARE_CHUNK_SIZE", "8")
	t.Setenv("DOMDRIFT_COMPARE_USE_CACHE", "false")
	t.Setenv("DOMDRIFT_LINE_DIFF_ENABLED", "true")
	t.Setenv("DOMDRIFT_LOG_LEVEL", "debug")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Compare.ChunkSize)
	assert.False(t, cfg.Compare.UseCache)
	assert.True(t, cfg.LineDiff.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, logger.DebugLevel, cfg.LoggerConfig().Level)
}

func TestLoad_OverridesWin(t *testing.T) {
	t.Setenv("DOMDRIFT_COMPARE_CHUNK_SIZE", "8")

	cfg, err := Load("", map[string]any{
		"compare.chunk_size": 16,
		"report.output_dir":  "out",
	})
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Compare.ChunkSize)
	assert.Equal(t, "out", cfg.Report.OutputDir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"zero chunk size", map[string]any{"compare.chunk_size": 0}},
		{"zero cache limit", map[string]any{"compare.cache_size_limit": 0}},
		{"unknown algorithm", map[string]any{"compare.hash_algorithm": "md5"}},
		{"unknown method", map[string]any{"compare.method": "fuzzy"}},
		{"bad log level", map[string]any{"log.level": "loud"}},
		{"empty output dir", map[string]any{"report.output_dir": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("", tt.overrides)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, types.ErrInvalidConfiguration)
		})
	}
}

func TestTransformEnvKey(t *testing.T) {
	tests := map[string]string{
		"DOMDRIFT_COMPARE_CHUNK_SIZE":      "compare.chunk_size",
		"DOMDRIFT_LINE_DIFF_PREVIEW_LENGTH": "line_diff.preview_length",
		"DOMDRIFT_STORAGE_DB_PATH":         "storage.db_path",
		"DOMDRIFT_LOG_JSON":                "log.json",
		"DOMDRIFT_UNKNOWN_THING":           "",
		"DOMDRIFT_COMPARE":                 "",
	}

	for in, want := range tests {
		assert.Equal(t, want, transformEnvKey(in), in)
	}
}

func TestResolveDBPath(t *testing.T) {
	cfg := Default()

	cfg.Storage.DBPath = "/tmp/history.db"
	path, err := cfg.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/history.db", path)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg.Storage.DBPath = DefaultDBPath
	path, err = cfg.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".domdrift", "history.db"), path)
}
