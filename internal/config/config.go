package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dshills/domdrift/internal/engine"
	"github.com/dshills/domdrift/internal/hasher"
	"github.com/dshills/domdrift/internal/linediff"
	"github.com/dshills/domdrift/internal/logger"
	"github.com/dshills/domdrift/pkg/types"
)

// DefaultDBPath is the history database location when none is configured
const DefaultDBPath = "~/.domdrift/history.db"

// Config is the complete application configuration
type Config struct {
	Compare  CompareConfig  `koanf:"compare"`
	LineDiff LineDiffConfig `koanf:"line_diff"`
	Storage  StorageConfig  `koanf:"storage"`
	Report   ReportConfig   `koanf:"report"`
	Log      LogConfig      `koanf:"log"`
}

// CompareConfig holds the comparison defaults
type CompareConfig struct {
	ChunkSize      int    `koanf:"chunk_size"       validate:"min=1"`
	HashAlgorithm  string `koanf:"hash_algorithm"   validate:"required"`
	Method         string `koanf:"method"           validate:"required"`
	UseParallel    bool   `koanf:"use_parallel"`
	UseCache       bool   `koanf:"use_cache"`
	CacheSizeLimit int    `koanf:"cache_size_limit" validate:"min=1"`
	Workers        int    `koanf:"workers"          validate:"min=0"`
}

// LineDiffConfig controls line-level reporting
type LineDiffConfig struct {
	Enabled        bool `koanf:"enabled"`
	ModifyDistance int  `koanf:"modify_distance" validate:"min=0"`
	PreviewLength  int  `koanf:"preview_length"  validate:"min=1"`
}

// StorageConfig controls the comparison history database
type StorageConfig struct {
	Enabled bool   `koanf:"enabled"`
	DBPath  string `koanf:"db_path"`
}

// ReportConfig controls JSON report files
type ReportConfig struct {
	OutputDir string `koanf:"output_dir" validate:"required"`
}

// LogConfig controls the logger
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error disabled"`
	JSON  bool   `koanf:"json"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Compare: CompareConfig{
			ChunkSize:      engine.DefaultChunkSize,
			HashAlgorithm:  string(types.AlgorithmXXHash),
			Method:         string(types.MethodLite),
			UseParallel:    true,
			UseCache:       true,
			CacheSizeLimit: hasher.DefaultCacheSize,
			Workers:        runtime.NumCPU(),
		},
		LineDiff: LineDiffConfig{
			Enabled:        false,
			ModifyDistance: 0,
			PreviewLength:  linediff.DefaultPreviewLength,
		},
		Storage: StorageConfig{
			Enabled: true,
			DBPath:  DefaultDBPath,
		},
		Report: ReportConfig{
			OutputDir: "results",
		},
		Log: LogConfig{
			Level: string(logger.InfoLevel),
			JSON:  false,
		},
	}
}

// EngineConfig converts the compare and line_diff sections to an engine configuration
func (c *Config) EngineConfig() (*engine.Config, error) {
	algorithm, err := types.ParseAlgorithm(c.Compare.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	method, err := types.ParseMethod(c.Compare.Method)
	if err != nil {
		return nil, err
	}

	return &engine.Config{
		ChunkSize:      c.Compare.ChunkSize,
		Algorithm:      algorithm,
		Method:         method,
		UseParallel:    c.Compare.UseParallel,
		UseCache:       c.Compare.UseCache,
		CacheSizeLimit: c.Compare.CacheSizeLimit,
		Workers:        c.Compare.Workers,
		LineDiff: linediff.Policy{
			ModifyDistance: c.LineDiff.ModifyDistance,
			PreviewLength:  c.LineDiff.PreviewLength,
		},
	}, nil
}

// LoggerConfig converts the log section to a logger configuration
func (c *Config) LoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(c.Log.Level)
	cfg.JSON = c.Log.JSON
	return cfg
}

// ResolveDBPath expands a leading "~" in the database path
func (c *Config) ResolveDBPath() (string, error) {
	return expandHome(c.Storage.DBPath)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
