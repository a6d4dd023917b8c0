package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dshills/domdrift/internal/config"
	"github.com/dshills/domdrift/internal/engine"
	"github.com/dshills/domdrift/internal/logger"
	"github.com/dshills/domdrift/internal/storage"
)

// app carries state shared by every command once flags are parsed
type app struct {
	configPath string

	cfg *config.Config
	log logger.Logger
}

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"chunk-size":      "compare.chunk_size",
	"algorithm":       "compare.hash_algorithm",
	"method":          "compare.method",
	"workers":         "compare.workers",
	"line-diff":       "line_diff.enabled",
	"modify-distance": "line_diff.modify_distance",
	"preview-length":  "line_diff.preview_length",
	"db":              "storage.db_path",
	"output-dir":      "report.output_dir",
	"log-level":       "log.level",
	"log-json":        "log.json",
}

// negatedKeys maps --no-* flags to the boolean keys they switch off
var negatedKeys = map[string]string{
	"no-cache":    "compare.use_cache",
	"no-parallel": "compare.use_parallel",
	"no-history":  "storage.enabled",
}

func rootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "domdrift",
		Short:         "Measure structural drift between HTML documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.SetVersionTemplate(versionText())

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "Log as JSON")
	flags.String("db", config.DefaultDBPath, "Comparison history database")
	flags.Bool("no-history", false, "Disable the comparison history database")

	root.AddCommand(
		compareCmd(a),
		reportCmd(a),
		historyCmd(a),
		showCmd(a),
		generateCmd(a),
		benchCmd(a),
		serveCmd(a),
		versionCmd(),
	)

	return root
}

// load builds configuration from file, environment and changed flags
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, overrides(cmd.Flags()))
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger.NewLogger(cfg.LoggerConfig())
	return nil
}

// overrides collects configuration keys for flags set on the command line
func overrides(flags *pflag.FlagSet) map[string]any {
	out := make(map[string]any)
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			out[key] = f.Value.String()
		}
		if key, ok := negatedKeys[f.Name]; ok && f.Value.String() == "true" {
			out[key] = false
		}
	})
	return out
}

// engine creates an engine from the loaded configuration
func (a *app) engine() (*engine.Engine, error) {
	engCfg, err := a.cfg.EngineConfig()
	if err != nil {
		return nil, err
	}
	return engine.New(engCfg)
}

// openStorage opens the history database, failing when history is disabled
func (a *app) openStorage() (*storage.SQLiteStorage, error) {
	if !a.cfg.Storage.Enabled {
		return nil, fmt.Errorf("comparison history is disabled")
	}

	dbPath, err := a.cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	a.log.Debug("opened history", "path", dbPath, "driver", storage.DriverName)
	return store, nil
}

func versionText() string {
	return fmt.Sprintf("domdrift %s\nBuild Time: %s\nBuild Mode: %s\nSQLite Driver: %s\n",
		version, buildTime, storage.BuildMode, storage.DriverName)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionText())
		},
	}
}
