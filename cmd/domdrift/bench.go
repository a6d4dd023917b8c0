package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/domdrift/internal/bench"
	"github.com/dshills/domdrift/pkg/types"
)

func benchCmd(a *app) *cobra.Command {
	var (
		cfg        = bench.DefaultConfig()
		algorithms []string
		methods    []string
	)

	cmd := &cobra.Command{
		Use:   "bench <a.html> <b.html>",
		Short: "Time lite and tree comparisons across chunk sizes and algorithms",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := parseGrid(&cfg, algorithms, methods); err != nil {
				return err
			}
			cfg.UseCache = a.cfg.Compare.UseCache

			docA, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			docB, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			eng, err := a.engine()
			if err != nil {
				return err
			}

			a.log.Info("running benchmark", "cases", len(cfg.Cases()), "iterations", cfg.Iterations)

			results, err := bench.Run(cmd.Context(), eng, string(docA), string(docB), cfg)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, r.Row())
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(bench.Headers, rows))

			stats := eng.CacheStats()
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf(
				"cache: %d entries, %d hits, %d misses, %d evictions (%.1f%% hit rate)",
				stats.Entries, stats.Hits, stats.Misses, stats.Evictions, stats.HitRate()*100)))
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&cfg.ChunkSizes, "chunk-sizes", cfg.ChunkSizes, "Chunk sizes to time")
	cmd.Flags().StringSliceVar(&algorithms, "algorithms", []string{"xxhash", "sha256"}, "Hash algorithms to time")
	cmd.Flags().StringSliceVar(&methods, "methods", []string{"lite", "tree"}, "Comparison methods to time")
	cmd.Flags().IntVar(&cfg.Iterations, "iterations", bench.DefaultIterations, "Timed runs per case")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", 1, "Cases timed at once")
	cmd.Flags().Bool("no-cache", false, "Hash without the shared cache")
	cmd.Flags().Int("workers", 0, "Hashing workers (0: one per CPU)")

	return cmd
}

// parseGrid resolves algorithm and method names into the benchmark grid
func parseGrid(cfg *bench.Config, algorithms, methods []string) error {
	cfg.Algorithms = cfg.Algorithms[:0]
	for _, name := range algorithms {
		alg, err := types.ParseAlgorithm(name)
		if err != nil {
			return err
		}
		cfg.Algorithms = append(cfg.Algorithms, alg)
	}

	cfg.Methods = cfg.Methods[:0]
	for _, name := range methods {
		method, err := types.ParseMethod(name)
		if err != nil {
			return err
		}
		cfg.Methods = append(cfg.Methods, method)
	}

	return nil
}
