package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/domdrift/internal/report"
	"github.com/dshills/domdrift/internal/storage"
	"github.com/dshills/domdrift/pkg/types"
)

// compareFlags are the per-command flags of compare and report
type compareFlags struct {
	json  bool
	save  bool
	label string
}

// addEngineFlags registers the flags mapped onto the compare and line_diff sections
func addEngineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("chunk-size", 1, "Tokens per chunk")
	f.String("algorithm", "xxhash", "Hash algorithm (xxhash, sha256)")
	f.String("method", "lite", "Comparison method (lite, tree)")
	f.Int("workers", 0, "Hashing workers (0: one per CPU)")
	f.Bool("no-cache", false, "Hash without the shared cache")
	f.Bool("no-parallel", false, "Hash on a single worker")
	f.Bool("line-diff", false, "Report added, removed and modified line ranges")
	f.Int("modify-distance", 0, "Maximum start-line distance for pairing a removal with an addition")
	f.Int("preview-length", 80, "Maximum characters of content preview")
}

func compareCmd(a *app) *cobra.Command {
	var flags compareFlags

	cmd := &cobra.Command{
		Use:   "compare <a.html> <b.html>",
		Short: "Compare two HTML documents",
		Long: `Compare two HTML documents and print the percentage of content chunks
that differ. Both comparison methods report the same percentage; they differ
only in how the work is organized.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.compareFiles(args[0], args[1])
			if err != nil {
				return err
			}

			if flags.save {
				if err := a.saveReport(cmd.Context(), r, flags.label); err != nil {
					return err
				}
			}

			if flags.json {
				return printJSON(cmd.OutOrStdout(), r)
			}

			printSummary(cmd.OutOrStdout(), r)
			if flags.save {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Saved comparison "+r.ID))
			}
			return nil
		},
	}

	addEngineFlags(cmd)
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&flags.save, "save", false, "Store the result in the comparison history")
	cmd.Flags().StringVar(&flags.label, "label", "", "Label stored with the comparison")

	return cmd
}

func reportCmd(a *app) *cobra.Command {
	var flags compareFlags

	cmd := &cobra.Command{
		Use:   "report <a.html> <b.html>",
		Short: "Compare two HTML documents and write a JSON report file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.compareFiles(args[0], args[1])
			if err != nil {
				return err
			}

			path, err := report.Write(a.cfg.Report.OutputDir, r)
			if err != nil {
				return err
			}
			a.log.Info("wrote report", "path", path)

			if flags.save {
				if err := a.saveReport(cmd.Context(), r, flags.label); err != nil {
					return err
				}
			}

			printSummary(cmd.OutOrStdout(), r)
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Report written to "+path))
			return nil
		},
	}

	addEngineFlags(cmd)
	cmd.Flags().String("output-dir", "results", "Directory for report files")
	cmd.Flags().BoolVar(&flags.save, "save", false, "Also store the result in the comparison history")
	cmd.Flags().StringVar(&flags.label, "label", "", "Label stored with the comparison")

	return cmd
}

// compareFiles reads both documents and runs one comparison with the loaded configuration
func (a *app) compareFiles(pathA, pathB string) (*report.Report, error) {
	docA, err := os.ReadFile(pathA)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pathA, err)
	}
	docB, err := os.ReadFile(pathB)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pathB, err)
	}

	eng, err := a.engine()
	if err != nil {
		return nil, err
	}

	c, err := eng.CompareHTML(string(docA), string(docB), eng.Options())
	if err != nil {
		return nil, err
	}

	var entries []types.LineDiffEntry
	if a.cfg.LineDiff.Enabled {
		entries, err = eng.LineDiff(c)
		if err != nil {
			return nil, err
		}
	}

	a.log.Debug("compared documents",
		"a", pathA,
		"b", pathB,
		"chunks_a", c.Result.TotalChunksA,
		"chunks_b", c.Result.TotalChunksB,
		"processing_time", c.Result.ProcessingTime)

	return report.New(pathA, pathB, c.Result, entries)
}

// saveReport stores a report in the history database
func (a *app) saveReport(ctx context.Context, r *report.Report, label string) error {
	store, err := a.openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	c, err := storage.FromReport(r)
	if err != nil {
		return err
	}
	c.Label = label

	if err := store.SaveComparison(ctx, c); err != nil {
		return fmt.Errorf("failed to save comparison: %w", err)
	}
	a.log.Debug("saved comparison", "id", c.ID, "label", label)
	return nil
}

// printSummary prints the headline percentage and any line diffs
func printSummary(w io.Writer, r *report.Report) {
	fmt.Fprintf(w, "DOM diff between %s and %s is %.2f%%\n", r.VersionA, r.VersionB, r.DifferencePercent)

	for _, d := range r.LineDiffs {
		fmt.Fprintf(w, "  %-12s %s\n", d.LineRange, changeStyle(d.ChangeType).Render(d.ContentPreview))
	}
}

func printJSON(w io.Writer, r *report.Report) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
