package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/domdrift/internal/storage"
)

func historyCmd(a *app) *cobra.Command {
	var filter storage.ListFilter

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored comparisons, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			comparisons, err := store.ListComparisons(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if len(comparisons) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No comparisons stored"))
				return nil
			}

			rows := make([][]string, 0, len(comparisons))
			for _, c := range comparisons {
				rows = append(rows, []string{
					c.ID,
					c.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					c.VersionA,
					c.VersionB,
					strconv.FormatFloat(c.Result.DifferencePercent, 'f', 2, 64) + "%",
					string(c.Result.Method),
					c.Label,
					strconv.Itoa(c.LineDiffCount),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"id", "created", "version a", "version b", "diff", "method", "label", "line diffs"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&filter.Limit, "limit", storage.DefaultListLimit, "Maximum comparisons to list")
	cmd.Flags().StringVar(&filter.Version, "version", "", "Only comparisons involving this version")
	cmd.Flags().StringVar(&filter.Label, "label", "", "Only comparisons with this label")

	return cmd
}

func showCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored comparison",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			c, err := store.GetComparison(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			r := c.Report()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), r)
			}

			printSummary(cmd.OutOrStdout(), r)
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf(
				"%s | %s | chunk size %d | %d/%d chunks common | %s",
				c.Result.Method, c.Result.Algorithm, c.Result.ChunkSize,
				c.Result.CommonChunks, c.Result.CommonChunks+c.Result.DifferentChunks,
				c.CreatedAt.Local().Format("2006-01-02 15:04:05"))))
			if c.Label != "" {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("label: "+c.Label))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored report as JSON")

	return cmd
}
