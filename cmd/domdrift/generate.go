package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/domdrift/internal/fixture"
)

func generateCmd(a *app) *cobra.Command {
	var (
		opts  fixture.Options
		kinds []string
	)

	cmd := &cobra.Command{
		Use:   "generate <in.html> <out.html>",
		Short: "Write a pseudo-randomly mutated copy of an HTML document",
		Long: `Write a mutated copy of an HTML document for drift fixtures. The same
seed always produces the same output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range kinds {
				kind, err := fixture.ParseKind(name)
				if err != nil {
					return err
				}
				opts.Kinds = append(opts.Kinds, kind)
			}

			doc, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			out, mutations, err := fixture.Mutate(string(doc), opts)
			if err != nil {
				return err
			}

			if err := os.WriteFile(args[1], []byte(out), 0644); err != nil {
				return err
			}

			for _, m := range mutations {
				a.log.Debug("applied mutation", "kind", m.Kind, "path", m.Path, "detail", m.Detail)
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(m.String()))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d mutations (seed %d)\n", args[1], len(mutations), opts.Seed)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&opts.Mutations, "mutations", 5, "Number of mutations")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "Allowed kinds (insert_element, remove_element, edit_text, change_attribute)")

	return cmd
}
