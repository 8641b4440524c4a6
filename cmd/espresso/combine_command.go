package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCombineCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "combine <bundle> <bundle>...",
		Short: "Merge two or more bundles into one",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			combined, err := openBundle(args[0])
			if err != nil {
				return err
			}

			for _, path := range args[1:] {
				next, err := openBundle(path)
				if err != nil {
					return err
				}
				combined, err = combined.Combine(next)
				if err != nil {
					return fmt.Errorf("combine %s: %w", path, err)
				}
			}

			if err := combined.Save(out); err != nil {
				return fmt.Errorf("save bundle: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(combined.Summary()))
			fmt.Fprintf(cmd.OutOrStdout(), "Saved bundle to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "combined.espresso", "Output bundle path")

	return cmd
}
