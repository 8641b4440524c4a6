package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"espresso/internal/experiment"
)

func newLoadCommand() *cobra.Command {
	var (
		duration float64
		out      string
	)

	cmd := &cobra.Command{
		Use:   "load <folder>",
		Short: "Load a raw session folder and save it as a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]

			info, err := os.Stat(folder)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("session folder %s does not exist", folder)
				}
				return fmt.Errorf("stat session folder: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", folder)
			}

			exp, err := experiment.Load(cmd.Context(), folder, experiment.LoadOptions{
				DurationSeconds: duration,
			})
			if err != nil {
				return fmt.Errorf("load session: %w", err)
			}

			if out == "" {
				out = defaultBundlePath(folder)
			}
			if err := exp.Save(out); err != nil {
				return fmt.Errorf("save bundle: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(exp.Summary()))
			fmt.Fprintf(cmd.OutOrStdout(), "Saved bundle to %s\n", out)
			return nil
		},
	}

	cmd.Flags().Float64Var(&duration, "duration", 0, "Experiment duration in seconds (0 derives it from feed stats)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output bundle path (default <folder>.espresso)")

	return cmd
}
