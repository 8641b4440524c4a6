package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSummaryCommand() *cobra.Command {
	var asText bool

	cmd := &cobra.Command{
		Use:   "summary <bundle>",
		Short: "Print the summary of a saved bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := openBundle(args[0])
			if err != nil {
				return err
			}

			if asText {
				fmt.Fprintln(cmd.OutOrStdout(), exp.Summary().String())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(exp.Summary()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asText, "text", false, "Print the plain-text report instead of a table")

	return cmd
}
