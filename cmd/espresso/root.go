package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "espresso",
		Short:         "Analyze ESPRESSO feeding assay sessions",
		Long:          "espresso loads raw ESPRESSO session folders, bundles them for reuse, and exports feed tables and summary views.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(
		newLoadCommand(),
		newSummaryCommand(),
		newExportCommand(),
		newCombineCommand(),
		newLabelCommand(),
		newVersionCommand(),
	)

	return cmd
}
