package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"espresso/pkg/contracts"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := contracts.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, contracts.GetVersionString())
			fmt.Fprintf(out, "  Build time:    %s\n", info.BuildTime)
			fmt.Fprintf(out, "  Git commit:    %s\n", info.GitCommit)
			fmt.Fprintf(out, "  Go version:    %s\n", info.GoVersion)
			fmt.Fprintf(out, "  Platform:      %s/%s\n", info.OS, info.Architecture)
			fmt.Fprintf(out, "  Bundle format: %s\n", info.BundleFormat)
			fmt.Fprintf(out, "  API version:   %s\n", info.APIVersion)
			return nil
		},
	}
}
