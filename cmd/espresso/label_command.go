package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"espresso/pkg/contracts/domain"
)

func newLabelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Manage labels attached to a bundle",
	}

	cmd.AddCommand(
		newLabelAttachCommand(),
		newLabelRemoveCommand(),
		newLabelClearCommand(),
		newLabelListCommand(),
	)

	return cmd
}

func newLabelAttachCommand() *cobra.Command {
	var (
		value       string
		fromColumns []string
		separator   string
	)

	cmd := &cobra.Command{
		Use:   "attach <bundle> <name>",
		Short: "Attach a fixed or derived label to both tables",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, name := args[0], args[1]

			if value != "" && len(fromColumns) > 0 {
				return fmt.Errorf("--value and --from-columns are mutually exclusive")
			}
			if value == "" && len(fromColumns) == 0 {
				return fmt.Errorf("either --value or --from-columns is required")
			}

			exp, err := openBundle(path)
			if err != nil {
				return err
			}

			spec := domain.FixedLabel(value)
			if len(fromColumns) > 0 {
				spec = domain.DerivedLabel(separator, fromColumns...)
			}
			if err := exp.AttachLabel(name, spec); err != nil {
				return fmt.Errorf("attach label: %w", err)
			}
			if err := exp.Save(path); err != nil {
				return fmt.Errorf("save bundle: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Attached label %s to %s\n", name, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Fixed value for every row")
	cmd.Flags().StringSliceVar(&fromColumns, "from-columns", nil, "Derive the label from these fly-table columns")
	cmd.Flags().StringVar(&separator, "separator", domain.DefaultLabelSeparator, "Separator between derived label components")

	return cmd
}

func newLabelRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <bundle> <name>...",
		Short: "Remove labels from a bundle",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			names := args[1:]

			exp, err := openBundle(path)
			if err != nil {
				return err
			}
			if err := exp.RemoveLabels(names...); err != nil {
				return fmt.Errorf("remove labels: %w", err)
			}
			if err := exp.Save(path); err != nil {
				return fmt.Errorf("save bundle: %w", err)
			}

			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed label %s\n", name)
			}
			return nil
		},
	}

	return cmd
}

func newLabelClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <bundle>",
		Short: "Remove every label from a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			exp, err := openBundle(path)
			if err != nil {
				return err
			}
			removed, err := exp.RemoveAllLabels()
			if err != nil {
				return fmt.Errorf("clear labels: %w", err)
			}
			if err := exp.Save(path); err != nil {
				return fmt.Errorf("save bundle: %w", err)
			}

			for _, name := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed label %s\n", name)
			}
			return nil
		},
	}

	return cmd
}

func newLabelListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <bundle>",
		Short: "List the labels attached to a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := openBundle(args[0])
			if err != nil {
				return err
			}

			labels := exp.AddedLabels()
			if len(labels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No labels attached.")
				return nil
			}
			for _, name := range labels {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	return cmd
}
