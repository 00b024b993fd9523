package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "routectl",
		Short:        "VeloHub route tooling.",
		SilenceUsage: true,
	}
	root.AddCommand(newAnalyzeCmd(), newMigrateCmd())
	return root
}
