package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gitkv version %s\n", version)
			if commit != "none" && commit != "" {
				fmt.Fprintf(out, "  commit: %s\n", commit)
			}
			if date != "unknown" && date != "" {
				fmt.Fprintf(out, "  built:  %s\n", date)
			}
		},
	}
}
