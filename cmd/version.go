package cmd

import (
	"fmt"

	"github.com/0xERR0R/argus/util"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates new command instance
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Args:  cobra.NoArgs,
		Short: "Print the version number of argus",
		// version works without a configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run:               printVersion,
	}
}

func printVersion(cmd *cobra.Command, _ []string) {
	fmt.Fprintln(cmd.OutOrStdout(), "argus")
	fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", util.Version)
	fmt.Fprintf(cmd.OutOrStdout(), "Build time: %s\n", util.BuildTime)
}
