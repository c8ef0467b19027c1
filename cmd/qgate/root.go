package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/qgate"
)

var rootCmd = &cobra.Command{
	Use:           "qgate",
	Short:         "Approval-gated gateway between sandboxed apps and the wallet host",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", qgate.Name, qgate.Version)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
