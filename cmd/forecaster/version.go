package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leadflow/forecaster/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the forecaster version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "forecaster %s (built with %s)\n", version.Version, runtime.Version())
	},
}
