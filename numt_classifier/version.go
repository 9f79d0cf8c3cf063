package main

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"onsm/numt_classifier/pipeline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the build version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		name := color.New(color.FgCyan, color.Bold).Sprint(pipeline.Tool)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %s/%s)\n", name, version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
