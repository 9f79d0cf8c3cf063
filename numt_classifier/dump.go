package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"onsm/numt_classifier/pipeline"
)

func init() {
	dumpCmd.Flags().String("db", filepath.Join(".", pipeline.RunDBFile), "run database written by classify")
	dumpCmd.Flags().Bool("yaml", false, "print YAML instead of a table")
}

var dumpCmd = &cobra.Command{
	Use:   "dump [pair_id]",
	Short: "Show one stored locus, or the run summary without an argument",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cmd.Flags().GetString("db")
		if err != nil {
			return err
		}
		asYAML, err := cmd.Flags().GetBool("yaml")
		if err != nil {
			return err
		}
		var pairID string
		if len(args) == 1 {
			pairID = args[0]
		}
		return pipeline.Dump(cmd.Context(), db, pairID, asYAML, cmd.OutOrStdout())
	},
}
