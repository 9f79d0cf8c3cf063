package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"onsm/numt_classifier/pipeline"
)

func init() {
	addAlignmentFlags(pairCmd)
	addPairingFlags(pairCmd)
}

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Build candidate loci only and write loci.tsv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		paths, err := pathsFromFlags(cmd)
		if err != nil {
			return err
		}
		res, err := pipeline.Pair(cfg, paths)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d loci (%d reciprocal, %d singleton), %d contigs excluded\n",
			len(res.Loci), res.Stats.Reciprocal, res.Stats.Singletons, len(res.Excluded))
		return nil
	},
}
