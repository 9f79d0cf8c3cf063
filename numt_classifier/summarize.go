package main

import (
	"github.com/spf13/cobra"

	"onsm/numt_classifier/pipeline"
	"onsm/numt_classifier/report"
)

func init() {
	summarizeCmd.Flags().String("pairs", "", "pairs.tsv or loci.tsv from an earlier run")
	summarizeCmd.Flags().String("classification", "", "classification.tsv from an earlier run")
	summarizeCmd.Flags().String("nuclear-fai", "", "samtools .fai index of the nuclear assembly")
	summarizeCmd.Flags().String("mito-fai", "", "samtools .fai index of the mitochondrial assembly")
	summarizeCmd.Flags().String("out", ".", "output directory")
	_ = summarizeCmd.MarkFlagRequired("pairs")
	_ = summarizeCmd.MarkFlagRequired("classification")
	addSummaryFlags(summarizeCmd)
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Recompute summary.tsv from pairs and classification tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var in pipeline.SummaryInputs
		for _, f := range []struct {
			name string
			dst  *string
		}{
			{"pairs", &in.Pairs},
			{"classification", &in.Classification},
			{"nuclear-fai", &in.NuclearFai},
			{"mito-fai", &in.MitoFai},
			{"out", &in.OutDir},
		} {
			if *f.dst, err = cmd.Flags().GetString(f.name); err != nil {
				return err
			}
		}
		m, err := pipeline.Summarize(cfg, in)
		if err != nil {
			return err
		}
		report.Summary(cmd.OutOrStdout(), m, cfg.Summary.PercentPrecision)
		return nil
	},
}
