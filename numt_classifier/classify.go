package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/pipeline"
	"onsm/numt_classifier/report"
)

func init() {
	addAlignmentFlags(classifyCmd)
	classifyCmd.Flags().String("support", "", "read-support TSV")
	classifyCmd.Flags().String("metrics-file", "", "write Prometheus metrics in textfile format here")
	classifyCmd.Flags().Bool("quiet", false, "skip the summary table")
	addPairingFlags(classifyCmd)
	addScoringFlags(classifyCmd)
	addSummaryFlags(classifyCmd)
}

// addAlignmentFlags registers the PAF, .fai and output directory flags shared by
// classify and pair.
func addAlignmentFlags(cmd *cobra.Command) {
	cmd.Flags().String("mito-to-nuc", "", "PAF with mitochondrial contigs as query")
	cmd.Flags().String("nuc-to-mito", "", "PAF with nuclear contigs as query")
	cmd.Flags().String("nuclear-fai", "", "samtools .fai index of the nuclear assembly")
	cmd.Flags().String("mito-fai", "", "samtools .fai index of the mitochondrial assembly")
	cmd.Flags().String("out", ".", "output directory")
	_ = cmd.MarkFlagRequired("mito-to-nuc")
	_ = cmd.MarkFlagRequired("nuc-to-mito")
}

func pathsFromFlags(cmd *cobra.Command) (pipeline.Paths, error) {
	var p pipeline.Paths
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"mito-to-nuc", &p.MitoToNuc},
		{"nuc-to-mito", &p.NucToMito},
		{"nuclear-fai", &p.NuclearFai},
		{"mito-fai", &p.MitoFai},
		{"out", &p.OutDir},
		{"support", &p.Support},
		{"metrics-file", &p.MetricsFile},
		{"config", &p.ConfigFile},
	} {
		if cmd.Flags().Lookup(f.name) == nil {
			continue
		}
		v, err := cmd.Flags().GetString(f.name)
		if err != nil {
			return p, err
		}
		*f.dst = v
	}
	return p, nil
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Pair, score and classify loci, then write all outputs",
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
		quiet, err := cmd.Flags().GetBool("quiet")
		if err != nil {
			return err
		}
		ctx, cancel, err := runContext(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		out, err := pipeline.Classify(ctx, cfg, paths, version)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if !quiet {
			report.Summary(w, out.Summary, cfg.Summary.PercentPrecision)
		}
		fmt.Fprintln(w, report.CallCounts(
			out.Counts[common.LikelyNUMT],
			out.Counts[common.LikelyNIMT],
			out.Counts[common.Ambiguous]))
		return nil
	},
}
