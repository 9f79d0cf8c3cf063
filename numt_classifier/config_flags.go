package main

import (
	"github.com/spf13/cobra"

	"onsm/numt_classifier/config"
)

// addPairingFlags registers the pair builder settings on cmd.
func addPairingFlags(cmd *cobra.Command) {
	d := config.Default().Pairing
	cmd.Flags().Float64("min-identity", d.MinIdentity, "drop alignments below this identity")
	cmd.Flags().Int("min-length", d.MinLength, "drop alignments shorter than this many bases")
	cmd.Flags().Int("tolerance", d.Tolerance, "bases of slack when matching reciprocal alignments")
	cmd.Flags().Int("merge-gap", d.MergeGap, "chain collinear hits separated by at most this many bases")
	cmd.Flags().String("span-merge", string(d.SpanMerge), "combine reciprocal spans by union|intersection")
	cmd.Flags().String("identity-merge", string(d.IdentityMerge), "locus identity from the best|weighted member")
	cmd.Flags().String("singleton-policy", string(d.Singletons), "keep alignments without a reciprocal partner (discard|retain)")
	cmd.Flags().Bool("allow-organelle-in-nuclear", false, "keep nuclear contigs that look like an organelle genome")
}

// addScoringFlags registers weights, thresholds and read-support overrides on cmd.
func addScoringFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().Float64("w-a", d.Weights.Alignment, "weight of the alignment term")
	cmd.Flags().Float64("w-l", d.Weights.Length, "weight of the length term")
	cmd.Flags().Float64("w-d", d.Weights.Depth, "weight of the depth term")
	cmd.Flags().Float64("w-s", d.Weights.Span, "weight of the span term")
	cmd.Flags().Float64("call-threshold", d.Thresholds.Call, "minimum |score delta| for a call")
	cmd.Flags().Float64("highconf-threshold", d.Thresholds.HighConf, "minimum |score delta| for high_confidence")
	cmd.Flags().Float64("nuclear-median-depth", 0, "override the nuclear genome-wide median depth")
	cmd.Flags().Float64("mito-median-depth", 0, "override the mitochondrial genome-wide median depth")
}

// addSummaryFlags registers assembly sizes and output precision on cmd.
func addSummaryFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64("nuclear-bp-total", 0, "nuclear assembly size (default: sum of --nuclear-fai)")
	cmd.Flags().Uint64("mito-bp-total", 0, "mitochondrial assembly size (default: sum of --mito-fai)")
	cmd.Flags().Int("percent-precision", config.DefaultPercentPrecision, "decimals kept in summary percentages")
}

// loadConfig layers defaults, the --config file, ONSM_* environment values and any
// flag the user set explicitly, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return cfg, err
	}
	if path != "" {
		if cfg, err = config.LoadFile(path, cfg); err != nil {
			return cfg, err
		}
	}
	if cfg, err = config.ApplyEnv(cfg); err != nil {
		return cfg, err
	}

	fs := cmd.Flags()
	var errs []error
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && f.Changed
	}
	float := func(name string, dst *float64) {
		if changed(name) {
			v, err := fs.GetFloat64(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if changed(name) {
			v, err := fs.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	size := func(name string, dst *uint64) {
		if changed(name) {
			v, err := fs.GetUint64(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	str := func(name string, dst *string) {
		if changed(name) {
			v, err := fs.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}

	float("w-a", &cfg.Weights.Alignment)
	float("w-l", &cfg.Weights.Length)
	float("w-d", &cfg.Weights.Depth)
	float("w-s", &cfg.Weights.Span)
	float("call-threshold", &cfg.Thresholds.Call)
	float("highconf-threshold", &cfg.Thresholds.HighConf)
	float("nuclear-median-depth", &cfg.ReadSupport.NuclearMedian)
	float("mito-median-depth", &cfg.ReadSupport.MitoMedian)
	float("min-identity", &cfg.Pairing.MinIdentity)
	integer("min-length", &cfg.Pairing.MinLength)
	integer("tolerance", &cfg.Pairing.Tolerance)
	integer("merge-gap", &cfg.Pairing.MergeGap)
	integer("percent-precision", &cfg.Summary.PercentPrecision)
	integer("threads", &cfg.Threads)
	size("nuclear-bp-total", &cfg.Summary.NuclearBPTotal)
	size("mito-bp-total", &cfg.Summary.MitoBPTotal)

	var spanMerge, identityMerge, singletons string
	str("span-merge", &spanMerge)
	str("identity-merge", &identityMerge)
	str("singleton-policy", &singletons)
	if spanMerge != "" {
		cfg.Pairing.SpanMerge = config.SpanMerge(spanMerge)
	}
	if identityMerge != "" {
		cfg.Pairing.IdentityMerge = config.IdentityMerge(identityMerge)
	}
	if singletons != "" {
		cfg.Pairing.Singletons = config.SingletonPolicy(singletons)
	}
	if changed("allow-organelle-in-nuclear") {
		v, err := fs.GetBool("allow-organelle-in-nuclear")
		errs = append(errs, err)
		cfg.Pairing.AllowOrganelleInNuclear = v
	}

	for _, err := range errs {
		if err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}
