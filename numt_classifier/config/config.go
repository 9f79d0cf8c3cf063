package config

import (
	"math"
	"runtime"

	"onsm/numt_classifier/common"
)

// Scoring weights
const (
	DefaultWeightAlignment = 0.25
	DefaultWeightLength    = 0.15
	DefaultWeightDepth     = 0.25
	DefaultWeightSpan      = 0.25
)

// Decision thresholds
const (
	DefaultCallThreshold     = 0.15
	DefaultHighConfThreshold = 0.30
)

// Feature shaping parameters
const (
	DefaultAlnLenScale       = 200.0   // bp; aln_score reaches ~99 % of identity by 1 kb
	DefaultLengthHalf        = 5000.0  // bp giving length_score 0.5
	DefaultLengthCap         = 100_000 // bp; length_score is flat beyond this
	DefaultDepthContrastGain = 2.3865  // tanh gain per log2 unit of host/donor depth ratio
	DepthRatioEpsilon        = 1e-3
)

// Alignment filtering and pairing parameters
const (
	DefaultMinIdentity = 0.90
	DefaultMinLength   = 100
	DefaultTolerance   = 0
	DefaultMergeGap    = 50
)

// Merging parameters for collinear hits
const MaxGapRatioDifference = 0.55 // float64

// Organelle-like nuclear contig detection
const (
	OrganelleMinIdentity     = 0.995
	OrganelleMinMitoCoverage = 0.95
	OrganelleMaxSizeRatio    = 2.0
)

// Summary parameters
const DefaultPercentPrecision = 6

// SpanMerge selects how member spans of a reciprocal group are combined.
type SpanMerge string

const (
	SpanUnion        SpanMerge = "union"
	SpanIntersection SpanMerge = "intersection"
)

// IdentityMerge selects where a locus takes its aln_len / aln_ident from.
type IdentityMerge string

const (
	IdentityBest     IdentityMerge = "best"
	IdentityWeighted IdentityMerge = "weighted"
)

// SingletonPolicy decides the fate of alignments without a reciprocal partner.
type SingletonPolicy string

const (
	SingletonDiscard SingletonPolicy = "discard"
	SingletonRetain  SingletonPolicy = "retain"
)

// Weights are the additive term weights. They are used as given, not normalized.
type Weights struct {
	Alignment float64 `toml:"w_a" yaml:"w_a"`
	Length    float64 `toml:"w_l" yaml:"w_l"`
	Depth     float64 `toml:"w_d" yaml:"w_d"`
	Span      float64 `toml:"w_s" yaml:"w_s"`
}

// Scoring shapes the individual score terms.
type Scoring struct {
	AlnLenScale       float64 `toml:"aln_len_scale" yaml:"aln_len_scale"`
	LengthHalf        float64 `toml:"length_half" yaml:"length_half"`
	LengthCap         int     `toml:"length_cap" yaml:"length_cap"`
	DepthContrastGain float64 `toml:"depth_contrast_gain" yaml:"depth_contrast_gain"`
}

// Thresholds drive the classifier.
type Thresholds struct {
	Call     float64 `toml:"call_threshold" yaml:"call_threshold"`
	HighConf float64 `toml:"highconf_threshold" yaml:"highconf_threshold"`
}

// Pairing controls the locus pair builder.
type Pairing struct {
	MinIdentity             float64         `toml:"min_identity" yaml:"min_identity"`
	MinLength               int             `toml:"min_length" yaml:"min_length"`
	Tolerance               int             `toml:"tolerance" yaml:"tolerance"`
	MergeGap                int             `toml:"merge_gap" yaml:"merge_gap"`
	SpanMerge               SpanMerge       `toml:"span_merge" yaml:"span_merge"`
	IdentityMerge           IdentityMerge   `toml:"identity_merge" yaml:"identity_merge"`
	Singletons              SingletonPolicy `toml:"singleton_policy" yaml:"singleton_policy"`
	AllowOrganelleInNuclear bool            `toml:"allow_organelle_in_nuclear" yaml:"allow_organelle_in_nuclear"`
}

// ReadSupport carries optional median overrides. Zero means "not given".
type ReadSupport struct {
	NuclearMedian float64 `toml:"nuclear_median_depth" yaml:"nuclear_median_depth"`
	MitoMedian    float64 `toml:"mito_median_depth" yaml:"mito_median_depth"`
}

// Summary controls genome-level aggregation.
type Summary struct {
	NuclearBPTotal   uint64 `toml:"nuclear_bp_total" yaml:"nuclear_bp_total"`
	MitoBPTotal      uint64 `toml:"mito_bp_total" yaml:"mito_bp_total"`
	PercentPrecision int    `toml:"percent_precision" yaml:"percent_precision"`
}

// Config is the immutable run configuration threaded through every stage.
type Config struct {
	Weights     Weights     `toml:"weights" yaml:"weights"`
	Scoring     Scoring     `toml:"scoring" yaml:"scoring"`
	Thresholds  Thresholds  `toml:"thresholds" yaml:"thresholds"`
	Pairing     Pairing     `toml:"pairing" yaml:"pairing"`
	ReadSupport ReadSupport `toml:"read_support" yaml:"read_support"`
	Summary     Summary     `toml:"summary" yaml:"summary"`
	Threads     int         `toml:"threads" yaml:"threads"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Weights: Weights{
			Alignment: DefaultWeightAlignment,
			Length:    DefaultWeightLength,
			Depth:     DefaultWeightDepth,
			Span:      DefaultWeightSpan,
		},
		Scoring: Scoring{
			AlnLenScale:       DefaultAlnLenScale,
			LengthHalf:        DefaultLengthHalf,
			LengthCap:         DefaultLengthCap,
			DepthContrastGain: DefaultDepthContrastGain,
		},
		Thresholds: Thresholds{
			Call:     DefaultCallThreshold,
			HighConf: DefaultHighConfThreshold,
		},
		Pairing: Pairing{
			MinIdentity:   DefaultMinIdentity,
			MinLength:     DefaultMinLength,
			Tolerance:     DefaultTolerance,
			MergeGap:      DefaultMergeGap,
			SpanMerge:     SpanUnion,
			IdentityMerge: IdentityBest,
			Singletons:    SingletonDiscard,
		},
		Summary: Summary{
			PercentPrecision: DefaultPercentPrecision,
		},
		Threads: runtime.GOMAXPROCS(0),
	}
}

// Validate rejects configurations that would make any stage meaningless.
// Every error wraps common.ErrConfiguration.
func (c Config) Validate() error {
	w := c.Weights
	for _, wt := range []struct {
		name string
		v    float64
	}{{"w_a", w.Alignment}, {"w_l", w.Length}, {"w_d", w.Depth}, {"w_s", w.Span}} {
		if !finite(wt.v) || wt.v < 0 || wt.v > 1 {
			return common.ConfigError("weight %s=%v must be within [0,1]", wt.name, wt.v)
		}
	}
	if w.Alignment+w.Length+w.Depth+w.Span == 0 {
		return common.ConfigError("at least one weight must be positive")
	}

	t := c.Thresholds
	if !finite(t.Call) || t.Call < 0 {
		return common.ConfigError("call_threshold=%v must be a non-negative number", t.Call)
	}
	if !finite(t.HighConf) || t.HighConf < t.Call {
		return common.ConfigError("highconf_threshold=%v must be >= call_threshold=%v", t.HighConf, t.Call)
	}

	s := c.Scoring
	if !finite(s.AlnLenScale) || s.AlnLenScale <= 0 {
		return common.ConfigError("aln_len_scale=%v must be positive", s.AlnLenScale)
	}
	if !finite(s.LengthHalf) || s.LengthHalf <= 0 {
		return common.ConfigError("length_half=%v must be positive", s.LengthHalf)
	}
	if s.LengthCap <= 0 {
		return common.ConfigError("length_cap=%d must be positive", s.LengthCap)
	}
	if !finite(s.DepthContrastGain) || s.DepthContrastGain < 0 {
		return common.ConfigError("depth_contrast_gain=%v must be non-negative", s.DepthContrastGain)
	}

	p := c.Pairing
	if !finite(p.MinIdentity) || p.MinIdentity < 0 || p.MinIdentity > 1 {
		return common.ConfigError("min_identity=%v must be within [0,1]", p.MinIdentity)
	}
	if p.MinLength < 0 {
		return common.ConfigError("min_length=%d must be non-negative", p.MinLength)
	}
	if p.Tolerance < 0 {
		return common.ConfigError("tolerance=%d must be non-negative", p.Tolerance)
	}
	if p.MergeGap < 0 {
		return common.ConfigError("merge_gap=%d must be non-negative", p.MergeGap)
	}
	switch p.SpanMerge {
	case SpanUnion, SpanIntersection:
	default:
		return common.ConfigError("span_merge=%q must be %q or %q", p.SpanMerge, SpanUnion, SpanIntersection)
	}
	switch p.IdentityMerge {
	case IdentityBest, IdentityWeighted:
	default:
		return common.ConfigError("identity_merge=%q must be %q or %q", p.IdentityMerge, IdentityBest, IdentityWeighted)
	}
	switch p.Singletons {
	case SingletonDiscard, SingletonRetain:
	default:
		return common.ConfigError("singleton_policy=%q must be %q or %q", p.Singletons, SingletonDiscard, SingletonRetain)
	}

	r := c.ReadSupport
	if !finite(r.NuclearMedian) || r.NuclearMedian < 0 || !finite(r.MitoMedian) || r.MitoMedian < 0 {
		return common.ConfigError("median depth overrides must be non-negative")
	}

	if c.Summary.PercentPrecision < 0 || c.Summary.PercentPrecision > 12 {
		return common.ConfigError("percent_precision=%d must be within [0,12]", c.Summary.PercentPrecision)
	}
	if c.Threads < 1 {
		return common.ConfigError("threads=%d must be at least 1", c.Threads)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
