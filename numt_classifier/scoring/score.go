package scoring

import (
	"math"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
)

// Scorer computes the two competing hypothesis scores. It holds no mutable state.
type Scorer struct {
	w config.Weights
	s config.Scoring
}

// NewScorer returns a scorer for an already validated configuration.
func NewScorer(cfg config.Config) Scorer {
	return Scorer{w: cfg.Weights, s: cfg.Scoring}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// AlnScore rewards identity, discounted for very short alignments.
func (sc Scorer) AlnScore(ident float64, alnLen int) float64 {
	return clamp01(ident) * (1 - math.Exp(-float64(alnLen)/sc.s.AlnLenScale))
}

// LengthScore saturates with alignment length and is flat beyond the cap.
func (sc Scorer) LengthScore(alnLen int) float64 {
	l := float64(min(max(alnLen, 0), sc.s.LengthCap))
	return l / (l + sc.s.LengthHalf)
}

// DepthTerm is the depth evidence for "host" being the genome carrying the insertion
// and "donor" the genome it came from. A host ratio near 1 is rewarded, donor depth is
// penalized, and the log2 host/donor contrast is squashed through tanh. The result is
// within [-1, 1].
func (sc Scorer) DepthTerm(host, donor float64) float64 {
	reward := clamp01(1 - math.Abs(host-1))
	penalty := -clamp01(donor)
	contrast := math.Tanh(sc.s.DepthContrastGain * math.Log2((host+config.DepthRatioEpsilon)/(donor+config.DepthRatioEpsilon)))
	return clamp(reward+penalty+contrast, -1, 1)
}

// SpanTerm favours the hypothesis whose host genome has reads traversing the locus.
func SpanTerm(host, donor float64) float64 {
	return clamp(host-donor, -1, 1)
}

// Score evaluates both hypotheses for one locus. The alignment and length terms are
// shared; the depth and span terms swap host and donor between hypotheses. If either
// depth ratio is undefined the depth terms are 0 for both.
func (sc Scorer) Score(l common.CandidateLocus, f common.ReadSupportFeatures) common.ScorePair {
	p := common.ScorePair{
		AlnScore:    sc.AlnScore(l.AlnIdent, l.AlnLen),
		LengthScore: sc.LengthScore(l.AlnLen),
		SpanNUMT:    SpanTerm(f.SNuc, f.SMito),
		SpanNIMT:    SpanTerm(f.SMito, f.SNuc),
	}
	if f.DepthDefined() {
		p.DepthNUMT = sc.DepthTerm(f.RNuc.Value, f.RMito.Value)
		p.DepthNIMT = sc.DepthTerm(f.RMito.Value, f.RNuc.Value)
	}

	shared := sc.w.Alignment*p.AlnScore + sc.w.Length*p.LengthScore
	p.NUMT = shared + sc.w.Depth*p.DepthNUMT + sc.w.Span*p.SpanNUMT
	p.NIMT = shared + sc.w.Depth*p.DepthNIMT + sc.w.Span*p.SpanNIMT
	return p
}
