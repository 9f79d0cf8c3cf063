package calling

import (
	"math"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
)

// ThresholdEpsilon lets a delta that misses a threshold only by float rounding still reach it.
const ThresholdEpsilon = 1e-9

// Classifier applies the threshold rule to a score pair.
type Classifier struct {
	t config.Thresholds
}

// NewClassifier returns a classifier for validated thresholds.
func NewClassifier(t config.Thresholds) Classifier {
	return Classifier{t: t}
}

// Classify decides one locus. The call depends only on the scores and thresholds;
// the locus and features only add the singleton_locus / depth_undefined tags.
func (c Classifier) Classify(l common.CandidateLocus, f common.ReadSupportFeatures, s common.ScorePair) common.Classification {
	delta := s.Delta()
	abs := math.Abs(delta)
	out := common.Classification{PairID: l.PairID, Confidence: abs}

	switch {
	case delta >= c.t.Call-ThresholdEpsilon:
		out.Call = common.LikelyNUMT
		out.Reasons = out.Reasons.With(common.ReasonScoreDifference)
	case delta <= -c.t.Call+ThresholdEpsilon:
		out.Call = common.LikelyNIMT
		out.Reasons = out.Reasons.With(common.ReasonScoreDifference)
	default:
		out.Call = common.Ambiguous
		out.Reasons = out.Reasons.With(common.ReasonDeltaBelowThreshold)
	}
	if abs >= c.t.HighConf-ThresholdEpsilon {
		out.Reasons = out.Reasons.With(common.ReasonHighConfidence)
	}
	if l.Singleton {
		out.Reasons = out.Reasons.With(common.ReasonSingletonLocus)
	}
	if !f.DepthDefined() {
		out.Reasons = out.Reasons.With(common.ReasonDepthUndefined)
	}
	return out
}
