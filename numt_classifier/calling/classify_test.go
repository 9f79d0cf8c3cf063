package calling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
)

var definedDepth = common.ReadSupportFeatures{
	RNuc:  common.Ratio{Value: 1, Defined: true},
	RMito: common.Ratio{Value: 1, Defined: true},
}

func scores(numt, nimt float64) common.ScorePair {
	return common.ScorePair{NUMT: numt, NIMT: nimt}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(config.Default().Thresholds)
	locus := common.CandidateLocus{PairID: "P000001"}

	tests := []struct {
		name    string
		s       common.ScorePair
		call    common.Call
		reasons string
	}{
		{"reference scenario", scores(0.4747, 0.2947), common.LikelyNUMT, "score_difference"},
		{"exactly at call threshold", scores(0.65, 0.5), common.LikelyNUMT, "score_difference"},
		{"exactly at negative threshold", scores(0.5, 0.65), common.LikelyNIMT, "score_difference"},
		{"just below threshold", scores(0.6499, 0.5), common.Ambiguous, "delta_below_threshold"},
		{"tie", scores(0.5, 0.5), common.Ambiguous, "delta_below_threshold"},
		{"high confidence NUMT", scores(0.8, 0.5), common.LikelyNUMT, "score_difference,high_confidence"},
		{"high confidence NIMT", scores(0.1, 0.6), common.LikelyNIMT, "score_difference,high_confidence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(locus, definedDepth, tt.s)
			assert.Equal(t, tt.call, got.Call)
			assert.Equal(t, tt.reasons, got.Reasons.String())
			assert.Equal(t, "P000001", got.PairID)
			assert.InDelta(t, abs(tt.s.Delta()), got.Confidence, 1e-15)
			assert.False(t, got.Reasons.Empty())
		})
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestClassify_ExtraTags(t *testing.T) {
	c := NewClassifier(config.Default().Thresholds)
	locus := common.CandidateLocus{PairID: "P000009", Singleton: true}

	got := c.Classify(locus, common.ReadSupportFeatures{}, scores(0.5, 0.5))
	assert.Equal(t, common.Ambiguous, got.Call)
	assert.Equal(t, "delta_below_threshold,singleton_locus,depth_undefined", got.Reasons.String())
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(config.Default().Thresholds)
	s := scores(0.71, 0.40)
	first := c.Classify(common.CandidateLocus{PairID: "P1"}, definedDepth, s)
	for n := 0; n < 10; n++ {
		again := c.Classify(common.CandidateLocus{PairID: "P1"}, definedDepth, s)
		assert.Equal(t, first, again)
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	c := NewClassifier(config.Thresholds{Call: 0.05, HighConf: 0.1})
	got := c.Classify(common.CandidateLocus{}, definedDepth, scores(0.3, 0.2))
	assert.Equal(t, common.LikelyNUMT, got.Call)
	assert.True(t, got.Reasons.Has(common.ReasonHighConfidence))
}
