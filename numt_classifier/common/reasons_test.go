package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonSet_RendersInDeclarationOrder(t *testing.T) {
	s := ReasonSet(0).With(ReasonDepthUndefined).With(ReasonHighConfidence).With(ReasonScoreDifference)
	assert.Equal(t, "score_difference,high_confidence,depth_undefined", s.String())
	assert.Equal(t, []string{"score_difference", "high_confidence", "depth_undefined"}, s.Codes())
	assert.False(t, s.Has(ReasonSingletonLocus))
	assert.True(t, ReasonSet(0).Empty())
}

func TestParseReasonSet(t *testing.T) {
	s, ok := ParseReasonSet("singleton_locus, delta_below_threshold")
	assert.True(t, ok)
	assert.Equal(t, ReasonSet(0).With(ReasonDeltaBelowThreshold).With(ReasonSingletonLocus), s)

	s, ok = ParseReasonSet("high_confidence,bogus")
	assert.False(t, ok)
	assert.True(t, s.Has(ReasonHighConfidence))

	s, ok = ParseReasonSet("")
	assert.True(t, ok)
	assert.True(t, s.Empty())
}

func TestIntervalOverlapsWithin(t *testing.T) {
	a := Interval{Contig: "chr1", Start: 100, End: 200}
	assert.True(t, a.OverlapsWithin(Interval{Contig: "chr1", Start: 200, End: 300}, 0), "touching")
	assert.False(t, a.OverlapsWithin(Interval{Contig: "chr1", Start: 210, End: 300}, 5))
	assert.True(t, a.OverlapsWithin(Interval{Contig: "chr1", Start: 210, End: 300}, 10))
	assert.False(t, a.OverlapsWithin(Interval{Contig: "chr2", Start: 100, End: 200}, 0))
	assert.Equal(t, 0, Interval{Start: 5, End: 5}.Len())
}

func TestCallRoundTrip(t *testing.T) {
	for _, c := range []Call{LikelyNUMT, LikelyNIMT, Ambiguous} {
		assert.Equal(t, c, ParseCall(c.String()))
	}
	assert.Equal(t, Ambiguous, ParseCall("Possibly_NUMT"))
}
