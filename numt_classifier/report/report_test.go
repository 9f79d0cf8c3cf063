package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"onsm/numt_classifier/common"
)

func TestMain(m *testing.M) {
	SetColor("off")
	m.Run()
}

func TestCallCounts(t *testing.T) {
	assert.Equal(t, "NUMT 3 / NIMT 1 / Ambiguous 7", CallCounts(3, 1, 7))
}

func TestSummary_RendersMetrics(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, common.SummaryMetrics{NPairs: 2, NNUMT: 1, NuclearBPTotal: 1000, NuclearBPNUMT: 20, NuclearPctNUMT: 2}, 2)
	out := buf.String()
	assert.Contains(t, out, "nuclear % NUMT")
	assert.Contains(t, out, "2.00 %")
	assert.Contains(t, out, "Likely_NUMT")
}

func TestLocus_RendersUndefinedRatio(t *testing.T) {
	var buf bytes.Buffer
	Locus(&buf, common.LocusResult{
		Locus: common.CandidateLocus{PairID: "P000042", NucContig: "chr1", NucStart: 10, NucEnd: 20, MitoContig: "mt", MitoEnd: 10, AlnLen: 10, AlnIdent: 1},
		Class: common.Classification{PairID: "P000042", Reasons: common.ReasonSet(0).With(common.ReasonDepthUndefined)},
	})
	out := buf.String()
	assert.Contains(t, out, "P000042")
	assert.Contains(t, out, "chr1:10-20")
	assert.Contains(t, out, "NA")
	assert.Contains(t, out, "depth_undefined")
	assert.Contains(t, out, "Ambiguous")
}
