package io

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onsm/numt_classifier/common"
)

func sampleResults() []common.LocusResult {
	return []common.LocusResult{
		{
			Locus: common.CandidateLocus{
				PairID: "P000001", NucContig: "chr1", NucStart: 5000, NucEnd: 6000,
				MitoContig: "mt", MitoStart: 0, MitoEnd: 1000, AlnLen: 980, AlnIdent: 0.98,
			},
			Features: common.ReadSupportFeatures{
				RNuc:  common.Ratio{Value: 1.0, Defined: true},
				RMito: common.Ratio{Value: 0.0124, Defined: true},
				SNuc:  0.9,
			},
			Scores: common.ScorePair{NUMT: 0.81234, NIMT: -0.13},
			Class: common.Classification{
				PairID: "P000001", Call: common.LikelyNUMT, Confidence: 0.94234,
				Reasons: common.ReasonSet(0).With(common.ReasonScoreDifference).With(common.ReasonHighConfidence),
			},
		},
		{
			Locus: common.CandidateLocus{
				PairID: "P000002", NucContig: "chr2", NucStart: 10, NucEnd: 110,
				MitoContig: "mt", MitoStart: 200, MitoEnd: 300, AlnLen: 100, AlnIdent: 0.9, Singleton: true,
			},
			Class: common.Classification{
				PairID: "P000002", Call: common.Ambiguous,
				Reasons: common.ReasonSet(0).With(common.ReasonDeltaBelowThreshold).With(common.ReasonSingletonLocus).With(common.ReasonDepthUndefined),
			},
		},
	}
}

func TestWritePairs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePairs(&buf, sampleResults()))
	want := "pair_id\tnuc_contig\tnuc_start\tnuc_end\tmito_contig\tmito_start\tmito_end\taln_len\taln_ident\trnuc\trmito\ts_nuc\ts_mito\tscore_numt\tscore_nimt\n" +
		"P000001\tchr1\t5000\t6000\tmt\t0\t1000\t980\t0.9800\t1.000\t0.012\t0.900\t0.000\t0.8123\t-0.1300\n" +
		"P000002\tchr2\t10\t110\tmt\t200\t300\t100\t0.9000\tNA\tNA\t0.000\t0.000\t0.0000\t0.0000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteClassification(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteClassification(&buf, sampleResults()))
	want := "pair_id\tcall\tconfidence\treason_codes\n" +
		"P000001\tLikely_NUMT\t0.9423\tscore_difference,high_confidence\n" +
		"P000002\tAmbiguous\t0.0000\tdelta_below_threshold,singleton_locus,depth_undefined\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	m := common.SummaryMetrics{
		NPairs: 2, NNUMT: 1,
		NuclearBPTotal: 100000, NuclearBPNUMT: 1000, NuclearPctNUMT: 1,
		MitoBPTotal: 16569,
	}
	require.NoError(t, WriteSummary(&buf, m, 2))
	want := "n_pairs\tn_numt\tn_nimt\tnuclear_bp_total\tnuclear_bp_numt\tnuclear_pct_numt\tmito_bp_total\tmito_bp_nimt\tmito_pct_nimt\n" +
		"2\t1\t0\t100000\t1000\t1.00\t16569\t0\t0.00\n"
	assert.Equal(t, want, buf.String())
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadBack(t *testing.T) {
	results := sampleResults()

	var pairs, class bytes.Buffer
	require.NoError(t, WritePairs(&pairs, results))
	require.NoError(t, WriteClassification(&class, results))

	loci, rejects, err := ReadPairsLoci(writeTemp(t, "pairs.tsv", pairs.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, rejects)
	want := []common.CandidateLocus{results[0].Locus, results[1].Locus}
	// pairs.tsv has no singleton column.
	want[1].Singleton = false
	if diff := cmp.Diff(want, loci); diff != "" {
		t.Errorf("ReadPairsLoci() mismatch (-want +got):\n%s", diff)
	}

	calls, err := ReadCalls(writeTemp(t, "classification.tsv", class.Bytes()))
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, common.LikelyNUMT, calls["P000001"].Call)
	assert.True(t, calls["P000002"].Reasons.Has(common.ReasonSingletonLocus))
}

func TestReadPairsLoci_LociFileKeepsSingleton(t *testing.T) {
	var buf bytes.Buffer
	loci := []common.CandidateLocus{sampleResults()[1].Locus}
	require.NoError(t, WriteLoci(&buf, loci))

	got, _, err := ReadPairsLoci(writeTemp(t, "loci.tsv", buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, loci, got)
}

func TestReadPairsLoci_Errors(t *testing.T) {
	_, _, err := ReadPairsLoci(writeTemp(t, "bad.tsv", []byte("pair_id\tnuc_contig\n")))
	assert.ErrorContains(t, err, "missing column")

	_, _, err = ReadPairsLoci(writeTemp(t, "empty.tsv", nil))
	assert.ErrorContains(t, err, "empty file")

	body := "pair_id\tnuc_contig\tnuc_start\tnuc_end\tmito_contig\tmito_start\tmito_end\taln_len\taln_ident\n" +
		"P1\tchr1\tx\t10\tmt\t0\t10\t10\t1\n" +
		"P2\tchr1\t0\t10\tmt\t0\t10\t10\t1.5\n" +
		"P3\tchr1\t0\t10\tmt\t0\t10\t10\t1\n"
	loci, rejects, err := ReadPairsLoci(writeTemp(t, "mixed.tsv", []byte(body)))
	require.NoError(t, err)
	require.Len(t, loci, 1)
	assert.Equal(t, "P3", loci[0].PairID)
	require.Len(t, rejects, 2)
	assert.Equal(t, 2, rejects[0].(*common.RecordError).Line)
	assert.Equal(t, "aln_ident", rejects[1].(*common.RecordError).Field)
}
