package support

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
	"onsm/numt_classifier/io"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name          string
		depth, median float64
		want          common.Ratio
	}{
		{"plain", 15, 30, common.Ratio{Value: 0.5, Defined: true}},
		{"above median", 60, 30, common.Ratio{Value: 2, Defined: true}},
		{"zero median", 10, 0, common.Ratio{}},
		{"negative median", 10, -1, common.Ratio{}},
		{"negative depth floors at zero", -5, 30, common.Ratio{Value: 0, Defined: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.depth, tt.median))
		})
	}
}

func TestSpanFraction(t *testing.T) {
	assert.Equal(t, 0.0, SpanFraction(0, 0))
	assert.Equal(t, 0.0, SpanFraction(3, 0))
	assert.Equal(t, 0.25, SpanFraction(1, 4))
	assert.Equal(t, 1.0, SpanFraction(9, 4))
	for s := 0; s <= 20; s++ {
		for o := 0; o <= 10; o++ {
			v := SpanFraction(s, o)
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))

	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

const supportTSV = "reference\tcontig\tstart\tend\tdepth\tspanning\toverlapping\n" +
	"#median_depth\tnuclear\t30\n" +
	"nuclear\tchr1\t5000\t6000\t23.04\t1\t1000\n" +
	"mito\tmt\t0\t1000\t703\t2\t2000\n" +
	"mito\tmt\t2000\t3000\t1500\t0\t10\n" +
	"mito\tmt\t5000\t6000\t900\t5\t10\n"

func parse(t *testing.T, text string) io.SupportFile {
	t.Helper()
	f, rejects, err := io.ParseSupport(strings.NewReader(text), "support.tsv")
	require.NoError(t, err)
	require.Empty(t, rejects)
	return f
}

func TestNewTable_MedianPrecedence(t *testing.T) {
	file := parse(t, supportTSV)

	tbl := NewTable(file, config.ReadSupport{})
	v, src := tbl.Median(io.RefNuclear)
	assert.Equal(t, 30.0, v)
	assert.Equal(t, MedianFromDirective, src)
	v, src = tbl.Median(io.RefMito)
	assert.Equal(t, 900.0, v)
	assert.Equal(t, MedianFromRows, src)

	tbl = NewTable(file, config.ReadSupport{NuclearMedian: 40, MitoMedian: 1000})
	v, src = tbl.Median(io.RefNuclear)
	assert.Equal(t, 40.0, v)
	assert.Equal(t, MedianFromConfig, src)
	v, _ = tbl.Median(io.RefMito)
	assert.Equal(t, 1000.0, v)

	tbl = NewTable(io.SupportFile{}, config.ReadSupport{})
	_, src = tbl.Median(io.RefMito)
	assert.Equal(t, MedianMissing, src)
}

func TestTable_Features(t *testing.T) {
	tbl := NewTable(parse(t, supportTSV), config.ReadSupport{MitoMedian: 1000})
	locus := common.CandidateLocus{
		PairID:    "P000001",
		NucContig: "chr1", NucStart: 5000, NucEnd: 6000,
		MitoContig: "mt", MitoStart: 0, MitoEnd: 1000,
		AlnLen: 1000, AlnIdent: 1,
	}

	f, complete := tbl.Features(locus)
	assert.True(t, complete)
	assert.True(t, f.DepthDefined())
	assert.InDelta(t, 0.768, f.RNuc.Value, 1e-12)
	assert.InDelta(t, 0.703, f.RMito.Value, 1e-12)
	assert.InDelta(t, 0.001, f.SNuc, 1e-12)
	assert.InDelta(t, 0.001, f.SMito, 1e-12)

	locus.MitoStart, locus.MitoEnd = 7000, 8000
	f, complete = tbl.Features(locus)
	assert.False(t, complete)
	assert.False(t, f.RMito.Defined)
	assert.False(t, f.DepthDefined())
	assert.Equal(t, 0.0, f.SMito)
	assert.True(t, f.RNuc.Defined)
}

func TestTable_ZeroMedianDirectiveIsUndefined(t *testing.T) {
	text := "#median_depth\tnuclear\t0\n" +
		"nuclear\tchr1\t0\t100\t12\t3\t4\n"
	tbl := NewTable(parse(t, text), config.ReadSupport{})
	e, ok := tbl.Lookup(io.RefNuclear, common.Interval{Contig: "chr1", Start: 0, End: 100})
	require.True(t, ok)
	assert.Equal(t, Evidence{Depth: 12, Spanning: 3, Overlapping: 4}, e)

	f, _ := tbl.Features(common.CandidateLocus{NucContig: "chr1", NucStart: 0, NucEnd: 100})
	assert.False(t, f.RNuc.Defined)
	assert.Equal(t, 0.75, f.SNuc)
}

func TestNewTable_DuplicateKeepsFirst(t *testing.T) {
	text := "nuclear\tchr1\t0\t100\t12\t3\t4\n" +
		"nuclear\tchr1\t0\t100\t99\t0\t0\n"
	tbl := NewTable(parse(t, text), config.ReadSupport{})
	e, _ := tbl.Lookup(io.RefNuclear, common.Interval{Contig: "chr1", Start: 0, End: 100})
	assert.Equal(t, 12.0, e.Depth)
}
