package io

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onsm/numt_classifier/common"
)

func TestParseSupport(t *testing.T) {
	input := strings.Join([]string{
		"reference\tcontig\tstart\tend\tdepth\tspanning\toverlapping",
		"#median_depth nuclear 31.5",
		"#median_depth mito 2400",
		"# produced by depth extractor",
		"nuclear\tchr1\t5000\t6000\t30.25\t18\t20",
		"mito\tmt\t0\t1000\t2500\t3\t40",
	}, "\n")

	file, rejects, err := ParseSupport(strings.NewReader(input), "support.tsv")
	require.NoError(t, err)
	assert.Empty(t, rejects)

	want := SupportFile{
		Rows: []SupportRow{
			{Reference: RefNuclear, Region: common.Interval{Contig: "chr1", Start: 5000, End: 6000}, Depth: 30.25, Spanning: 18, Overlapping: 20},
			{Reference: RefMito, Region: common.Interval{Contig: "mt", Start: 0, End: 1000}, Depth: 2500, Spanning: 3, Overlapping: 40},
		},
		Medians: map[string]float64{RefNuclear: 31.5, RefMito: 2400},
	}
	if diff := cmp.Diff(want, file); diff != "" {
		t.Errorf("ParseSupport() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSupport_Rejects(t *testing.T) {
	input := strings.Join([]string{
		"#median_depth plastid 10",
		"#median_depth nuclear -1",
		"chloroplast\tcp\t0\t10\t1\t0\t0",
		"nuclear\t\t0\t10\t1\t0\t0",
		"nuclear\tchr1\t10\t5\t1\t0\t0",
		"nuclear\tchr1\t0\t10\tNaN\t0\t0",
		"nuclear\tchr1\t0\t10\t1\t-3\t0",
		"nuclear\tchr1\t0\t10",
		"nuclear\tchr1\t0\t10\t1\t0\t0",
	}, "\n")

	file, rejects, err := ParseSupport(strings.NewReader(input), "s.tsv")
	require.NoError(t, err)
	assert.Len(t, rejects, 8)
	require.Len(t, file.Rows, 1)
	assert.Empty(t, file.Medians)

	fields := make([]string, len(rejects))
	for i, r := range rejects {
		fields[i] = r.(*common.RecordError).Field
	}
	assert.Equal(t, []string{"reference", "median_depth", "reference", "contig", "end", "depth", "spanning", ""}, fields)
}
