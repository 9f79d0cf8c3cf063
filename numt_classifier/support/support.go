package support

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
	"onsm/numt_classifier/io"
	"onsm/numt_classifier/logging"
)

// MedianSource records where a reference's genome-wide median came from.
type MedianSource string

const (
	MedianFromConfig    MedianSource = "config"
	MedianFromDirective MedianSource = "file"
	MedianFromRows      MedianSource = "rows"
	MedianMissing       MedianSource = "missing"
)

// Key addresses one region's evidence on one reference.
type Key struct {
	Reference string
	Region    common.Interval
}

// Evidence is the raw read support for one region.
type Evidence struct {
	Depth       float64
	Spanning    int
	Overlapping int
}

// Table is the read-support lookup. It is built once and only read afterwards, so it
// is safe to share between workers.
type Table struct {
	rows    map[Key]Evidence
	medians map[string]float64
	sources map[string]MedianSource
}

// NewTable indexes file rows and resolves both medians. Precedence per reference:
// a positive override, then a #median_depth directive, then the median of that
// reference's row depths. Duplicate keys keep the first row.
func NewTable(file io.SupportFile, overrides config.ReadSupport) *Table {
	log := logging.New("support")
	t := &Table{
		rows:    make(map[Key]Evidence, len(file.Rows)),
		medians: make(map[string]float64, 2),
		sources: make(map[string]MedianSource, 2),
	}
	depths := map[string][]float64{}
	dups := 0
	for _, r := range file.Rows {
		k := Key{Reference: r.Reference, Region: r.Region}
		if _, ok := t.rows[k]; ok {
			dups++
			continue
		}
		t.rows[k] = Evidence{Depth: r.Depth, Spanning: r.Spanning, Overlapping: r.Overlapping}
		depths[r.Reference] = append(depths[r.Reference], r.Depth)
	}
	if dups > 0 {
		log.Warn("duplicate read-support rows ignored", "count", dups)
	}

	for _, ref := range []struct {
		name     string
		override float64
	}{{io.RefNuclear, overrides.NuclearMedian}, {io.RefMito, overrides.MitoMedian}} {
		v, src := resolveMedian(ref.override, file.Medians, ref.name, depths[ref.name])
		t.medians[ref.name], t.sources[ref.name] = v, src
		level := slog.LevelInfo
		if src == MedianFromRows || src == MedianMissing {
			level = slog.LevelWarn
		}
		log.Log(context.Background(), level, "median depth resolved", "reference", ref.name, "median", v, "source", string(src))
	}
	return t
}

func resolveMedian(override float64, directives map[string]float64, ref string, depths []float64) (float64, MedianSource) {
	if override > 0 {
		return override, MedianFromConfig
	}
	if v, ok := directives[ref]; ok {
		return v, MedianFromDirective
	}
	if len(depths) == 0 {
		return 0, MedianMissing
	}
	return Median(depths), MedianFromRows
}

// Median returns the middle value of vs (mean of the two middle values for even
// lengths). The input is not reordered.
func Median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Median returns the resolved genome-wide median for ref and where it came from.
func (t *Table) Median(ref string) (float64, MedianSource) {
	return t.medians[ref], t.sources[ref]
}

// Lookup returns the evidence for region on ref.
func (t *Table) Lookup(ref string, region common.Interval) (Evidence, bool) {
	e, ok := t.rows[Key{Reference: ref, Region: region}]
	return e, ok
}

// Normalize divides a locus depth by the genome-wide median. A median <= 0 gives an
// undefined ratio; negative results are floored at 0.
func Normalize(depth, median float64) common.Ratio {
	if !(median > 0) || math.IsNaN(depth) {
		return common.Ratio{}
	}
	return common.Ratio{Value: math.Max(0, depth/median), Defined: true}
}

// SpanFraction is spanning / overlapping clamped to [0,1]. No overlapping reads
// yields 0: the absence of spanning reads is evidence, not a gap.
func SpanFraction(spanning, overlapping int) float64 {
	if overlapping <= 0 || spanning <= 0 {
		return 0
	}
	return math.Min(1, float64(spanning)/float64(overlapping))
}

// Features derives the read-support features of one locus. A side without a
// read-support row has an undefined ratio and span fraction 0.
func (t *Table) Features(l common.CandidateLocus) (common.ReadSupportFeatures, bool) {
	var f common.ReadSupportFeatures
	nuc, okNuc := t.Lookup(io.RefNuclear, l.NucInterval())
	mito, okMito := t.Lookup(io.RefMito, l.MitoInterval())
	if okNuc {
		f.RNuc = Normalize(nuc.Depth, t.medians[io.RefNuclear])
		f.SNuc = SpanFraction(nuc.Spanning, nuc.Overlapping)
	}
	if okMito {
		f.RMito = Normalize(mito.Depth, t.medians[io.RefMito])
		f.SMito = SpanFraction(mito.Spanning, mito.Overlapping)
	}
	return f, okNuc && okMito
}
