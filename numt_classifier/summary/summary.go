package summary

import (
	"fmt"
	"log/slog"
	"math"

	"fortio.org/safecast"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
	"onsm/numt_classifier/logging"
	"onsm/numt_classifier/regions"
)

// Tally accumulates calls and covered intervals. Tallies built over disjoint slices of
// the loci can be merged in any order and grouping.
type Tally struct {
	Pairs, NUMT, NIMT int

	numtNuc  *regions.Set // nuclear spans of Likely_NUMT loci
	nimtMito *regions.Set // mito spans of Likely_NIMT loci
	numtMito *regions.Set // mito homologs of Likely_NUMT loci
	nimtNuc  *regions.Set // nuclear homologs of Likely_NIMT loci
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{
		numtNuc:  regions.NewSet(),
		nimtMito: regions.NewSet(),
		numtMito: regions.NewSet(),
		nimtNuc:  regions.NewSet(),
	}
}

// Add counts one classified locus.
func (t *Tally) Add(l common.CandidateLocus, call common.Call) {
	t.Pairs++
	switch call {
	case common.LikelyNUMT:
		t.NUMT++
		t.numtNuc.Add(l.NucInterval())
		t.numtMito.Add(l.MitoInterval())
	case common.LikelyNIMT:
		t.NIMT++
		t.nimtMito.Add(l.MitoInterval())
		t.nimtNuc.Add(l.NucInterval())
	}
}

// Merge returns a tally holding both inputs.
func (t *Tally) Merge(o *Tally) *Tally {
	return &Tally{
		Pairs:    t.Pairs + o.Pairs,
		NUMT:     t.NUMT + o.NUMT,
		NIMT:     t.NIMT + o.NIMT,
		numtNuc:  t.numtNuc.Merge(o.numtNuc),
		nimtMito: t.nimtMito.Merge(o.nimtMito),
		numtMito: t.numtMito.Merge(o.numtMito),
		nimtNuc:  t.nimtNuc.Merge(o.nimtNuc),
	}
}

// Aggregator turns tallies into genome-level metrics.
type Aggregator struct {
	cfg config.Summary
	log *slog.Logger
}

// NewAggregator returns an aggregator. cfg must carry both assembly sizes.
func NewAggregator(cfg config.Summary) Aggregator {
	return Aggregator{cfg: cfg, log: logging.New("summary")}
}

// CheckTotals reports ErrInputMismatch when an assembly size is missing.
func CheckTotals(cfg config.Summary) error {
	if cfg.NuclearBPTotal == 0 {
		return common.InputMismatchError("nuclear assembly size is zero or unknown")
	}
	if cfg.MitoBPTotal == 0 {
		return common.InputMismatchError("mitochondrial assembly size is zero or unknown")
	}
	return nil
}

// Aggregate tallies results and summarizes them.
func (a Aggregator) Aggregate(results []common.LocusResult) (common.SummaryMetrics, error) {
	t := NewTally()
	for _, r := range results {
		t.Add(r.Locus, r.Class.Call)
	}
	return a.Summarize(t)
}

// Summarize converts union lengths into bp and percentages.
func (a Aggregator) Summarize(t *Tally) (common.SummaryMetrics, error) {
	if err := CheckTotals(a.cfg); err != nil {
		return common.SummaryMetrics{}, err
	}
	m := common.SummaryMetrics{
		NPairs:         t.Pairs,
		NNUMT:          t.NUMT,
		NNIMT:          t.NIMT,
		NuclearBPTotal: a.cfg.NuclearBPTotal,
		MitoBPTotal:    a.cfg.MitoBPTotal,
	}

	var err error
	if m.NuclearBPNUMT, err = a.covered("nuclear_bp_numt", t.numtNuc, m.NuclearBPTotal); err != nil {
		return common.SummaryMetrics{}, err
	}
	if m.MitoBPNIMT, err = a.covered("mito_bp_nimt", t.nimtMito, m.MitoBPTotal); err != nil {
		return common.SummaryMetrics{}, err
	}
	if m.MitoBPNUMTHomologs, err = a.covered("mito_bp_numt_homologs", t.numtMito, m.MitoBPTotal); err != nil {
		return common.SummaryMetrics{}, err
	}
	if m.NuclearBPNIMTHomologs, err = a.covered("nuclear_bp_nimt_homologs", t.nimtNuc, m.NuclearBPTotal); err != nil {
		return common.SummaryMetrics{}, err
	}

	prec := a.cfg.PercentPrecision
	m.NuclearPctNUMT = Percent(m.NuclearBPNUMT, m.NuclearBPTotal, prec)
	m.MitoPctNIMT = Percent(m.MitoBPNIMT, m.MitoBPTotal, prec)
	m.MitoPctNUMTHomologs = Percent(m.MitoBPNUMTHomologs, m.MitoBPTotal, prec)
	m.NuclearPctNIMTHomologs = Percent(m.NuclearBPNIMTHomologs, m.NuclearBPTotal, prec)
	return m, nil
}

// covered is the union length of set, clamped to total.
func (a Aggregator) covered(name string, set *regions.Set, total uint64) (uint64, error) {
	bp, err := safecast.Conv[uint64](set.Length())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if bp > total {
		a.log.Warn("covered bases exceed assembly size, clamping", "metric", name, "bp", bp, "total", total)
		bp = total
	}
	return bp, nil
}

// Percent is 100 * bp / total rounded to prec decimals; 0 when total is 0.
func Percent(bp, total uint64, prec int) float64 {
	if total == 0 {
		return 0
	}
	scale := math.Pow(10, float64(prec))
	return math.Round(100*float64(bp)/float64(total)*scale) / scale
}
