package pipeline

import (
	"context"
	"fmt"
	stdio "io"
	"os"

	"gopkg.in/yaml.v3"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
	"onsm/numt_classifier/io"
	"onsm/numt_classifier/logging"
	"onsm/numt_classifier/metrics"
	"onsm/numt_classifier/pairing"
	"onsm/numt_classifier/report"
	"onsm/numt_classifier/store"
	"onsm/numt_classifier/summary"
)

// Pair runs only the locus pair builder and writes loci.tsv plus the excluded-contig list.
func Pair(cfg config.Config, p Paths) (pairing.Result, error) {
	log := logging.New("pipeline")
	if err := cfg.Validate(); err != nil {
		return pairing.Result{}, err
	}
	in, err := loadAlignments(log, p, metrics.NewRun())
	if err != nil {
		return pairing.Result{}, err
	}
	built := pairing.NewBuilder(cfg.Pairing).Build(in.pairing)

	stage, err := io.NewStage(p.OutDir)
	if err != nil {
		return pairing.Result{}, err
	}
	defer stage.Discard()
	if err := stage.Write(LociFile, func(w stdio.Writer) error { return io.WriteLoci(w, built.Loci) }); err != nil {
		return pairing.Result{}, err
	}
	if err := stage.Write(ExcludedFile, func(w stdio.Writer) error { return writeLines(w, built.Excluded) }); err != nil {
		return pairing.Result{}, err
	}
	if err := stage.Commit(); err != nil {
		return pairing.Result{}, err
	}
	log.Info("pairing finished", "loci", len(built.Loci), "singletons", built.Stats.Singletons, "excluded_contigs", len(built.Excluded))
	return built, nil
}

// SummaryInputs names the files Summarize reads.
type SummaryInputs struct {
	Pairs          string // pairs.tsv or loci.tsv
	Classification string
	NuclearFai     string
	MitoFai        string
	OutDir         string
}

// Summarize recomputes summary.tsv from earlier pairs and classification tables.
// Loci without a classification row count as Ambiguous.
func Summarize(cfg config.Config, si SummaryInputs) (common.SummaryMetrics, error) {
	log := logging.New("pipeline")
	if err := cfg.Validate(); err != nil {
		return common.SummaryMetrics{}, err
	}

	var in inputs
	var err error
	if si.NuclearFai != "" {
		if in.nucFai, err = io.ReadContigLengths(si.NuclearFai); err != nil {
			return common.SummaryMetrics{}, err
		}
	}
	if si.MitoFai != "" {
		if in.mitoFai, err = io.ReadContigLengths(si.MitoFai); err != nil {
			return common.SummaryMetrics{}, err
		}
	}
	if cfg.Summary, err = resolveTotals(cfg.Summary, in); err != nil {
		return common.SummaryMetrics{}, err
	}

	loci, rejects, err := io.ReadPairsLoci(si.Pairs)
	if err != nil {
		return common.SummaryMetrics{}, err
	}
	logRejects(log, si.Pairs, rejects)
	calls, err := io.ReadCalls(si.Classification)
	if err != nil {
		return common.SummaryMetrics{}, err
	}

	t := summary.NewTally()
	missing := 0
	for _, l := range loci {
		c, ok := calls[l.PairID]
		if !ok {
			missing++
		}
		t.Add(l, c.Call)
	}
	if missing > 0 {
		log.Warn("loci without a classification counted as Ambiguous", "count", missing)
	}
	if extra := len(calls) - (len(loci) - missing); extra > 0 {
		log.Warn("classification rows without a matching locus ignored", "count", extra)
	}

	m, err := summary.NewAggregator(cfg.Summary).Summarize(t)
	if err != nil {
		return common.SummaryMetrics{}, err
	}
	stage, err := io.NewStage(si.OutDir)
	if err != nil {
		return common.SummaryMetrics{}, err
	}
	defer stage.Discard()
	if err := stage.Write(SummaryFile, func(w stdio.Writer) error {
		return io.WriteSummary(w, m, cfg.Summary.PercentPrecision)
	}); err != nil {
		return common.SummaryMetrics{}, err
	}
	return m, stage.Commit()
}

// locusRecord is the YAML shape of one stored locus.
type locusRecord struct {
	PairID     string   `yaml:"pair_id"`
	Nuclear    string   `yaml:"nuclear"`
	Mito       string   `yaml:"mito"`
	AlnLen     int      `yaml:"aln_len"`
	AlnIdent   float64  `yaml:"aln_ident"`
	Singleton  bool     `yaml:"singleton"`
	RNuc       *float64 `yaml:"rnuc"`
	RMito      *float64 `yaml:"rmito"`
	SNuc       float64  `yaml:"s_nuc"`
	SMito      float64  `yaml:"s_mito"`
	ScoreNUMT  float64  `yaml:"score_numt"`
	ScoreNIMT  float64  `yaml:"score_nimt"`
	Call       string   `yaml:"call"`
	Confidence float64  `yaml:"confidence"`
	Reasons    []string `yaml:"reason_codes,flow"`
}

func ratioPtr(r common.Ratio) *float64 {
	if !r.Defined {
		return nil
	}
	v := r.Value
	return &v
}

func newLocusRecord(r common.LocusResult) locusRecord {
	l := r.Locus
	return locusRecord{
		PairID:     l.PairID,
		Nuclear:    fmt.Sprintf("%s:%d-%d", l.NucContig, l.NucStart, l.NucEnd),
		Mito:       fmt.Sprintf("%s:%d-%d", l.MitoContig, l.MitoStart, l.MitoEnd),
		AlnLen:     l.AlnLen,
		AlnIdent:   l.AlnIdent,
		Singleton:  l.Singleton,
		RNuc:       ratioPtr(r.Features.RNuc),
		RMito:      ratioPtr(r.Features.RMito),
		SNuc:       r.Features.SNuc,
		SMito:      r.Features.SMito,
		ScoreNUMT:  r.Scores.NUMT,
		ScoreNIMT:  r.Scores.NIMT,
		Call:       r.Class.Call.String(),
		Confidence: r.Class.Confidence,
		Reasons:    r.Class.Reasons.Codes(),
	}
}

// Dump prints one locus from run.db, or the run summary when pairID is empty.
func Dump(ctx context.Context, dbPath, pairID string, asYAML bool, w stdio.Writer) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("run database: %w", err)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if pairID == "" {
		m, err := db.Summary(ctx)
		if err != nil {
			return err
		}
		if asYAML {
			return yaml.NewEncoder(w).Encode(m)
		}
		report.Summary(w, m, config.DefaultPercentPrecision)
		return nil
	}

	r, err := db.Locus(ctx, pairID)
	if err != nil {
		return err
	}
	if asYAML {
		return yaml.NewEncoder(w).Encode(newLocusRecord(r))
	}
	report.Locus(w, r)
	return nil
}
