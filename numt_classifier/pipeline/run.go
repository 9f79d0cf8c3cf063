package pipeline

import (
	"context"
	"fmt"
	stdio "io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"onsm/numt_classifier/calling"
	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
	"onsm/numt_classifier/io"
	"onsm/numt_classifier/logging"
	"onsm/numt_classifier/metrics"
	"onsm/numt_classifier/pairing"
	"onsm/numt_classifier/scoring"
	"onsm/numt_classifier/store"
	"onsm/numt_classifier/summary"
	"onsm/numt_classifier/support"
)

// Output file names.
const (
	PairsFile          = "pairs.tsv"
	ClassificationFile = "classification.tsv"
	SummaryFile        = "summary.tsv"
	LociFile           = "loci.tsv"
	ExcludedFile       = "excluded_organelle_like_nuclear_contigs.txt"
	RunDBFile          = "run.db"
)

// Tool is the name recorded in manifests.
const Tool = "onsm"

// Outcome is what a classification run produced.
type Outcome struct {
	Results  []common.LocusResult
	Summary  common.SummaryMetrics
	Excluded []string
	Counts   map[common.Call]int
	Outputs  []string
}

// Evaluate computes features, scores and the call for every locus. Loci are spread over
// at most threads workers; each result lands at its locus's index, so the output order
// is the input (pair_id) order whatever order the workers finish in.
func Evaluate(ctx context.Context, cfg config.Config, loci []common.CandidateLocus, table *support.Table) ([]common.LocusResult, error) {
	scorer := scoring.NewScorer(cfg)
	classifier := calling.NewClassifier(cfg.Thresholds)
	results := make([]common.LocusResult, len(loci))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Threads)
	for i, l := range loci {
		if gctx.Err() != nil {
			break
		}
		i, l := i, l
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, _ := table.Features(l)
			s := scorer.Score(l, f)
			results[i] = common.LocusResult{
				Locus:    l,
				Features: f,
				Scores:   s,
				Class:    classifier.Classify(l, f, s),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Classify runs the whole pipeline and commits all outputs only once every stage succeeded.
func Classify(ctx context.Context, cfg config.Config, p Paths, version string) (Outcome, error) {
	log := logging.New("pipeline")
	started := time.Now()
	m := metrics.NewRun()

	if err := cfg.Validate(); err != nil {
		return Outcome{}, err
	}

	t0 := time.Now()
	in, err := loadAlignments(log, p, m)
	if err != nil {
		return Outcome{}, err
	}
	if cfg.Summary, err = resolveTotals(cfg.Summary, in); err != nil {
		return Outcome{}, err
	}
	file, err := loadSupport(log, p.Support)
	if err != nil {
		return Outcome{}, err
	}
	m.Stage("load", time.Since(t0))

	t0 = time.Now()
	built := pairing.NewBuilder(cfg.Pairing).Build(in.pairing)
	recordPairingStats(m, built.Stats)
	m.Loci(len(built.Loci))
	m.Stage("pair", time.Since(t0))
	if len(built.Loci) == 0 {
		log.Warn("no candidate loci; outputs will be empty")
	}

	t0 = time.Now()
	table := support.NewTable(file, cfg.ReadSupport)
	results, err := Evaluate(ctx, cfg, built.Loci, table)
	if err != nil {
		return Outcome{}, fmt.Errorf("evaluate loci: %w", err)
	}
	m.Stage("score", time.Since(t0))

	t0 = time.Now()
	metricsOut, err := summary.NewAggregator(cfg.Summary).Aggregate(results)
	if err != nil {
		return Outcome{}, err
	}
	m.Summary(metricsOut)
	m.Stage("summary", time.Since(t0))

	out := Outcome{
		Results:  results,
		Summary:  metricsOut,
		Excluded: built.Excluded,
		Counts:   map[common.Call]int{},
	}
	for _, r := range results {
		out.Counts[r.Class.Call]++
		m.Observe(r.Class)
	}

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	stage, err := io.NewStage(p.OutDir)
	if err != nil {
		return Outcome{}, err
	}
	defer stage.Discard()

	writes := []struct {
		name string
		fn   func(w stdio.Writer) error
	}{
		{PairsFile, func(w stdio.Writer) error { return io.WritePairs(w, results) }},
		{ClassificationFile, func(w stdio.Writer) error { return io.WriteClassification(w, results) }},
		{SummaryFile, func(w stdio.Writer) error { return io.WriteSummary(w, metricsOut, cfg.Summary.PercentPrecision) }},
		{ExcludedFile, func(w stdio.Writer) error { return writeLines(w, built.Excluded) }},
	}
	for _, wr := range writes {
		if err := stage.Write(wr.name, wr.fn); err != nil {
			return Outcome{}, err
		}
		out.Outputs = append(out.Outputs, wr.name)
	}

	if err := saveRunDB(ctx, stage, results, metricsOut); err != nil {
		return Outcome{}, err
	}
	out.Outputs = append(out.Outputs, RunDBFile)

	inputsDesc, err := describeInputs(p.roles())
	if err != nil {
		return Outcome{}, err
	}
	manifest := Manifest{
		Tool:      Tool,
		Version:   version,
		Command:   "classify",
		StartedAt: started.UTC(),
		Elapsed:   time.Since(started).Round(time.Millisecond).String(),
		Inputs:    inputsDesc,
		Config:    cfg,
		Counts: map[string]int{
			"loci":               len(results),
			"likely_numt":        out.Counts[common.LikelyNUMT],
			"likely_nimt":        out.Counts[common.LikelyNIMT],
			"ambiguous":          out.Counts[common.Ambiguous],
			"malformed_records":  in.malformed + built.Stats.Rejected,
			"filtered_records":   built.Stats.Filtered,
			"singletons":         built.Stats.Singletons,
			"excluded_contigs":   len(built.Excluded),
			"discarded_unpaired": built.Stats.Discarded,
		},
		Outputs: append([]string(nil), out.Outputs...),
	}
	if err := stage.Write(ManifestFile, func(w stdio.Writer) error { return writeManifest(w, manifest) }); err != nil {
		return Outcome{}, err
	}
	out.Outputs = append(out.Outputs, ManifestFile)

	if err := stage.Commit(); err != nil {
		return Outcome{}, err
	}

	if p.MetricsFile != "" {
		if err := m.WriteTextfile(p.MetricsFile); err != nil {
			log.Warn("failed to write metrics textfile", "path", p.MetricsFile, "error", err)
		}
	}

	log.Info("classification finished",
		"NUMT", out.Counts[common.LikelyNUMT],
		"NIMT", out.Counts[common.LikelyNIMT],
		"Ambiguous", out.Counts[common.Ambiguous],
		"elapsed", time.Since(started).Round(time.Millisecond))
	return out, nil
}

func recordPairingStats(m *metrics.Run, st pairing.Stats) {
	m.Records("all", "rejected", st.Rejected)
	m.Records("all", "filtered", st.Filtered)
	m.Records("all", "excluded", st.Excluded)
	m.Records("all", "merged_away", st.MergedAway)
	m.Records("all", "discarded_unpaired", st.Discarded)
}

func saveRunDB(ctx context.Context, stage *io.Stage, results []common.LocusResult, m common.SummaryMetrics) error {
	path, err := stage.Reserve(RunDBFile)
	if err != nil {
		return err
	}
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	if err := db.SaveRun(ctx, results, m); err != nil {
		_ = db.Close()
		return err
	}
	return db.Close()
}

func writeLines(w stdio.Writer, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := stdio.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
