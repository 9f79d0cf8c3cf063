package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"onsm/numt_classifier/common"
)

func sampleResults() []common.LocusResult {
	return []common.LocusResult{
		{
			Locus: common.CandidateLocus{
				PairID:    "P000001",
				NucContig: "chr1", NucStart: 100, NucEnd: 44042,
				MitoContig: "mt", MitoStart: 0, MitoEnd: 43942,
				AlnLen: 43942, AlnIdent: 1,
			},
			Features: common.ReadSupportFeatures{
				RNuc:  common.Ratio{Value: 0.768, Defined: true},
				RMito: common.Ratio{Value: 0.703, Defined: true},
				SNuc:  0.001, SMito: 0.001,
			},
			Scores: common.ScorePair{NUMT: 0.4747, NIMT: 0.2947, AlnScore: 1, LengthScore: 0.9, DepthNUMT: 0.36, DepthNIMT: -0.36},
			Class: common.Classification{
				PairID: "P000001", Call: common.LikelyNUMT, Confidence: 0.18,
				Reasons: common.ReasonSet(0).With(common.ReasonScoreDifference),
			},
		},
		{
			Locus: common.CandidateLocus{
				PairID:    "P000002",
				NucContig: "chr2", NucStart: 0, NucEnd: 500,
				MitoContig: "mt", MitoStart: 100, MitoEnd: 600,
				AlnLen: 500, AlnIdent: 0.93, Singleton: true,
			},
			Class: common.Classification{
				PairID: "P000002", Call: common.Ambiguous,
				Reasons: common.ReasonSet(0).
					With(common.ReasonDeltaBelowThreshold).
					With(common.ReasonSingletonLocus).
					With(common.ReasonDepthUndefined),
			},
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "run.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	want := sampleResults()
	summary := common.SummaryMetrics{
		NPairs: 2, NNUMT: 1,
		NuclearBPTotal: 1_000_000, NuclearBPNUMT: 43942, NuclearPctNUMT: 4.3942,
		MitoBPTotal: 50_000, MitoBPNUMTHomologs: 43942, MitoPctNUMTHomologs: 87.884,
	}
	if err := s.SaveRun(ctx, want, summary); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := s.Results(ctx)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Results mismatch (-want +got):\n%s", diff)
	}

	one, err := s.Locus(ctx, "P000002")
	if err != nil {
		t.Fatalf("Locus: %v", err)
	}
	if diff := cmp.Diff(want[1], one); diff != "" {
		t.Errorf("Locus mismatch (-want +got):\n%s", diff)
	}

	gotSummary, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if diff := cmp.Diff(summary, gotSummary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SaveRunReplaces(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "run.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	results := sampleResults()
	if err := s.SaveRun(ctx, results, common.SummaryMetrics{NPairs: 2}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := s.SaveRun(ctx, results[:1], common.SummaryMetrics{NPairs: 1}); err != nil {
		t.Fatalf("SaveRun again: %v", err)
	}
	got, err := s.Results(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("Results: got %d err %v", len(got), err)
	}
	m, err := s.Summary(ctx)
	if err != nil || m.NPairs != 1 {
		t.Fatalf("Summary: got %+v err %v", m, err)
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "run.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.Locus(ctx, "P999999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Locus: want ErrNotFound, got %v", err)
	}
	if _, err := s.Summary(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Summary: want ErrNotFound, got %v", err)
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "run.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveRun(ctx, sampleResults(), common.SummaryMetrics{NPairs: 2}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.Locus(ctx, "P000001"); err != nil {
		t.Errorf("Locus after reopen: %v", err)
	}
}
