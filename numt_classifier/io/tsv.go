package io

import (
	"bufio"
	"fmt"
	stdio "io"
	"os"
	"strconv"
	"strings"

	"onsm/numt_classifier/common"
)

// Output column orders. Downstream tooling depends on them; append, never reorder.
var (
	PairsColumns = []string{
		"pair_id", "nuc_contig", "nuc_start", "nuc_end",
		"mito_contig", "mito_start", "mito_end", "aln_len", "aln_ident",
		"rnuc", "rmito", "s_nuc", "s_mito", "score_numt", "score_nimt",
	}
	ClassificationColumns = []string{"pair_id", "call", "confidence", "reason_codes"}
	SummaryColumns        = []string{
		"n_pairs", "n_numt", "n_nimt",
		"nuclear_bp_total", "nuclear_bp_numt", "nuclear_pct_numt",
		"mito_bp_total", "mito_bp_nimt", "mito_pct_nimt",
	}
	LociColumns = []string{
		"pair_id", "nuc_contig", "nuc_start", "nuc_end",
		"mito_contig", "mito_start", "mito_end", "aln_len", "aln_ident", "singleton",
	}
)

// NotAvailable is printed for undefined depth ratios.
const NotAvailable = "NA"

func fixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func ratio(r common.Ratio) string {
	if !r.Defined {
		return NotAvailable
	}
	return fixed(r.Value, 3)
}

func writeRow(bw *bufio.Writer, cols ...string) error {
	_, err := bw.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// WritePairs writes pairs.tsv rows in the given order.
func WritePairs(w stdio.Writer, results []common.LocusResult) error {
	bw := bufio.NewWriter(w)
	if err := writeRow(bw, PairsColumns...); err != nil {
		return err
	}
	for _, r := range results {
		l := r.Locus
		err := writeRow(bw,
			l.PairID, l.NucContig, strconv.Itoa(l.NucStart), strconv.Itoa(l.NucEnd),
			l.MitoContig, strconv.Itoa(l.MitoStart), strconv.Itoa(l.MitoEnd),
			strconv.Itoa(l.AlnLen), fixed(l.AlnIdent, 4),
			ratio(r.Features.RNuc), ratio(r.Features.RMito),
			fixed(r.Features.SNuc, 3), fixed(r.Features.SMito, 3),
			fixed(r.Scores.NUMT, 4), fixed(r.Scores.NIMT, 4),
		)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteClassification writes classification.tsv rows in the given order.
func WriteClassification(w stdio.Writer, results []common.LocusResult) error {
	bw := bufio.NewWriter(w)
	if err := writeRow(bw, ClassificationColumns...); err != nil {
		return err
	}
	for _, r := range results {
		c := r.Class
		if err := writeRow(bw, c.PairID, c.Call.String(), fixed(c.Confidence, 4), c.Reasons.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSummary writes the one-row summary.tsv. Percentages use prec decimals.
func WriteSummary(w stdio.Writer, s common.SummaryMetrics, prec int) error {
	bw := bufio.NewWriter(w)
	if err := writeRow(bw, SummaryColumns...); err != nil {
		return err
	}
	err := writeRow(bw,
		strconv.Itoa(s.NPairs), strconv.Itoa(s.NNUMT), strconv.Itoa(s.NNIMT),
		strconv.FormatUint(s.NuclearBPTotal, 10), strconv.FormatUint(s.NuclearBPNUMT, 10), fixed(s.NuclearPctNUMT, prec),
		strconv.FormatUint(s.MitoBPTotal, 10), strconv.FormatUint(s.MitoBPNIMT, 10), fixed(s.MitoPctNIMT, prec),
	)
	if err != nil {
		return err
	}
	return bw.Flush()
}

// WriteLoci writes candidate loci without any read evidence, for the external
// depth extractor to query.
func WriteLoci(w stdio.Writer, loci []common.CandidateLocus) error {
	bw := bufio.NewWriter(w)
	if err := writeRow(bw, LociColumns...); err != nil {
		return err
	}
	for _, l := range loci {
		err := writeRow(bw,
			l.PairID, l.NucContig, strconv.Itoa(l.NucStart), strconv.Itoa(l.NucEnd),
			l.MitoContig, strconv.Itoa(l.MitoStart), strconv.Itoa(l.MitoEnd),
			strconv.Itoa(l.AlnLen), fixed(l.AlnIdent, 4), strconv.FormatBool(l.Singleton),
		)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// table is a header-indexed TSV body.
type table struct {
	index map[string]int
	rows  [][]string
}

func (t table) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func readTable(path string, required []string) (table, error) {
	f, err := os.Open(path)
	if err != nil {
		return table{}, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	t := table{}
	for sc.Scan() {
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			continue
		}
		cols := strings.Split(text, "\t")
		if t.index == nil {
			t.index = make(map[string]int, len(cols))
			for i, c := range cols {
				t.index[c] = i
			}
			for _, c := range required {
				if _, ok := t.index[c]; !ok {
					return table{}, fmt.Errorf("%s: missing column %q", path, c)
				}
			}
			continue
		}
		t.rows = append(t.rows, cols)
	}
	if err := sc.Err(); err != nil {
		return table{}, err
	}
	if t.index == nil {
		return table{}, fmt.Errorf("%s: empty file", path)
	}
	return t, nil
}

// ReadPairsLoci reads the locus coordinates back out of pairs.tsv (or loci.tsv).
// Rows that do not parse are returned as rejects.
func ReadPairsLoci(path string) ([]common.CandidateLocus, []error, error) {
	t, err := readTable(path, LociColumns[:9])
	if err != nil {
		return nil, nil, err
	}
	var (
		loci    []common.CandidateLocus
		rejects []error
	)
	for i, row := range t.rows {
		l := common.CandidateLocus{
			PairID:     t.get(row, "pair_id"),
			NucContig:  t.get(row, "nuc_contig"),
			MitoContig: t.get(row, "mito_contig"),
		}
		var bad *common.RecordError
		for _, c := range []struct {
			col string
			dst *int
		}{
			{"nuc_start", &l.NucStart}, {"nuc_end", &l.NucEnd},
			{"mito_start", &l.MitoStart}, {"mito_end", &l.MitoEnd},
			{"aln_len", &l.AlnLen},
		} {
			v, err := strconv.Atoi(t.get(row, c.col))
			if err != nil || v < 0 {
				bad = &common.RecordError{Field: c.col, Reason: "not a non-negative integer"}
				break
			}
			*c.dst = v
		}
		if bad == nil {
			ident, err := strconv.ParseFloat(t.get(row, "aln_ident"), 64)
			switch {
			case err != nil || ident < 0 || ident > 1:
				bad = &common.RecordError{Field: "aln_ident", Reason: "not a fraction"}
			case l.NucEnd < l.NucStart || l.MitoEnd < l.MitoStart:
				bad = &common.RecordError{Field: "end", Reason: "end < start"}
			default:
				l.AlnIdent = ident
			}
		}
		if bad != nil {
			bad.Source, bad.Line = path, i+2
			rejects = append(rejects, bad)
			continue
		}
		l.Singleton = t.get(row, "singleton") == "true"
		loci = append(loci, l)
	}
	return loci, rejects, nil
}

// ReadCalls reads classification.tsv into pair_id -> classification.
// Unknown calls read as Ambiguous.
func ReadCalls(path string) (map[string]common.Classification, error) {
	t, err := readTable(path, ClassificationColumns[:2])
	if err != nil {
		return nil, err
	}
	calls := make(map[string]common.Classification, len(t.rows))
	for _, row := range t.rows {
		c := common.Classification{
			PairID: t.get(row, "pair_id"),
			Call:   common.ParseCall(t.get(row, "call")),
		}
		if v, err := strconv.ParseFloat(t.get(row, "confidence"), 64); err == nil {
			c.Confidence = v
		}
		c.Reasons, _ = common.ParseReasonSet(t.get(row, "reason_codes"))
		calls[c.PairID] = c
	}
	return calls, nil
}
