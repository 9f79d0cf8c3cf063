package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"onsm/numt_classifier/common"
)

var (
	numtColor      = color.New(color.FgGreen, color.Bold)
	nimtColor      = color.New(color.FgBlue, color.Bold)
	ambiguousColor = color.New(color.FgYellow)
)

// SetColor forces colour on or off; "auto" leaves fatih/color's terminal detection alone.
func SetColor(mode string) {
	switch mode {
	case "on", "always":
		color.NoColor = false
	case "off", "never":
		color.NoColor = true
	}
}

// CallName renders a call in its colour.
func CallName(c common.Call) string {
	switch c {
	case common.LikelyNUMT:
		return numtColor.Sprint(c.String())
	case common.LikelyNIMT:
		return nimtColor.Sprint(c.String())
	default:
		return ambiguousColor.Sprint(c.String())
	}
}

// CallCounts is the one-line tally printed at the end of a run.
func CallCounts(numt, nimt, ambiguous int) string {
	return fmt.Sprintf("%s %d / %s %d / %s %d",
		numtColor.Sprint("NUMT"), numt,
		nimtColor.Sprint("NIMT"), nimt,
		ambiguousColor.Sprint("Ambiguous"), ambiguous)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// Summary renders the genome-level metrics as a two-column table.
func Summary(w io.Writer, m common.SummaryMetrics, prec int) {
	pct := func(v float64) string { return strconv.FormatFloat(v, 'f', prec, 64) + " %" }
	t := newTable(w)
	t.AppendHeader(table.Row{"metric", "value"})
	t.AppendRows([]table.Row{
		{"pairs", m.NPairs},
		{"Likely_NUMT", m.NNUMT},
		{"Likely_NIMT", m.NNIMT},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"nuclear bp total", m.NuclearBPTotal},
		{"nuclear bp in NUMTs", m.NuclearBPNUMT},
		{"nuclear % NUMT", pct(m.NuclearPctNUMT)},
		{"nuclear bp homologous to NIMTs", m.NuclearBPNIMTHomologs},
		{"nuclear % NIMT homologs", pct(m.NuclearPctNIMTHomologs)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"mito bp total", m.MitoBPTotal},
		{"mito bp in NIMTs", m.MitoBPNIMT},
		{"mito % NIMT", pct(m.MitoPctNIMT)},
		{"mito bp homologous to NUMTs", m.MitoBPNUMTHomologs},
		{"mito % NUMT homologs", pct(m.MitoPctNUMTHomologs)},
	})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()
}

func ratioText(r common.Ratio) string {
	if !r.Defined {
		return "NA"
	}
	return strconv.FormatFloat(r.Value, 'f', 3, 64)
}

func f4(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Locus renders everything known about one locus.
func Locus(w io.Writer, r common.LocusResult) {
	l, f, s, c := r.Locus, r.Features, r.Scores, r.Class
	t := newTable(w)
	t.SetTitle(l.PairID)
	t.AppendHeader(table.Row{"field", "value"})
	t.AppendRows([]table.Row{
		{"nuclear", fmt.Sprintf("%s:%d-%d", l.NucContig, l.NucStart, l.NucEnd)},
		{"mito", fmt.Sprintf("%s:%d-%d", l.MitoContig, l.MitoStart, l.MitoEnd)},
		{"aln_len", l.AlnLen},
		{"aln_ident", f4(l.AlnIdent)},
		{"singleton", l.Singleton},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"rnuc", ratioText(f.RNuc)},
		{"rmito", ratioText(f.RMito)},
		{"s_nuc", strconv.FormatFloat(f.SNuc, 'f', 3, 64)},
		{"s_mito", strconv.FormatFloat(f.SMito, 'f', 3, 64)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"aln_score", f4(s.AlnScore)},
		{"length_score", f4(s.LengthScore)},
		{"depth (NUMT / NIMT)", f4(s.DepthNUMT) + " / " + f4(s.DepthNIMT)},
		{"span (NUMT / NIMT)", f4(s.SpanNUMT) + " / " + f4(s.SpanNIMT)},
		{"score_numt", f4(s.NUMT)},
		{"score_nimt", f4(s.NIMT)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"call", CallName(c.Call)},
		{"confidence", f4(c.Confidence)},
		{"reasons", c.Reasons.String()},
	})
	t.Render()
}
