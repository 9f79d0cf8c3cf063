package io

import (
	"bufio"
	stdio "io"
	"math"
	"os"
	"strconv"
	"strings"

	"onsm/numt_classifier/common"
)

// Reference names used in read-support files.
const (
	RefNuclear = "nuclear"
	RefMito    = "mito"
)

const medianDirective = "#median_depth"

// SupportRow is one region's raw read evidence on one reference.
// Depth is the mean per-base depth over [Start, End).
type SupportRow struct {
	Reference   string
	Region      common.Interval
	Depth       float64
	Spanning    int
	Overlapping int
}

// SupportFile is the parsed content of a read-support TSV.
// Medians holds the values of #median_depth directives keyed by reference.
type SupportFile struct {
	Rows    []SupportRow
	Medians map[string]float64
}

// ReadSupport opens and parses a read-support TSV. See ParseSupport.
func ReadSupport(path string) (SupportFile, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return SupportFile{}, nil, err
	}
	defer f.Close()
	return ParseSupport(f, path)
}

// ParseSupport reads
//
//	reference  contig  start  end  depth  spanning  overlapping
//
// rows, plus optional "#median_depth <reference> <value>" directives. Other lines
// starting with '#' and a header line starting with "reference" are skipped.
func ParseSupport(r stdio.Reader, source string) (SupportFile, []error, error) {
	out := SupportFile{Medians: make(map[string]float64)}
	var rejects []error

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "reference\t") {
			continue
		}
		if strings.HasPrefix(text, "#") {
			if !strings.HasPrefix(text, medianDirective) {
				continue
			}
			ref, v, recErr := parseMedianDirective(text)
			if recErr != nil {
				recErr.Source, recErr.Line = source, line
				rejects = append(rejects, recErr)
				continue
			}
			out.Medians[ref] = v
			continue
		}
		row, recErr := parseSupportLine(text)
		if recErr != nil {
			recErr.Source, recErr.Line = source, line
			rejects = append(rejects, recErr)
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return out, rejects, err
	}
	return out, rejects, nil
}

func parseMedianDirective(text string) (string, float64, *common.RecordError) {
	cols := strings.Fields(text)
	if len(cols) != 3 {
		return "", 0, &common.RecordError{Field: "median_depth", Reason: "expected: #median_depth <reference> <value>"}
	}
	ref := cols[1]
	if ref != RefNuclear && ref != RefMito {
		return "", 0, &common.RecordError{Field: "reference", Reason: "unknown reference " + strconv.Quote(ref)}
	}
	v, err := strconv.ParseFloat(cols[2], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return "", 0, &common.RecordError{Field: "median_depth", Reason: "not a non-negative number: " + strconv.Quote(cols[2])}
	}
	return ref, v, nil
}

func parseSupportLine(text string) (SupportRow, *common.RecordError) {
	cols := strings.Split(text, "\t")
	if len(cols) < 7 {
		return SupportRow{}, &common.RecordError{Reason: "expected 7 columns, got " + strconv.Itoa(len(cols))}
	}
	row := SupportRow{Reference: cols[0], Region: common.Interval{Contig: cols[1]}}
	if row.Reference != RefNuclear && row.Reference != RefMito {
		return row, &common.RecordError{Field: "reference", Reason: "unknown reference " + strconv.Quote(row.Reference)}
	}
	if row.Region.Contig == "" {
		return row, &common.RecordError{Field: "contig", Reason: "empty contig name"}
	}

	ints := []struct {
		field string
		col   int
		dst   *int
	}{
		{"start", 2, &row.Region.Start},
		{"end", 3, &row.Region.End},
		{"spanning", 5, &row.Spanning},
		{"overlapping", 6, &row.Overlapping},
	}
	for _, c := range ints {
		v, err := strconv.Atoi(cols[c.col])
		if err != nil {
			return row, &common.RecordError{Field: c.field, Reason: "not an integer: " + strconv.Quote(cols[c.col])}
		}
		if v < 0 {
			return row, &common.RecordError{Field: c.field, Reason: "negative value"}
		}
		*c.dst = v
	}
	if row.Region.End < row.Region.Start {
		return row, &common.RecordError{Field: "end", Reason: "end < start"}
	}

	depth, err := strconv.ParseFloat(cols[4], 64)
	if err != nil || math.IsNaN(depth) || math.IsInf(depth, 0) {
		return row, &common.RecordError{Field: "depth", Reason: "not a number: " + strconv.Quote(cols[4])}
	}
	row.Depth = depth
	return row, nil
}
