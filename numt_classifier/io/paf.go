package io

import (
	"bufio"
	stdio "io"
	"os"
	"strconv"
	"strings"

	"onsm/numt_classifier/common"
)

const (
	pafMandatoryColumns = 12
	maxLineBytes        = 64 << 20 // cg:Z / cs:Z tags can be very long
)

// ReadPAF opens and parses a PAF file. See ParsePAF.
func ReadPAF(path string) ([]common.AlignmentRecord, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ParsePAF(f, path)
}

// ParsePAF reads PAF lines from r. Lines that fail validation are skipped and returned
// in rejects as *common.RecordError; err is only set for read failures.
// Identity is residue matches / block length unless an id:f: tag supplies it.
func ParsePAF(r stdio.Reader, source string) (records []common.AlignmentRecord, rejects []error, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rec, recErr := parsePAFLine(text)
		if recErr != nil {
			recErr.Source = source
			recErr.Line = line
			rejects = append(rejects, recErr)
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return records, rejects, err
	}
	return records, rejects, nil
}

func parsePAFLine(text string) (common.AlignmentRecord, *common.RecordError) {
	cols := strings.Split(text, "\t")
	if len(cols) < pafMandatoryColumns {
		return common.AlignmentRecord{}, &common.RecordError{
			Reason: "expected " + strconv.Itoa(pafMandatoryColumns) + " columns, got " + strconv.Itoa(len(cols)),
		}
	}

	var rec common.AlignmentRecord
	rec.QueryName = cols[0]
	rec.TargetName = cols[5]
	if rec.QueryName == "" || rec.TargetName == "" {
		return rec, &common.RecordError{Field: "name", Reason: "empty contig name"}
	}

	ints := []struct {
		field string
		col   int
		dst   *int
	}{
		{"query_len", 1, &rec.QueryLen},
		{"query_start", 2, &rec.QueryStart},
		{"query_end", 3, &rec.QueryEnd},
		{"target_len", 6, &rec.TargetLen},
		{"target_start", 7, &rec.TargetStart},
		{"target_end", 8, &rec.TargetEnd},
		{"matches", 9, &rec.Matches},
		{"block_len", 10, &rec.BlockLen},
		{"mapq", 11, &rec.MapQ},
	}
	for _, c := range ints {
		v, err := strconv.Atoi(cols[c.col])
		if err != nil {
			return rec, &common.RecordError{Field: c.field, Reason: "not an integer: " + strconv.Quote(cols[c.col])}
		}
		if v < 0 {
			return rec, &common.RecordError{Field: c.field, Reason: "negative value"}
		}
		*c.dst = v
	}

	switch cols[4] {
	case "+", "-":
		rec.Strand = cols[4][0]
	default:
		return rec, &common.RecordError{Field: "strand", Reason: "must be + or -, got " + strconv.Quote(cols[4])}
	}

	switch {
	case rec.QueryEnd < rec.QueryStart:
		return rec, &common.RecordError{Field: "query_end", Reason: "end < start"}
	case rec.TargetEnd < rec.TargetStart:
		return rec, &common.RecordError{Field: "target_end", Reason: "end < start"}
	case rec.QueryLen > 0 && rec.QueryEnd > rec.QueryLen:
		return rec, &common.RecordError{Field: "query_end", Reason: "beyond contig length"}
	case rec.TargetLen > 0 && rec.TargetEnd > rec.TargetLen:
		return rec, &common.RecordError{Field: "target_end", Reason: "beyond contig length"}
	case rec.BlockLen == 0:
		return rec, &common.RecordError{Field: "block_len", Reason: "alignment block length must be positive"}
	case rec.Matches > rec.BlockLen:
		return rec, &common.RecordError{Field: "matches", Reason: "residue matches exceed block length"}
	}

	rec.Identity = float64(rec.Matches) / float64(rec.BlockLen)
	for _, tag := range cols[pafMandatoryColumns:] {
		if !strings.HasPrefix(tag, "id:f:") {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimPrefix(tag, "id:f:"), 64)
		if err != nil || v < 0 || v > 1 {
			return rec, &common.RecordError{Field: "id", Reason: "identity tag must be a fraction in [0,1]"}
		}
		rec.Identity = v
	}
	return rec, nil
}
