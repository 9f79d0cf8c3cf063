package pairing

import (
	"math"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
)

// CheckRecord validates one alignment record. Records coming from io.ReadPAF already
// pass; the builder re-checks because callers may hand in records built elsewhere.
func CheckRecord(rec common.AlignmentRecord) *common.RecordError {
	switch {
	case rec.QueryName == "" || rec.TargetName == "":
		return &common.RecordError{Field: "name", Reason: "empty contig name"}
	case rec.QueryStart < 0 || rec.TargetStart < 0 || rec.Matches < 0 || rec.BlockLen < 0:
		return &common.RecordError{Reason: "negative value"}
	case rec.QueryEnd < rec.QueryStart:
		return &common.RecordError{Field: "query_end", Reason: "end < start"}
	case rec.TargetEnd < rec.TargetStart:
		return &common.RecordError{Field: "target_end", Reason: "end < start"}
	case rec.BlockLen == 0:
		return &common.RecordError{Field: "block_len", Reason: "alignment block length must be positive"}
	case rec.Matches > rec.BlockLen:
		return &common.RecordError{Field: "matches", Reason: "residue matches exceed block length"}
	case rec.Strand != '+' && rec.Strand != '-':
		return &common.RecordError{Field: "strand", Reason: "must be + or -"}
	case math.IsNaN(rec.Identity) || rec.Identity < 0 || rec.Identity > 1:
		return &common.RecordError{Field: "identity", Reason: "must be within [0,1]"}
	}
	return nil
}

// toHit re-expresses rec on the nuclear/mito axes.
func toHit(rec common.AlignmentRecord, dir common.Direction, index int) common.Hit {
	q := common.Interval{Contig: rec.QueryName, Start: rec.QueryStart, End: rec.QueryEnd}
	t := common.Interval{Contig: rec.TargetName, Start: rec.TargetStart, End: rec.TargetEnd}
	h := common.Hit{
		Strand:    rec.Strand,
		AlnLen:    rec.BlockLen,
		Identity:  rec.Identity,
		Direction: dir,
		Index:     index,
	}
	if dir == common.MitoToNuclear {
		h.Mito, h.Nuc = q, t
	} else {
		h.Nuc, h.Mito = q, t
	}
	return h
}

// passesFilters applies the per-direction identity and length floors.
func passesFilters(rec common.AlignmentRecord, cfg config.Pairing) bool {
	return rec.Identity >= cfg.MinIdentity && rec.BlockLen >= cfg.MinLength
}

// contigLength prefers the .fai length and falls back to the length PAF carries.
func contigLength(lengths map[string]int, name string, fromPAF int) int {
	if n, ok := lengths[name]; ok && n > 0 {
		return n
	}
	return fromPAF
}

// organelleLike flags nuclear contigs that are really a copy of the mitochondrial
// genome: a near-identical mito->nuc hit covering most of the mito contig, on a
// nuclear contig not much longer than the mito contig.
func organelleLike(m2n []common.AlignmentRecord, lengths map[string]int) map[string]bool {
	out := make(map[string]bool)
	for _, rec := range m2n {
		if CheckRecord(rec) != nil || rec.Identity < config.OrganelleMinIdentity {
			continue
		}
		mitoLen := contigLength(lengths, rec.QueryName, rec.QueryLen)
		nucLen := contigLength(lengths, rec.TargetName, rec.TargetLen)
		if mitoLen <= 0 || nucLen <= 0 {
			continue
		}
		coverage := float64(rec.QueryEnd-rec.QueryStart) / float64(mitoLen)
		if coverage >= config.OrganelleMinMitoCoverage && float64(nucLen) <= config.OrganelleMaxSizeRatio*float64(mitoLen) {
			out[rec.TargetName] = true
		}
	}
	return out
}
