package merging

import (
	"math"
	"sort"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
)

type chainKey struct {
	dir    common.Direction
	nuc    string
	mito   string
	strand byte
}

// axes returns the hit's query and target intervals for its direction.
func axes(h common.Hit) (q, t common.Interval) {
	if h.Direction == common.NuclearToMito {
		return h.Nuc, h.Mito
	}
	return h.Mito, h.Nuc
}

func setAxes(h *common.Hit, q, t common.Interval) {
	if h.Direction == common.NuclearToMito {
		h.Nuc, h.Mito = q, t
		return
	}
	h.Mito, h.Nuc = q, t
}

// CanMerge reports whether next continues cur collinearly. Gaps are measured on both
// axes (negative means overlap); both must be <= maxGap and differ by no more than
// max(5, min gap * MaxGapRatioDifference). On the minus strand the target axis runs
// backwards.
func CanMerge(cur, next common.Hit, maxGap int) bool {
	cq, ct := axes(cur)
	nq, nt := axes(next)
	qGap := nq.Start - cq.End
	rGap := nt.Start - ct.End
	if cur.Strand == '-' {
		rGap = ct.Start - nt.End
	}
	if qGap > maxGap || rGap > maxGap {
		return false
	}
	minGap := math.Min(float64(qGap), float64(rGap))
	maxDiffAllowed := math.Max(5.0, minGap*config.MaxGapRatioDifference)
	return math.Abs(float64(qGap-rGap)) <= maxDiffAllowed
}

// MergeAdjacentHits chains collinear hits that share direction, contig pair and strand.
// A merged hit spans the union of its parts on both axes, sums their block lengths,
// takes the length-weighted identity and keeps the smallest input index. The result is
// ordered by Index so first-seen order survives. The input is not modified.
func MergeAdjacentHits(hits []common.Hit, maxGap int) []common.Hit {
	if len(hits) <= 1 {
		result := make([]common.Hit, len(hits))
		copy(result, hits)
		return result
	}

	chains := make(map[chainKey][]common.Hit)
	var keys []chainKey
	for _, h := range hits {
		k := chainKey{dir: h.Direction, nuc: h.Nuc.Contig, mito: h.Mito.Contig, strand: h.Strand}
		if _, ok := chains[k]; !ok {
			keys = append(keys, k)
		}
		chains[k] = append(chains[k], h)
	}

	var merged []common.Hit
	for _, k := range keys {
		merged = append(merged, mergeChain(chains[k], maxGap)...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Index < merged[j].Index })
	return merged
}

// mergeChain merges one key's hits; they are sorted by query start first.
func mergeChain(chain []common.Hit, maxGap int) []common.Hit {
	sorted := make([]common.Hit, len(chain))
	copy(sorted, chain)
	sort.Slice(sorted, func(i, j int) bool {
		qi, _ := axes(sorted[i])
		qj, _ := axes(sorted[j])
		if qi.Start != qj.Start {
			return qi.Start < qj.Start
		}
		if qi.End != qj.End {
			return qi.End < qj.End
		}
		return sorted[i].Index < sorted[j].Index
	})

	merged := []common.Hit{sorted[0]}
	for _, next := range sorted[1:] {
		currentMerged := &merged[len(merged)-1]
		if !CanMerge(*currentMerged, next, maxGap) {
			merged = append(merged, next)
			continue
		}
		absorb(currentMerged, next)
	}
	return merged
}

func absorb(cur *common.Hit, next common.Hit) {
	cq, ct := axes(*cur)
	nq, nt := axes(next)
	cq.Start, cq.End = min(cq.Start, nq.Start), max(cq.End, nq.End)
	ct.Start, ct.End = min(ct.Start, nt.Start), max(ct.End, nt.End)
	setAxes(cur, cq, ct)

	total := cur.AlnLen + next.AlnLen
	if total > 0 {
		cur.Identity = (cur.Identity*float64(cur.AlnLen) + next.Identity*float64(next.AlnLen)) / float64(total)
	}
	cur.AlnLen = total
	cur.Index = min(cur.Index, next.Index)
}
