package regions

import (
	"sort"

	"onsm/numt_classifier/common"
)

// Set is a multiset of half-open intervals grouped by contig. Queries report the
// per-contig union, so adding the same bases twice never counts them twice.
// The zero value is empty and ready to use.
type Set struct {
	byContig map[string][]common.Interval
}

// NewSet returns a set holding ivs.
func NewSet(ivs ...common.Interval) *Set {
	s := &Set{}
	for _, iv := range ivs {
		s.Add(iv)
	}
	return s
}

// Add records iv. Empty intervals are ignored.
func (s *Set) Add(iv common.Interval) {
	if iv.Len() == 0 {
		return
	}
	if s.byContig == nil {
		s.byContig = make(map[string][]common.Interval)
	}
	s.byContig[iv.Contig] = append(s.byContig[iv.Contig], iv)
}

// Merge returns a new set holding the members of both. Neither input is modified,
// and a.Merge(b) has the same union as b.Merge(a).
func (s *Set) Merge(o *Set) *Set {
	out := &Set{}
	for _, src := range []*Set{s, o} {
		if src == nil {
			continue
		}
		for _, ivs := range src.byContig {
			for _, iv := range ivs {
				out.Add(iv)
			}
		}
	}
	return out
}

// Contigs lists the contigs with at least one interval, sorted by name.
func (s *Set) Contigs() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.byContig))
	for name := range s.byContig {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Union returns the disjoint, sorted intervals covering contig.
func (s *Set) Union(contig string) []common.Interval {
	if s == nil {
		return nil
	}
	return ResolveOverlaps(s.byContig[contig])
}

// Length is the number of distinct bases covered across all contigs.
func (s *Set) Length() int {
	total := 0
	for _, contig := range s.Contigs() {
		for _, iv := range s.Union(contig) {
			total += iv.Len()
		}
	}
	return total
}

// ResolveOverlaps merges overlapping or touching intervals of one contig.
// The input is copied before sorting.
func ResolveOverlaps(ivs []common.Interval) []common.Interval {
	if len(ivs) == 0 {
		return nil
	}

	sorted := make([]common.Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	result := []common.Interval{sorted[0]}
	for _, curr := range sorted[1:] {
		prev := &result[len(result)-1]
		if curr.Start <= prev.End { // overlap or touch
			if curr.End > prev.End {
				prev.End = curr.End
			}
			continue
		}
		result = append(result, curr)
	}
	return result
}
