package regions

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"onsm/numt_classifier/common"
)

func iv(contig string, start, end int) common.Interval {
	return common.Interval{Contig: contig, Start: start, End: end}
}

func TestResolveOverlaps(t *testing.T) {
	tests := []struct {
		name string
		in   []common.Interval
		want []common.Interval
	}{
		{"empty", nil, nil},
		{"single", []common.Interval{iv("c", 5, 10)}, []common.Interval{iv("c", 5, 10)}},
		{
			"touching intervals merge",
			[]common.Interval{iv("c", 10, 20), iv("c", 0, 10)},
			[]common.Interval{iv("c", 0, 20)},
		},
		{
			"nested",
			[]common.Interval{iv("c", 0, 100), iv("c", 10, 20)},
			[]common.Interval{iv("c", 0, 100)},
		},
		{
			"disjoint stay apart",
			[]common.Interval{iv("c", 30, 40), iv("c", 0, 10)},
			[]common.Interval{iv("c", 0, 10), iv("c", 30, 40)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOverlaps(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolveOverlaps() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveOverlaps_DoesNotReorderInput(t *testing.T) {
	in := []common.Interval{iv("c", 30, 40), iv("c", 0, 10)}
	_ = ResolveOverlaps(in)
	assert.Equal(t, 30, in[0].Start)
}

func TestSet_LengthCountsOverlapOnce(t *testing.T) {
	s := NewSet(iv("chr1", 0, 100), iv("chr1", 50, 150), iv("chr2", 0, 10), iv("chr2", 5, 5))
	assert.Equal(t, 160, s.Length())
	assert.Equal(t, []string{"chr1", "chr2"}, s.Contigs())
}

func TestSet_MergeIsCommutativeAndAssociative(t *testing.T) {
	a := NewSet(iv("chr1", 0, 100), iv("chr2", 10, 20))
	b := NewSet(iv("chr1", 90, 200))
	c := NewSet(iv("chr2", 15, 40), iv("chr3", 0, 1))

	ab := a.Merge(b)
	ba := b.Merge(a)
	for _, contig := range []string{"chr1", "chr2", "chr3"} {
		if diff := cmp.Diff(ab.Union(contig), ba.Union(contig)); diff != "" {
			t.Errorf("a∪b != b∪a on %s:\n%s", contig, diff)
		}
	}

	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))
	for _, contig := range []string{"chr1", "chr2", "chr3"} {
		if diff := cmp.Diff(left.Union(contig), right.Union(contig)); diff != "" {
			t.Errorf("(a∪b)∪c != a∪(b∪c) on %s:\n%s", contig, diff)
		}
	}
	assert.Equal(t, 200+30+1, left.Length())

	// inputs untouched
	assert.Equal(t, 110, a.Length())
}

func TestSet_NilAndZeroValue(t *testing.T) {
	var s Set
	assert.Equal(t, 0, s.Length())
	var nilSet *Set
	assert.Nil(t, nilSet.Union("x"))
	merged := nilSet.Merge(NewSet(iv("c", 0, 3)))
	assert.Equal(t, 3, merged.Length())
}
