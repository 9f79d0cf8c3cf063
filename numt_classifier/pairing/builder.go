package pairing

import (
	"fmt"
	"log/slog"
	"sort"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
	"onsm/numt_classifier/logging"
	"onsm/numt_classifier/merging"
)

// PairIDPrefix and the zero-padded width make ids like P000001.
const PairIDPrefix = "P"

// FormatPairID returns the id of the n-th discovered locus, counting from 1.
func FormatPairID(n int) string {
	return fmt.Sprintf("%s%06d", PairIDPrefix, n)
}

// Input holds both alignment directions in input order.
// ContigLengths (from .fai indexes) is optional; PAF lengths fill the gaps.
type Input struct {
	MitoToNuc     []common.AlignmentRecord
	NucToMito     []common.AlignmentRecord
	ContigLengths map[string]int
}

// Stats counts what happened to the input records.
type Stats struct {
	Rejected   int // failed validation
	Filtered   int // below min_identity / min_length
	Excluded   int // on organelle-like nuclear contigs
	MergedAway int // absorbed by collinear pre-merge
	Reciprocal int // loci with at least one partner
	Singletons int // loci kept under the retain policy
	Discarded  int // unpaired hits dropped under the discard policy
}

// Result is the builder output. Loci are in pair_id order.
type Result struct {
	Loci     []common.CandidateLocus
	Excluded []string
	Stats    Stats
}

// Builder turns alignment records into candidate loci.
type Builder struct {
	cfg config.Pairing
	log *slog.Logger
}

// NewBuilder returns a builder for cfg, which must already be validated.
func NewBuilder(cfg config.Pairing) *Builder {
	return &Builder{cfg: cfg, log: logging.New("pairing")}
}

// Build pairs mito->nuc hits (drivers) with reciprocal nuc->mito hits (partners)
// and emits one locus per connected group. An empty side is not an error.
func (b *Builder) Build(in Input) Result {
	var res Result

	excluded := map[string]bool{}
	if !b.cfg.AllowOrganelleInNuclear {
		excluded = organelleLike(in.MitoToNuc, in.ContigLengths)
		for name := range excluded {
			res.Excluded = append(res.Excluded, name)
		}
		sort.Strings(res.Excluded)
		if len(res.Excluded) > 0 {
			b.log.Warn("excluding organelle-like nuclear contigs", "contigs", res.Excluded)
		}
	}

	drivers := b.prepare(in.MitoToNuc, common.MitoToNuclear, excluded, &res.Stats)
	partners := b.prepare(in.NucToMito, common.NuclearToMito, excluded, &res.Stats)
	res.Loci = b.group(drivers, partners, &res.Stats)

	b.log.Info("candidate loci built",
		"drivers", len(drivers), "partners", len(partners), "loci", len(res.Loci),
		"reciprocal", res.Stats.Reciprocal, "singletons", res.Stats.Singletons,
		"discarded", res.Stats.Discarded, "rejected", res.Stats.Rejected, "filtered", res.Stats.Filtered)
	return res
}

// prepare validates, filters and pre-merges one direction's records.
func (b *Builder) prepare(recs []common.AlignmentRecord, dir common.Direction, excluded map[string]bool, st *Stats) []common.Hit {
	hits := make([]common.Hit, 0, len(recs))
	for i, rec := range recs {
		if recErr := CheckRecord(rec); recErr != nil {
			recErr.Source, recErr.Line = dir.String(), i+1
			b.log.Warn("rejected alignment record", "error", recErr)
			st.Rejected++
			continue
		}
		if !passesFilters(rec, b.cfg) {
			st.Filtered++
			continue
		}
		h := toHit(rec, dir, i)
		if excluded[h.Nuc.Contig] {
			st.Excluded++
			continue
		}
		hits = append(hits, h)
	}
	merged := merging.MergeAdjacentHits(hits, b.cfg.MergeGap)
	st.MergedAway += len(hits) - len(merged)
	return merged
}

// partnerIndex holds one (nuclear contig, mito contig) pair's partners sorted by
// nuclear start, with a running maximum of nuclear ends for the sweep.
type partnerIndex struct {
	hits   []common.Hit
	nodes  []int
	maxEnd []int
}

type contigPair struct{ nuc, mito string }

func buildPartnerIndex(partners []common.Hit, offset int) map[contigPair]*partnerIndex {
	idx := make(map[contigPair]*partnerIndex)
	for i, p := range partners {
		k := contigPair{p.Nuc.Contig, p.Mito.Contig}
		pi := idx[k]
		if pi == nil {
			pi = &partnerIndex{}
			idx[k] = pi
		}
		pi.hits = append(pi.hits, p)
		pi.nodes = append(pi.nodes, offset+i)
	}
	for _, pi := range idx {
		sort.Sort(byNucStart{pi})
		pi.maxEnd = make([]int, len(pi.hits))
		for i, h := range pi.hits {
			pi.maxEnd[i] = h.Nuc.End
			if i > 0 && pi.maxEnd[i-1] > h.Nuc.End {
				pi.maxEnd[i] = pi.maxEnd[i-1]
			}
		}
	}
	return idx
}

type byNucStart struct{ *partnerIndex }

func (s byNucStart) Len() int { return len(s.hits) }
func (s byNucStart) Swap(i, j int) {
	s.hits[i], s.hits[j] = s.hits[j], s.hits[i]
	s.nodes[i], s.nodes[j] = s.nodes[j], s.nodes[i]
}
func (s byNucStart) Less(i, j int) bool {
	if s.hits[i].Nuc.Start != s.hits[j].Nuc.Start {
		return s.hits[i].Nuc.Start < s.hits[j].Nuc.Start
	}
	return s.nodes[i] < s.nodes[j]
}

// reciprocal returns the partner nodes matching driver d, found by walking back from
// the last partner starting within reach until no earlier partner can still reach d.
func (pi *partnerIndex) reciprocal(d common.Hit, tol int) []int {
	hi := sort.Search(len(pi.hits), func(j int) bool {
		return pi.hits[j].Nuc.Start > d.Nuc.End+tol
	})
	var out []int
	for j := hi - 1; j >= 0 && pi.maxEnd[j]+tol >= d.Nuc.Start; j-- {
		p := pi.hits[j]
		if d.Nuc.OverlapsWithin(p.Nuc, tol) && d.Mito.OverlapsWithin(p.Mito, tol) {
			out = append(out, pi.nodes[j])
		}
	}
	return out
}

// group joins drivers with partners, then numbers the connected groups.
// Nodes 0..len(drivers)-1 are drivers; partners follow.
func (b *Builder) group(drivers, partners []common.Hit, st *Stats) []common.CandidateLocus {
	nd := len(drivers)
	uf := newUnionFind(nd + len(partners))
	linked := make([]bool, nd+len(partners))

	idx := buildPartnerIndex(partners, nd)
	for di, d := range drivers {
		pi := idx[contigPair{d.Nuc.Contig, d.Mito.Contig}]
		if pi == nil {
			continue
		}
		for _, node := range pi.reciprocal(d, b.cfg.Tolerance) {
			uf.union(di, node)
			linked[di], linked[node] = true, true
		}
	}

	members := make(map[int][]int)
	for node, ok := range linked {
		if !ok {
			continue
		}
		root := uf.find(node)
		members[root] = append(members[root], node)
	}

	hitOf := func(node int) common.Hit {
		if node < nd {
			return drivers[node]
		}
		return partners[node-nd]
	}

	// Discovery order: drivers in input order, then orphan partners in input order.
	var loci []common.CandidateLocus
	seen := make(map[int]bool)
	emit := func(node int) {
		root := uf.find(node)
		if seen[root] {
			return
		}
		seen[root] = true
		if !linked[node] {
			if b.cfg.Singletons != config.SingletonRetain {
				st.Discarded++
				return
			}
			st.Singletons++
			l := b.mergeMembers([]common.Hit{hitOf(node)})
			l.Singleton = true
			l.PairID = FormatPairID(len(loci) + 1)
			loci = append(loci, l)
			return
		}
		group := members[root]
		sort.Ints(group) // drivers before partners, each in input order
		hits := make([]common.Hit, len(group))
		for i, n := range group {
			hits[i] = hitOf(n)
		}
		st.Reciprocal++
		l := b.mergeMembers(hits)
		l.PairID = FormatPairID(len(loci) + 1)
		loci = append(loci, l)
	}
	for _, node := range sortedByIndex(drivers, 0) {
		emit(node)
	}
	for _, node := range sortedByIndex(partners, nd) {
		emit(node)
	}
	return loci
}

// sortedByIndex returns node ids of hits ordered by their input index.
func sortedByIndex(hits []common.Hit, offset int) []int {
	order := make([]int, len(hits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return hits[order[a]].Index < hits[order[b]].Index
	})
	for i := range order {
		order[i] += offset
	}
	return order
}

// mergeMembers collapses one group into a locus. Members must be ordered drivers
// first, each side in input order; that order breaks identity ties.
func (b *Builder) mergeMembers(hits []common.Hit) common.CandidateLocus {
	best := 0
	for i, h := range hits {
		if h.Identity > hits[best].Identity {
			best = i
		}
	}

	nuc, mito := hits[best].Nuc, hits[best].Mito
	if len(hits) > 1 {
		nuc, mito = spanOf(hits, b.cfg.SpanMerge, true), spanOf(hits, b.cfg.SpanMerge, false)
		if nuc.Len() == 0 || mito.Len() == 0 {
			nuc, mito = hits[best].Nuc, hits[best].Mito
		}
	}

	l := common.CandidateLocus{
		NucContig:  nuc.Contig,
		NucStart:   nuc.Start,
		NucEnd:     nuc.End,
		MitoContig: mito.Contig,
		MitoStart:  mito.Start,
		MitoEnd:    mito.End,
		AlnLen:     hits[best].AlnLen,
		AlnIdent:   hits[best].Identity,
	}
	if b.cfg.IdentityMerge == config.IdentityWeighted {
		var weighted float64
		total, longest := 0, 0
		for _, h := range hits {
			weighted += h.Identity * float64(h.AlnLen)
			total += h.AlnLen
			longest = max(longest, h.AlnLen)
		}
		l.AlnLen = longest
		if total > 0 {
			l.AlnIdent = weighted / float64(total)
		}
	}
	return l
}

// spanOf combines the nuclear (nuclear=true) or mito spans of all members.
func spanOf(hits []common.Hit, mode config.SpanMerge, nuclear bool) common.Interval {
	pick := func(h common.Hit) common.Interval {
		if nuclear {
			return h.Nuc
		}
		return h.Mito
	}
	out := pick(hits[0])
	for _, h := range hits[1:] {
		iv := pick(h)
		if mode == config.SpanIntersection {
			out.Start, out.End = max(out.Start, iv.Start), min(out.End, iv.End)
			continue
		}
		out.Start, out.End = min(out.Start, iv.Start), max(out.End, iv.End)
	}
	return out
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// union keeps the smaller id as root.
func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
}
