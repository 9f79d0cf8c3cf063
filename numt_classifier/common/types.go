package common

// Interval is a half-open span [Start, End) on one contig, 0-based like PAF and BED.
type Interval struct {
	Contig string
	Start  int
	End    int
}

// Len returns the number of bases covered; malformed intervals report 0.
func (iv Interval) Len() int {
	if iv.End <= iv.Start {
		return 0
	}
	return iv.End - iv.Start
}

// OverlapsWithin reports whether two intervals on the same contig overlap once each side
// is padded by tol bases. Touching intervals overlap when tol >= 0.
func (iv Interval) OverlapsWithin(o Interval, tol int) bool {
	if iv.Contig != o.Contig {
		return false
	}
	return iv.Start <= o.End+tol && o.Start <= iv.End+tol
}

// Direction tells which assembly was the alignment query.
type Direction uint8

const (
	MitoToNuclear Direction = iota // query = mito contig, target = nuclear contig
	NuclearToMito                  // query = nuclear contig, target = mito contig
)

func (d Direction) String() string {
	if d == NuclearToMito {
		return "nuc_to_mito"
	}
	return "mito_to_nuc"
}

// AlignmentRecord is one PAF line. Coordinates are 0-based half-open.
// Identity is Matches / BlockLen unless the producer supplied it directly.
type AlignmentRecord struct {
	QueryName   string
	QueryLen    int
	QueryStart  int
	QueryEnd    int
	Strand      byte // '+' or '-'
	TargetName  string
	TargetLen   int
	TargetStart int
	TargetEnd   int
	Matches     int
	BlockLen    int
	MapQ        int
	Identity    float64
}

// Hit is an alignment re-expressed on the nuclear/mito axes, whichever side was the query.
// Index is the record's position in its input stream and drives first-seen ordering.
type Hit struct {
	Nuc       Interval
	Mito      Interval
	Strand    byte
	AlnLen    int
	Identity  float64
	Direction Direction
	Index     int
}

// CandidateLocus pairs one nuclear region with one mitochondrial region.
// Coordinates are 0-based half-open; loci are never modified once built.
type CandidateLocus struct {
	PairID     string
	NucContig  string
	NucStart   int
	NucEnd     int
	MitoContig string
	MitoStart  int
	MitoEnd    int
	AlnLen     int
	AlnIdent   float64

	// Singleton is set when the locus has no reciprocal partner.
	Singleton bool
}

// NucInterval returns the nuclear side of the locus.
func (l CandidateLocus) NucInterval() Interval {
	return Interval{Contig: l.NucContig, Start: l.NucStart, End: l.NucEnd}
}

// MitoInterval returns the mitochondrial side of the locus.
func (l CandidateLocus) MitoInterval() Interval {
	return Interval{Contig: l.MitoContig, Start: l.MitoStart, End: l.MitoEnd}
}

// Ratio is a normalized depth. Defined is false when the genome-wide median was zero,
// in which case Value carries no meaning.
type Ratio struct {
	Value   float64
	Defined bool
}

// ReadSupportFeatures are the per-locus read evidence used by the scorer.
type ReadSupportFeatures struct {
	RNuc  Ratio
	RMito Ratio
	SNuc  float64
	SMito float64
}

// DepthDefined reports whether both depth ratios can be used as evidence.
func (f ReadSupportFeatures) DepthDefined() bool {
	return f.RNuc.Defined && f.RMito.Defined
}

// ScorePair holds both hypothesis scores and the terms they were built from.
// AlnScore and LengthScore are shared by both hypotheses.
type ScorePair struct {
	NUMT        float64
	NIMT        float64
	AlnScore    float64
	LengthScore float64
	DepthNUMT   float64
	DepthNIMT   float64
	SpanNUMT    float64
	SpanNIMT    float64
}

// Delta is score_numt - score_nimt.
func (s ScorePair) Delta() float64 {
	return s.NUMT - s.NIMT
}

// Call is the terminal decision for one locus.
type Call uint8

const (
	Ambiguous Call = iota
	LikelyNUMT
	LikelyNIMT
)

func (c Call) String() string {
	switch c {
	case LikelyNUMT:
		return "Likely_NUMT"
	case LikelyNIMT:
		return "Likely_NIMT"
	default:
		return "Ambiguous"
	}
}

// ParseCall maps the classification.tsv spelling back to a Call.
// Unknown values are treated as Ambiguous, matching how the summary ignores them.
func ParseCall(s string) Call {
	switch s {
	case "Likely_NUMT":
		return LikelyNUMT
	case "Likely_NIMT":
		return LikelyNIMT
	default:
		return Ambiguous
	}
}

// Classification is the classifier's output for one locus.
type Classification struct {
	PairID     string
	Call       Call
	Confidence float64
	Reasons    ReasonSet
}

// LocusResult bundles everything computed for one locus, in pair_id order.
type LocusResult struct {
	Locus    CandidateLocus
	Features ReadSupportFeatures
	Scores   ScorePair
	Class    Classification
}

// SummaryMetrics are the genome-level totals. Percentages are percent values
// (0.02 means 0.02 %), already rounded to the configured precision.
type SummaryMetrics struct {
	NPairs int
	NNUMT  int
	NNIMT  int

	NuclearBPTotal uint64
	NuclearBPNUMT  uint64
	NuclearPctNUMT float64

	MitoBPTotal uint64
	MitoBPNIMT  uint64
	MitoPctNIMT float64

	// Coverage of the opposite genome by the homologous side of each call.
	MitoBPNUMTHomologs     uint64
	MitoPctNUMTHomologs    float64
	NuclearBPNIMTHomologs  uint64
	NuclearPctNIMTHomologs float64
}
