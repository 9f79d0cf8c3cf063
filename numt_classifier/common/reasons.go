package common

import "strings"

// Reason is one tag explaining a classification. The set is closed.
type Reason uint8

const (
	ReasonScoreDifference Reason = iota
	ReasonDeltaBelowThreshold
	ReasonHighConfidence
	ReasonSingletonLocus
	ReasonDepthUndefined

	numReasons
)

var reasonNames = [numReasons]string{
	ReasonScoreDifference:     "score_difference",
	ReasonDeltaBelowThreshold: "delta_below_threshold",
	ReasonHighConfidence:      "high_confidence",
	ReasonSingletonLocus:      "singleton_locus",
	ReasonDepthUndefined:      "depth_undefined",
}

func (r Reason) String() string {
	if r >= numReasons {
		return "unknown"
	}
	return reasonNames[r]
}

// ReasonSet is a bitset of reasons. Iteration and rendering always follow the
// declaration order above, independent of insertion order.
type ReasonSet uint16

// With returns a copy of the set with r added.
func (s ReasonSet) With(r Reason) ReasonSet {
	return s | 1<<r
}

// Has reports whether r is in the set.
func (s ReasonSet) Has(r Reason) bool {
	return s&(1<<r) != 0
}

// Empty reports whether no reason is set.
func (s ReasonSet) Empty() bool {
	return s == 0
}

// Reasons lists the members in declaration order.
func (s ReasonSet) Reasons() []Reason {
	var out []Reason
	for r := Reason(0); r < numReasons; r++ {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Codes lists the member names in declaration order.
func (s ReasonSet) Codes() []string {
	rs := s.Reasons()
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.String()
	}
	return names
}

// String renders the set the way classification.tsv stores it: comma separated.
func (s ReasonSet) String() string {
	return strings.Join(s.Codes(), ",")
}

// ParseReasonSet is the inverse of String. Unknown tags are reported as ok=false.
func ParseReasonSet(text string) (set ReasonSet, ok bool) {
	ok = true
	if strings.TrimSpace(text) == "" {
		return 0, true
	}
	for _, name := range strings.Split(text, ",") {
		name = strings.TrimSpace(name)
		found := false
		for r := Reason(0); r < numReasons; r++ {
			if reasonNames[r] == name {
				set = set.With(r)
				found = true
				break
			}
		}
		if !found {
			ok = false
		}
	}
	return set, ok
}
