// Package tagging classifies every edge of a transaction as normal value,
// dust, fee or tip.
package tagging

import (
	"sort"

	"solana-trade-recon/internal/domain"
)

// Tags is a read-only view of the tag of every edge, keyed by seq.
// The zero value tags nothing and reports TagNormal for every seq.
type Tags struct {
	m map[int]domain.EdgeTag
}

// Get returns the tag of seq. Unknown seqs are Normal.
func (t Tags) Get(seq int) domain.EdgeTag {
	return t.m[seq]
}

// Lookup returns the tag of seq and whether seq was tagged.
func (t Tags) Lookup(seq int) (domain.EdgeTag, bool) {
	tag, ok := t.m[seq]
	return tag, ok
}

// Is reports whether seq carries any of tags.
func (t Tags) Is(seq int, tags ...domain.EdgeTag) bool {
	got := t.m[seq]
	for _, tag := range tags {
		if got == tag {
			return true
		}
	}
	return false
}

// Len returns the number of tagged edges.
func (t Tags) Len() int {
	return len(t.m)
}

// Each calls fn for every tagged edge in seq order.
func (t Tags) Each(fn func(seq int, tag domain.EdgeTag)) {
	seqs := make([]int, 0, len(t.m))
	for seq := range t.m {
		seqs = append(seqs, seq)
	}
	sort.Ints(seqs)
	for _, seq := range seqs {
		fn(seq, t.m[seq])
	}
}

// Count returns how many edges carry tag.
func (t Tags) Count(tag domain.EdgeTag) int {
	n := 0
	for _, got := range t.m {
		if got == tag {
			n++
		}
	}
	return n
}

// Equal reports whether both views hold the same tags.
func (t Tags) Equal(o Tags) bool {
	if len(t.m) != len(o.m) {
		return false
	}
	for seq, tag := range t.m {
		if got, ok := o.m[seq]; !ok || got != tag {
			return false
		}
	}
	return true
}

// NewTags copies m into a view. Intended for tests and replay.
func NewTags(m map[int]domain.EdgeTag) Tags {
	cp := make(map[int]domain.EdgeTag, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Tags{m: cp}
}
