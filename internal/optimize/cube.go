package optimize

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"dgen/internal/decoder"
)

// cube is the set of words w with w&mask == value. A row's match set is
// always contained in the cube of its positive bit patterns.
type cube struct {
	mask  uint32
	value uint32
	empty bool
}

// rowCube intersects the row's positive bit patterns. The cube is empty
// when two patterns disagree on a bit, or when a negated pattern excludes
// the whole cube.
func rowCube(r decoder.Row) cube {
	var c cube
	for _, p := range r.Patterns {
		if !p.Column.IsBits() || p.Negated {
			continue
		}
		common := c.mask & p.Mask
		if c.value&common != p.Value&common {
			return cube{empty: true}
		}
		c.mask |= p.Mask
		c.value |= p.Value
	}
	for _, p := range r.Patterns {
		if !p.Column.IsBits() || !p.Negated {
			continue
		}
		// inst&m != v fails for the whole cube when the cube fixes m to v.
		if p.Mask&c.mask == p.Mask && c.value&p.Mask == p.Value {
			return cube{empty: true}
		}
	}
	return c
}

func (c cube) intersects(o cube) bool {
	if c.empty || o.empty {
		return false
	}
	common := c.mask & o.mask
	return c.value&common == o.value&common
}

// covers reports whether every word of o is in c.
func (c cube) covers(o cube) bool {
	if o.empty {
		return true
	}
	if c.empty {
		return false
	}
	return c.mask&o.mask == c.mask && o.value&c.mask == c.value
}

// adjacent returns the single bit on which two cubes of equal mask differ.
func (c cube) adjacent(o cube) (uint32, bool) {
	if c.empty || o.empty || c.mask != o.mask {
		return 0, false
	}
	diff := c.value ^ o.value
	if bits.OnesCount32(diff) != 1 {
		return 0, false
	}
	return diff, true
}

func (c cube) String() string {
	if c.empty {
		return "{}"
	}
	return fmt.Sprintf("%08x/%08x", c.mask, c.value)
}

// negationKey canonicalizes the row's negated bit patterns.
func negationKey(r decoder.Row) string {
	var parts []string
	for _, p := range r.Patterns {
		if p.Column.IsBits() && p.Negated && p.Mask != 0 {
			parts = append(parts, fmt.Sprintf("%08x/%08x", p.Mask, p.Value))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// project rebuilds r's patterns for the cube c obtained by widening r's own
// cube. Positive bit patterns keep only the bits c still fixes; patterns
// left without any fixed bit are dropped.
func project(r decoder.Row, c cube) decoder.Row {
	out := decoder.Row{Action: r.Action, Patterns: make([]decoder.Pattern, 0, len(r.Patterns))}
	for _, p := range r.Patterns {
		if p.Column.IsBits() && !p.Negated {
			p.Mask &= c.mask
			p.Value &= p.Mask
			if p.Mask == 0 {
				continue
			}
		}
		out.Patterns = append(out.Patterns, p)
	}
	return out
}
