// Package optimize minimizes the rows of a decoder table without changing
// which action any instruction word dispatches to.
//
// Rows are compared through the cube of their positive bit patterns. The
// optimizer only ever
//
//   - drops rows that can never match (empty cube),
//   - drops rows whose cube lies inside an earlier unconditional cube,
//   - merges two rows with the same dispatch key, the same negations and
//     cubes that differ in one bit, provided every row between them is
//     disjoint from the row being moved.
//
// Everything else is left in place.
package optimize

import (
	"dgen/internal/decoder"
)

// KeyFunc maps an action to its dispatch identity. Rows whose actions share
// a key are interchangeable.
type KeyFunc func(decoder.Action) (string, error)

// ForKind keys actions by what the dispatch code for kind k returns.
func ForKind(k decoder.Kind) KeyFunc {
	return func(a decoder.Action) (string, error) {
		return decoder.DispatchKey(a, k)
	}
}

// Result is the optimized row list plus bookkeeping.
type Result struct {
	// Rows are the optimized rows; the default row, when present, is last.
	Rows []decoder.Row
	// Before and After count conditional rows, the default row excluded.
	Before int
	After  int
	// Merges is the number of row pairs folded together.
	Merges int
	// Shadowed and Empty list 1-based input rows that were dropped.
	Shadowed []int
	Empty    []int
}

type entry struct {
	row    decoder.Row
	cube   cube
	negKey string
	key    string
	origin int
}

// Rows optimizes rows for dispatch. def is appended unchanged.
func Rows(rows []decoder.Row, def *decoder.Row, key KeyFunc) (Result, error) {
	res := Result{Before: len(rows)}
	entries := make([]entry, 0, len(rows))
	for i, r := range rows {
		k, err := key(r.Action)
		if err != nil {
			return Result{}, err
		}
		entries = append(entries, entry{
			row:    r,
			cube:   rowCube(r),
			negKey: negationKey(r),
			key:    k,
			origin: i + 1,
		})
	}

	entries, res.Empty = dropEmpty(entries)
	for {
		var shadowed []int
		entries, shadowed = dropShadowed(entries)
		res.Shadowed = append(res.Shadowed, shadowed...)
		next, ok := mergeOnce(entries)
		if !ok {
			break
		}
		entries = next
		res.Merges++
	}

	res.Rows = make([]decoder.Row, 0, len(entries)+1)
	for _, e := range entries {
		res.Rows = append(res.Rows, e.row)
	}
	res.After = len(res.Rows)
	if def != nil {
		res.Rows = append(res.Rows, *def)
	}
	return res, nil
}

func dropEmpty(entries []entry) ([]entry, []int) {
	var dropped []int
	out := entries[:0:0]
	for _, e := range entries {
		if e.cube.empty {
			dropped = append(dropped, e.origin)
			continue
		}
		out = append(out, e)
	}
	return out, dropped
}

// dropShadowed removes rows covered by an earlier negation-free row: such
// an earlier row wins for every word the later one matches.
func dropShadowed(entries []entry) ([]entry, []int) {
	var dropped []int
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		hidden := false
		for _, prev := range out {
			if prev.negKey == "" && prev.cube.covers(e.cube) {
				hidden = true
				break
			}
		}
		if hidden {
			dropped = append(dropped, e.origin)
			continue
		}
		out = append(out, e)
	}
	return out, dropped
}

// mergeOnce folds the first mergeable pair (i, j), scanning i then j in
// row order, and returns the new list.
func mergeOnce(entries []entry) ([]entry, bool) {
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.key != b.key || a.negKey != b.negKey {
				continue
			}
			bit, ok := a.cube.adjacent(b.cube)
			if !ok {
				continue
			}
			between := entries[i+1 : j]
			var at int
			switch {
			case disjointFrom(between, b.cube):
				at = i
			case disjointFrom(between, a.cube):
				at = j
			default:
				continue
			}
			merged := cube{mask: a.cube.mask &^ bit, value: a.cube.value &^ bit}
			m := entry{
				row:    project(a.row, merged),
				cube:   merged,
				negKey: a.negKey,
				key:    a.key,
				origin: a.origin,
			}
			out := make([]entry, 0, len(entries)-1)
			for k, e := range entries {
				switch k {
				case at:
					out = append(out, m)
				case i, j:
				default:
					out = append(out, e)
				}
			}
			return out, true
		}
	}
	return entries, false
}

func disjointFrom(rows []entry, c cube) bool {
	for _, e := range rows {
		if e.cube.intersects(c) {
			return false
		}
	}
	return true
}
