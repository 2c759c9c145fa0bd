// Package decoder holds the table model the generator compiles: a Decoder
// owns named Tables, each Table an ordered list of Rows, each Row a
// conjunction of bit Patterns and one Action.
//
// The model is produced by an upstream table parser (see internal/tables)
// and is treated as read-only by every later stage. Augment derives a new
// Decoder instead of editing the input.
package decoder

import (
	"strings"
)

// Row is an ordered conjunction of patterns plus the action selected when
// all of them hold. Row order inside a table is significant: the first
// matching row wins.
type Row struct {
	Patterns []Pattern
	Action   Action
}

// Matches reports whether every pattern of the row holds for inst.
func (r Row) Matches(inst uint32) bool {
	for _, p := range r.Patterns {
		if !p.Matches(inst) {
			return false
		}
	}
	return true
}

// Interesting returns the row's patterns that discriminate instructions.
func (r Row) Interesting() []Pattern {
	return InterestingPatterns(r.Patterns)
}

func (r Row) String() string {
	parts := make([]string, 0, len(r.Patterns))
	for _, p := range r.Interesting() {
		parts = append(parts, p.String())
	}
	lhs := "*"
	if len(parts) > 0 {
		lhs = strings.Join(parts, " & ")
	}
	action := "<none>"
	if r.Action != nil {
		action = r.Action.String()
	}
	return lhs + " " + action
}

// Table is one dispatch decision point.
type Table struct {
	Name     string
	Citation string
	Rows     []Row
	// Default is selected when no row matches; nil when absent.
	Default *Row
}

// AllRows returns the rows followed by the default row, if any.
func (t *Table) AllRows() []Row {
	rows := make([]Row, 0, len(t.Rows)+1)
	rows = append(rows, t.Rows...)
	if t.Default != nil {
		rows = append(rows, *t.Default)
	}
	return rows
}

// Decoder is the full set of tables plus the entry point.
type Decoder struct {
	Name    string
	Tables  []*Table
	Primary *Table
}

// Table looks a table up by name.
func (d *Decoder) Table(name string) (*Table, bool) {
	if d == nil {
		return nil, false
	}
	for _, t := range d.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Walk returns every table once: a depth-first preorder over table methods
// starting at the primary table (targets visited in row order), followed by
// unreachable tables in declaration order. Cycles are cut by visiting each
// name once.
func (d *Decoder) Walk() []*Table {
	if d == nil {
		return nil
	}
	seen := make(map[string]bool, len(d.Tables))
	order := make([]*Table, 0, len(d.Tables))
	var visit func(t *Table)
	visit = func(t *Table) {
		if t == nil || seen[t.Name] {
			return
		}
		seen[t.Name] = true
		order = append(order, t)
		for _, name := range t.Callees() {
			if next, ok := d.Table(name); ok {
				visit(next)
			}
		}
	}
	visit(d.Primary)
	for _, t := range d.Tables {
		visit(t)
	}
	return order
}

// Callees lists the tables named by the table's methods, in row order,
// without repeats.
func (t *Table) Callees() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range t.AllRows() {
		if m, ok := r.Action.(*DecoderMethod); ok && m != nil && !seen[m.Table] {
			seen[m.Table] = true
			out = append(out, m.Table)
		}
	}
	return out
}
