package decoder

import (
	"dgen/internal/diag"
)

// ActualResolver supplies actual decoder classes for rows that do not name
// one. Row is 1-based, diag.DefaultRow for the default row.
type ActualResolver interface {
	ActualFor(table string, row int, rule string) (string, bool)
}

type cowKey struct {
	src    *DecoderAction
	actual string
}

// Augment returns a copy of d in which every DecoderAction has a baseline
// and an actual class. The input is left untouched: tables and row slices
// are rebuilt, changed actions are cloned, and an action shared by several
// rows of a table stays shared as long as it resolves to the same actual.
//
// A nil resolver disables automatic actuals; rows without an explicit
// actual then test against their baseline.
func Augment(d *Decoder, resolver ActualResolver) (*Decoder, error) {
	if d == nil || d.Primary == nil {
		return nil, diag.Errorf(diag.CfgNoPrimary, "decoder has no primary table")
	}
	names := make(map[string]bool, len(d.Tables))
	for _, t := range d.Tables {
		if names[t.Name] {
			return nil, diag.At(diag.Errorf(diag.CfgDuplicateTable, "table %q is declared twice", t.Name),
				diag.Location{Table: t.Name})
		}
		names[t.Name] = true
	}
	if !names[d.Primary.Name] {
		return nil, diag.Errorf(diag.CfgNoPrimary, "primary table %q is not declared", d.Primary.Name)
	}

	out := &Decoder{Name: d.Name, Tables: make([]*Table, 0, len(d.Tables))}
	for _, t := range d.Tables {
		nt, err := augmentTable(t, names, resolver)
		if err != nil {
			return nil, err
		}
		out.Tables = append(out.Tables, nt)
		if t.Name == d.Primary.Name {
			out.Primary = nt
		}
	}
	return out, nil
}

func augmentTable(t *Table, names map[string]bool, resolver ActualResolver) (*Table, error) {
	memo := make(map[cowKey]*DecoderAction)
	nt := &Table{Name: t.Name, Citation: t.Citation, Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		a, err := augmentAction(t.Name, i+1, r.Action, names, resolver, memo)
		if err != nil {
			return nil, err
		}
		nt.Rows[i] = Row{Patterns: r.Patterns, Action: a}
	}
	if t.Default != nil {
		a, err := augmentAction(t.Name, diag.DefaultRow, t.Default.Action, names, resolver, memo)
		if err != nil {
			return nil, err
		}
		nt.Default = &Row{Patterns: t.Default.Patterns, Action: a}
	}
	return nt, nil
}

func augmentAction(table string, row int, a Action, names map[string]bool, resolver ActualResolver, memo map[cowKey]*DecoderAction) (Action, error) {
	var out Action
	err := Visit(a,
		func(da *DecoderAction) error {
			if da.BaselineClass() == "" {
				return diag.Errorf(diag.ActMissingBase, "decoder action has neither a baseline nor a class").
					WithAction(da.String())
			}
			actual := da.Actual
			if actual == "" && resolver != nil {
				if name, ok := resolver.ActualFor(table, row, da.Rule); ok {
					actual = name
				}
			}
			if actual == "" {
				actual = da.BaselineClass()
			}
			if da.Baseline != "" && da.Actual == actual {
				out = da
				return nil
			}
			key := cowKey{src: da, actual: actual}
			if c, ok := memo[key]; ok {
				out = c
				return nil
			}
			c := da.clone()
			c.Baseline = da.BaselineClass()
			c.Actual = actual
			memo[key] = c
			out = c
			return nil
		},
		func(dm *DecoderMethod) error {
			if !names[dm.Table] {
				return diag.Errorf(diag.ActUnknownTable, "table %q is not defined", dm.Table).
					WithAction(dm.String())
			}
			out = dm
			return nil
		})
	if err != nil {
		return nil, diag.At(err, diag.Location{Table: table, Row: row})
	}
	return out, nil
}
