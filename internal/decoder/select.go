package decoder

import (
	"strconv"
	"strings"

	"dgen/internal/diag"
)

// Select returns the action of the first row matching inst, then the
// default row's action, then nil ("not implemented").
func Select(rows []Row, def *Row, inst uint32) Action {
	for _, r := range rows {
		if r.Matches(inst) {
			return r.Action
		}
	}
	if def != nil {
		return def.Action
	}
	return nil
}

// Resolution is the outcome of dispatching one instruction word.
type Resolution struct {
	// Path lists the tables visited, primary first.
	Path []string
	// Action is the terminal action, nil when the last table had no match.
	Action *DecoderAction
}

func (r Resolution) String() string {
	target := "not implemented"
	if r.Action != nil {
		target = r.Action.String()
	}
	return strings.Join(r.Path, " -> ") + " : " + target
}

// Resolve dispatches inst from the primary table, following table methods.
// Reentering a table for the same word is a dispatch loop and fails.
func (d *Decoder) Resolve(inst uint32) (Resolution, error) {
	if d == nil || d.Primary == nil {
		return Resolution{}, diag.Errorf(diag.CfgNoPrimary, "decoder has no primary table")
	}
	var res Resolution
	seen := make(map[string]bool)
	t := d.Primary
	for {
		if seen[t.Name] {
			return res, diag.Errorf(diag.ActDispatchLoop, "word 0x%08X reenters table %q via %s",
				inst, t.Name, strings.Join(res.Path, " -> "))
		}
		seen[t.Name] = true
		res.Path = append(res.Path, t.Name)

		a := Select(t.Rows, t.Default, inst)
		if a == nil {
			return res, nil
		}
		var next *Table
		err := Visit(a,
			func(da *DecoderAction) error {
				res.Action = da
				return nil
			},
			func(dm *DecoderMethod) error {
				nt, ok := d.Table(dm.Table)
				if !ok {
					return diag.Errorf(diag.ActUnknownTable, "table %q is not defined", dm.Table).WithAction(dm.String())
				}
				next = nt
				return nil
			})
		if err != nil {
			return res, diag.At(err, diag.Location{Table: t.Name})
		}
		if next == nil {
			return res, nil
		}
		t = next
	}
}

// ParseWord accepts 0x-prefixed hex, 0b-prefixed binary or decimal words.
func ParseWord(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, diag.Errorf(diag.CfgBadValue, "invalid instruction word %q", s)
	}
	return uint32(v), nil
}
