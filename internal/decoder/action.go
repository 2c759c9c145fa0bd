package decoder

import (
	"fmt"
	"strings"

	"dgen/internal/diag"
)

// Kind selects one of the two parallel decoder implementations.
type Kind uint8

const (
	Baseline Kind = iota
	Actual
)

// Kinds lists both kinds in emission order.
var Kinds = [...]Kind{Baseline, Actual}

func (k Kind) String() string {
	if k == Actual {
		return "actual"
	}
	return "baseline"
}

// ParseKind accepts "baseline" or "actual".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "baseline":
		return Baseline, nil
	case "actual":
		return Actual, nil
	}
	return Baseline, diag.Errorf(diag.CfgBadValue, "invalid decoder kind %q (expected baseline|actual)", s)
}

// Action is what a row does once its patterns match. The set of variants is
// closed: *DecoderAction and *DecoderMethod. Use Visit to branch on it.
type Action interface {
	fmt.Stringer
	isAction()
}

// Safety is one entry of an action's safety list. String-valued entries
// only carry a Qualifier; checks carry a condition that must not hold for a
// valid instruction and the verdict when it does.
type Safety struct {
	Qualifier string
	Cond      string
	Violation string
}

// IsCheck reports whether the entry is an assertion rather than a qualifier.
func (s Safety) IsCheck() bool { return s.Cond != "" }

func (s Safety) String() string {
	if !s.IsCheck() {
		return s.Qualifier
	}
	if s.Violation == "" {
		return s.Cond
	}
	return s.Cond + " => " + s.Violation
}

// Constraints narrow the instructions an action applies to.
type Constraints struct {
	Other        string
	Restrictions []Pattern
}

// DecoderAction is a terminal action binding a class decoder.
type DecoderAction struct {
	Class             string
	Baseline          string
	Actual            string
	Rule              string
	Pattern           string
	GeneratedBaseline string
	Safety            []Safety
	Constraints       *Constraints
	Defs              string
}

func (*DecoderAction) isAction() {}

// BaselineClass is the baseline decoder, falling back to the class name.
func (a *DecoderAction) BaselineClass() string {
	if a.Baseline != "" {
		return a.Baseline
	}
	return a.Class
}

// ActualClass is the actual decoder, falling back to the baseline.
func (a *DecoderAction) ActualClass() string {
	if a.Actual != "" {
		return a.Actual
	}
	return a.BaselineClass()
}

// ClassFor returns the decoder class used for k.
func (a *DecoderAction) ClassFor(k Kind) string {
	if k == Actual {
		return a.ActualClass()
	}
	return a.BaselineClass()
}

// HasDistinctActual reports whether actual-vs-baseline testing applies.
func (a *DecoderAction) HasDistinctActual() bool {
	return a.ActualClass() != a.BaselineClass()
}

// Qualifier concatenates the string-valued safety entries and the "other"
// constraint, in declaration order.
func (a *DecoderAction) Qualifier() string {
	var b strings.Builder
	for _, s := range a.Safety {
		if !s.IsCheck() {
			b.WriteString(s.Qualifier)
		}
	}
	if a.Constraints != nil {
		b.WriteString(a.Constraints.Other)
	}
	return b.String()
}

// Restrictions returns the declared restriction patterns, if any.
func (a *DecoderAction) Restrictions() []Pattern {
	if a.Constraints == nil {
		return nil
	}
	return a.Constraints.Restrictions
}

// SafetyChecks returns only the assertion entries.
func (a *DecoderAction) SafetyChecks() []Safety {
	var out []Safety
	for _, s := range a.Safety {
		if s.IsCheck() {
			out = append(out, s)
		}
	}
	return out
}

func (a *DecoderAction) clone() *DecoderAction {
	c := *a
	return &c
}

func (a *DecoderAction) String() string {
	if a == nil {
		return "<nil action>"
	}
	fields := make([]string, 0, 8)
	add := func(name, value string) {
		if value != "" {
			fields = append(fields, name+": "+value)
		}
	}
	add("class", a.Class)
	add("baseline", a.Baseline)
	add("actual", a.Actual)
	add("rule", a.Rule)
	add("pattern", a.Pattern)
	add("generated_baseline", a.GeneratedBaseline)
	if len(a.Safety) > 0 {
		parts := make([]string, len(a.Safety))
		for i, s := range a.Safety {
			parts[i] = s.String()
		}
		add("safety", "["+strings.Join(parts, ", ")+"]")
	}
	if a.Constraints != nil {
		add("other", a.Constraints.Other)
		if len(a.Constraints.Restrictions) > 0 {
			parts := make([]string, len(a.Constraints.Restrictions))
			for i, p := range a.Constraints.Restrictions {
				parts[i] = p.String()
			}
			add("restrictions", "["+strings.Join(parts, " & ")+"]")
		}
	}
	add("defs", a.Defs)
	return "= {" + strings.Join(fields, ", ") + "}"
}

// DecoderMethod continues decoding in another table.
type DecoderMethod struct {
	Table string
}

func (*DecoderMethod) isAction() {}

func (m *DecoderMethod) String() string {
	if m == nil {
		return "<nil method>"
	}
	return "->" + m.Table
}

// Visit calls onAction or onMethod depending on the variant of a. Anything
// else (nil included) is an action-integrity error naming the action.
func Visit(a Action, onAction func(*DecoderAction) error, onMethod func(*DecoderMethod) error) error {
	switch a := a.(type) {
	case *DecoderAction:
		if a != nil {
			return onAction(a)
		}
	case *DecoderMethod:
		if a != nil {
			return onMethod(a)
		}
	}
	return diag.Errorf(diag.ActUnknownKind, "row action is neither a decoder action nor a table method").
		WithAction(describe(a))
}

func describe(a Action) string {
	if a == nil {
		return "<none>"
	}
	return fmt.Sprintf("%#v", a)
}

// DispatchKey identifies what a row selects when dispatching to kind k:
// the class and rule of a decoder action, or the target of a table method.
// Rows with equal keys are interchangeable for dispatch.
func DispatchKey(a Action, k Kind) (string, error) {
	var key string
	err := Visit(a,
		func(da *DecoderAction) error {
			key = "= " + da.ClassFor(k) + " " + da.Rule
			return nil
		},
		func(dm *DecoderMethod) error {
			key = "-> " + dm.Table
			return nil
		})
	return key, err
}
