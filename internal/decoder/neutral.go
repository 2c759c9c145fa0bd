package decoder

import (
	"strings"
)

// Neutral is a canonical view of a row used to decide whether two rows
// generate the same test symbol. Which action fields take part depends on
// how the view was built:
//
//	WithoutRule  patterns, baseline, safety, constraints, defs
//	WithRule     ... plus the rule name
//	WithPattern  ... plus rule, actual, test pattern and generated baseline
type Neutral struct {
	row         Row
	withRule    bool
	withPattern bool
}

// WithoutRule is the rule-insensitive view (constraint testers).
func (r Row) WithoutRule() Neutral { return Neutral{row: r} }

// WithRule is the rule-sensitive view (rule testers).
func (r Row) WithRule() Neutral { return Neutral{row: r, withRule: true} }

// WithPattern adds the concrete test pattern to the rule view (test functions).
func (r Row) WithPattern() Neutral { return Neutral{row: r, withRule: true, withPattern: true} }

// Row returns the underlying row.
func (n Neutral) Row() Row { return n.row }

// Key is the canonical string identity of the view.
func (n Neutral) Key() string {
	return strings.Join(n.lines(), "\n")
}

// Comment renders the view for a generated "// " comment; continuation
// lines carry their own comment prefix.
func (n Neutral) Comment() string {
	return strings.Join(n.lines(), "\n// ")
}

func (n Neutral) lines() []string {
	header := "Neutral case:"
	if n.withRule {
		header = "Case:"
	}
	patterns := make([]string, 0, len(n.row.Patterns))
	for _, p := range n.row.Interesting() {
		patterns = append(patterns, p.String())
	}
	lhs := "inst matches anything"
	if len(patterns) > 0 {
		lhs = strings.Join(patterns, " & ")
	}
	return []string{header, lhs, "   " + n.actionText()}
}

func (n Neutral) actionText() string {
	switch a := n.row.Action.(type) {
	case *DecoderMethod:
		if a != nil {
			return a.String()
		}
	case *DecoderAction:
		if a != nil {
			return n.decoderActionText(a)
		}
	}
	return "<none>"
}

func (n Neutral) decoderActionText(a *DecoderAction) string {
	var fields []string
	add := func(name, value string) {
		if value != "" {
			fields = append(fields, name+": "+value)
		}
	}
	if n.withPattern {
		add("actual", a.ActualClass())
	}
	add("baseline", a.BaselineClass())
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
			add("restrictions", strings.Join(parts, " & "))
		}
	}
	add("defs", a.Defs)
	if n.withRule {
		add("rule", a.Rule)
	}
	if n.withPattern {
		add("pattern", a.Pattern)
		add("generated_baseline", a.GeneratedBaseline)
	}
	return "= {" + strings.Join(fields, ", ") + "}"
}
