package gen

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"dgen/internal/decoder"
)

// kindNames are the per-kind derived symbols of an action.
type kindNames struct {
	Class    string
	Named    string
	Instance string
}

// Values is the template context of one emitted unit. Each template names
// the fields it reads through %(name)s placeholders; see lookup for the
// complete set.
type Values struct {
	// decoder-wide
	FileHeader    string
	NotTCBMessage string
	IfdefName     string
	FilenameBase  string
	DecoderName   string
	EntryTable    string

	// table
	Table    string
	Citation string

	// action
	Baseline  string
	Actual    string
	Rule      string
	Qualifier string
	Pattern   string
	GenBase   string
	kinds     [len(decoder.Kinds)]kindNames

	// row
	RowComment     string
	RowIndex       string
	Condition      string
	Action         string
	BaseTestCase   string
	TestCase       string
	TestPattern    string
	BaseTester     string
	BaseBaseTester string
	DecoderTester  string

	// single check inside a tester
	Code    string
	Comment string
}

// lookup resolves a placeholder name. Kind-specific names come in pairs
// (baseline_class / actual_class ...) produced by instantiating the
// DECODER form of a template.
func (v *Values) lookup(name string) (string, bool) {
	switch name {
	case "FILE_HEADER":
		return v.FileHeader, true
	case "NOT_TCB_MESSAGE":
		return v.NotTCBMessage, true
	case "IFDEF_NAME":
		return v.IfdefName, true
	case "FILENAME_BASE":
		return v.FilenameBase, true
	case "decoder_name":
		return v.DecoderName, true
	case "entry_table_name":
		return v.EntryTable, true
	case "table_name":
		return v.Table, true
	case "citation":
		return v.Citation, true
	case "baseline":
		return v.Baseline, true
	case "actual":
		return v.Actual, true
	case "rule":
		return v.Rule, true
	case "qualifier":
		return v.Qualifier, true
	case "pattern":
		return v.Pattern, true
	case "gen_base":
		return v.GenBase, true
	case "baseline_class":
		return v.kinds[decoder.Baseline].Class, true
	case "actual_class":
		return v.kinds[decoder.Actual].Class, true
	case "named_baseline_class":
		return v.kinds[decoder.Baseline].Named, true
	case "named_actual_class":
		return v.kinds[decoder.Actual].Named, true
	case "baseline_instance":
		return v.kinds[decoder.Baseline].Instance, true
	case "actual_instance":
		return v.kinds[decoder.Actual].Instance, true
	case "row_comment":
		return v.RowComment, true
	case "row_index":
		return v.RowIndex, true
	case "condition":
		return v.Condition, true
	case "action":
		return v.Action, true
	case "base_test_case":
		return v.BaseTestCase, true
	case "test_case":
		return v.TestCase, true
	case "test_pattern":
		return v.TestPattern, true
	case "base_tester":
		return v.BaseTester, true
	case "base_base_tester":
		return v.BaseBaseTester, true
	case "decoder_tester":
		return v.DecoderTester, true
	case "code":
		return v.Code, true
	case "comment":
		return v.Comment, true
	}
	return "", false
}

// installAction fills the action-derived fields for a.
func (v *Values) installAction(a *decoder.DecoderAction) {
	v.Baseline = a.BaselineClass()
	v.Actual = a.ActualClass()
	v.Rule = ruleName(a.Rule)
	v.Qualifier = a.Qualifier()
	v.Pattern = a.Pattern
	v.GenBase = a.GeneratedBaseline
	v.installBaselineAndActuals(a)
}

// installBaselineAndActuals fills DECODER_class, named_DECODER_class and
// DECODER_instance for both kinds.
func (v *Values) installBaselineAndActuals(a *decoder.DecoderAction) {
	for _, k := range decoder.Kinds {
		class := ruleClass(a.ClassFor(k), a.Rule)
		v.kinds[k] = kindNames{
			Class:    class,
			Named:    "Named" + class,
			Instance: class + "_instance_",
		}
	}
}

func ruleName(rule string) string {
	if rule == "" {
		return "None"
	}
	return rule
}

// ruleClass is the per-rule class deriving from decoderClass.
func ruleClass(decoderClass, rule string) string {
	return decoderClass + "_" + identifier(ruleName(rule))
}

var placeholder = regexp.MustCompile(`%\(([A-Za-z_]+)\)s`)

// instantiate specializes a DECODER template for kind k by renaming its
// placeholders: %(DECODER_class)s becomes %(baseline_class)s and so on.
func instantiate(tmpl string, k decoder.Kind) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		return strings.ReplaceAll(m, "DECODER", k.String())
	})
}

// expand substitutes every placeholder of tmpl from v.
func expand(tmpl string, v *Values) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		s, ok := v.lookup(name)
		if !ok {
			missing = append(missing, name)
		}
		return s
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("template uses unknown placeholders %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// writer renders templates into a buffer. The first expansion error sticks
// and stops further output.
type writer struct {
	buf     bytes.Buffer
	v       *Values
	err     error
	symbols map[string]bool
}

func newWriter(v *Values) *writer {
	return &writer{v: v, symbols: make(map[string]bool)}
}

func (w *writer) emit(tmpl string) {
	if w.err != nil {
		return
	}
	s, err := expand(tmpl, w.v)
	if err != nil {
		w.err = err
		return
	}
	w.buf.WriteString(s)
}

func (w *writer) emitKind(tmpl string, k decoder.Kind) {
	w.emit(instantiate(tmpl, k))
}

// once expands the symbol template for kind k and reports whether the
// symbol is new to this pass, recording it.
func (w *writer) once(symTmpl string, k decoder.Kind) bool {
	if w.err != nil {
		return false
	}
	sym, err := expand(instantiate(symTmpl, k), w.v)
	if err != nil {
		w.err = err
		return false
	}
	if w.symbols[sym] {
		return false
	}
	w.symbols[sym] = true
	return true
}

// mark records sym and reports whether it was new.
func (w *writer) mark(sym string) bool {
	if w.symbols[sym] {
		return false
	}
	w.symbols[sym] = true
	return true
}
