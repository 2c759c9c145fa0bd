package gen

import (
	"strconv"

	"dgen/internal/config"
	"dgen/internal/decoder"
	"dgen/internal/diag"
)

// caseMap assigns Case<N> names to neutral keys in first-seen order.
type caseMap map[string]string

// assign returns the case of key and whether key was new.
func (m caseMap) assign(key string) (string, bool) {
	if c, ok := m[key]; ok {
		return c, false
	}
	c := "Case" + strconv.Itoa(len(m))
	m[key] = c
	return c, true
}

// testRow is one tested decoder action row with the case it maps to in
// each phase. The first* flags mark the row that emits the shared symbol.
type testRow struct {
	table string
	row   decoder.Row
	a     *decoder.DecoderAction

	baseCase     string
	ruleCase     string
	patternCase  string
	firstBase    bool
	firstRule    bool
	firstPattern bool
}

// collectTestRows numbers every tested row, tables in declaration order.
// Rows without a test pattern are skipped with a warning.
func collectTestRows(dec *decoder.Decoder, r diag.Reporter) ([]testRow, error) {
	base, rule, pattern := caseMap{}, caseMap{}, caseMap{}
	var rows []testRow
	err := eachAction(dec.Tables, func(t *decoder.Table, idx int, row decoder.Row, a *decoder.DecoderAction) error {
		if a.Pattern == "" {
			diag.Warn(r, diag.ActMissingPattern, diag.Location{Table: t.Name, Row: idx},
				"decoder action "+a.BaselineClass()+" has no test pattern; no tests generated")
			return nil
		}
		tr := testRow{table: t.Name, row: row, a: a}
		tr.baseCase, tr.firstBase = base.assign(row.WithoutRule().Key())
		tr.ruleCase, tr.firstRule = rule.assign(row.WithRule().Key())
		tr.patternCase, tr.firstPattern = pattern.assign(row.WithPattern().Key())
		rows = append(rows, tr)
		return nil
	})
	return rows, err
}

// install fills the tester names of tr into v.
func (tr *testRow) install(v *Values) {
	v.installAction(tr.a)
	v.Table = tr.table
	v.BaseTestCase = tr.baseCase
	v.TestCase = tr.ruleCase
	v.TestPattern = tr.patternCase
	v.BaseTester = tr.a.BaselineClass() + "Tester" + tr.baseCase
	v.BaseBaseTester = tr.a.BaselineClass() + "Tester" + tr.a.Qualifier()
	v.DecoderTester = v.kinds[decoder.Baseline].Class + "Tester_" + tr.ruleCase
}

// emitTests writes the tester classes and test functions.
func emitTests(w *writer, dec *decoder.Decoder, cfg *config.Config, r diag.Reporter) (int, error) {
	rows, err := collectTestRows(dec, r)
	if err != nil {
		return 0, err
	}
	w.emit(testCCHeader)
	for i := range rows {
		if rows[i].firstBase {
			emitConstraintTester(w, &rows[i])
		}
	}

	w.emit(testerClassHeader)
	for i := range rows {
		tr := &rows[i]
		if !tr.firstRule {
			continue
		}
		tr.install(w.v)
		w.v.RowComment = tr.row.WithRule().Comment()
		w.mark(w.v.DecoderTester)
		w.emit(testerClass)
	}

	w.emit(testHarness)
	tests := 0
	for i := range rows {
		tr := &rows[i]
		if !tr.firstPattern {
			continue
		}
		tr.install(w.v)
		w.v.RowComment = tr.row.WithPattern().Comment()
		if tr.a.HasDistinctActual() {
			w.emit(testFunctionActualVsBaseline)
		} else {
			w.emit(testFunctionBaseline)
		}
		tests++
		if tr.a.GeneratedBaseline != "" && cfg.InTestBase(tr.table) {
			w.emit(testFunctionBaselineVsBaseline)
			tests++
		}
	}
	w.emit(testCCFooter)
	return tests, w.err
}

// emitConstraintTester writes the tester that rejects words outside the
// row and runs its safety and defs assertions.
func emitConstraintTester(w *writer, tr *testRow) {
	tr.install(w.v)
	w.mark(w.v.BaseTester)
	w.v.RowComment = tr.row.WithoutRule().Comment()
	checks := tr.a.SafetyChecks()
	sanity := len(checks) > 0 || tr.a.Defs != ""

	w.emit(constraintTesterClassHeader)
	if sanity {
		w.emit(constraintTesterRestrictionsHeader)
	}
	w.emit(constraintTesterClassClose)

	w.emit(constraintTesterParseHeader)
	if ps := tr.row.Interesting(); len(ps) > 0 {
		w.emit(rowConstraintsHeader)
		emitNegatedChecks(w, ps)
	}
	if ps := decoder.InterestingPatterns(tr.a.Restrictions()); len(ps) > 0 {
		w.emit(patternConstraintRestrictionsHeader)
		emitNegatedChecks(w, ps)
	}
	w.emit(constraintTesterClassFooter)

	if !sanity {
		return
	}
	w.emit(safetyTesterHeader)
	for _, s := range checks {
		w.v.Code = s.Cond
		w.v.Comment = s.String()
		w.emit(safetyTesterCheck)
	}
	if tr.a.Defs != "" {
		w.v.Code = tr.a.Defs
		w.v.Comment = tr.a.Defs
		w.emit(defsSafetyCheck)
	}
	w.emit(safetyTesterFooter)
}

func emitNegatedChecks(w *writer, ps []decoder.Pattern) {
	for _, p := range ps {
		w.v.Code = p.Negate().ToCommentedBool()
		w.emit(constraintCheck)
	}
}
