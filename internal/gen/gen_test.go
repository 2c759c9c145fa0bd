package gen

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dgen/internal/config"
	"dgen/internal/decoder"
	"dgen/internal/diag"
	"dgen/internal/tables"
)

const testBase = "gen/test_decode"

func mustRow(t *testing.T, a decoder.Action, specs ...string) decoder.Row {
	t.Helper()
	r := decoder.Row{Action: a}
	for _, s := range specs {
		p, err := decoder.ParsePattern(s)
		if err != nil {
			t.Fatalf("ParsePattern(%q): %v", s, err)
		}
		r.Patterns = append(r.Patterns, p)
	}
	return r
}

func newDecoder(ts ...*decoder.Table) *decoder.Decoder {
	return &decoder.Decoder{Name: "test", Tables: ts, Primary: ts[0]}
}

func renderOne(t *testing.T, g *Generator, dec *decoder.Decoder, a Artifact) string {
	t.Helper()
	outs, err := g.Render(context.Background(), dec, testBase, []Artifact{a})
	if err != nil {
		t.Fatalf("Render(%s): %v", a, err)
	}
	return string(outs[0].Data)
}

func loadFixture(t *testing.T) *decoder.Decoder {
	t.Helper()
	d, err := tables.Load(filepath.Join("..", "tables", "testdata", "arm32.yaml"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return d
}

func fixtureConfig() *config.Config {
	cfg := config.Default()
	cfg.TestBase = []string{"dp_misc"}
	cfg.AutoActual["unconditional:BLX_immediate_A2"] = "Actual_BLX_immediate_A2_1111101hiiiiiiiiiiiiiiiiiiiiiiii"
	return cfg
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		in   string
		art  Artifact
		base string
		ok   bool
	}{
		{"gen/arm32_decode_named_bases.h", NamedBases, "gen/arm32_decode", true},
		{"arm32_named_classes.h", NamedClasses, "arm32", true},
		{"arm32_named_decoder.h", NamedDecoder, "arm32", true},
		{"arm32_tests.cc", Tests, "arm32", true},
		{"arm32.cc", Source, "arm32", true},
		{"arm32.h", 0, "", false},
		{".cc", 0, "", false},
		{"dir/.cc", 0, "", false},
	}
	for _, tt := range tests {
		a, base, err := ParseFilename(tt.in)
		if !tt.ok {
			if diag.CodeOf(err) != diag.CfgBadFilename {
				t.Fatalf("ParseFilename(%q) err = %v, want CfgBadFilename", tt.in, err)
			}
			continue
		}
		if err != nil || a != tt.art || base != tt.base {
			t.Fatalf("ParseFilename(%q) = %s, %q, %v", tt.in, a, base, err)
		}
		if Filename(base, a) != tt.in {
			t.Fatalf("Filename round trip of %q = %q", tt.in, Filename(base, a))
		}
	}
}

func TestDerivedNames(t *testing.T) {
	if got := ifdefName("gen/arm32_decode_named_bases.h"); got != "GEN_ARM32_DECODE_NAMED_BASES_H_" {
		t.Fatalf("ifdefName = %q", got)
	}
	if got := decoderName("gen/arm32_decode"); got != "Arm32Decode" {
		t.Fatalf("decoderName = %q", got)
	}
	if got := ruleClass("Unary", ""); got != "Unary_None" {
		t.Fatalf("ruleClass without rule = %q", got)
	}
	if got := ruleName(""); got != "None" {
		t.Fatalf("ruleName without rule = %q", got)
	}
	if got := ruleClass("Binary", "ADD.imm"); got != "Binary_ADD_imm" {
		t.Fatalf("ruleClass = %q", got)
	}
}

var allTemplates = map[string]string{
	"namedBasesHeader":                    namedBasesHeader,
	"generatedBaselineClass":              generatedBaselineClass,
	"namedBasesFooter":                    namedBasesFooter,
	"namedClassesHeader":                  namedClassesHeader,
	"ruleClassesHeader":                   ruleClassesHeader,
	"ruleClassDecl":                       ruleClassDecl,
	"ruleClassSym":                        ruleClassSym,
	"ruleClassesFooter":                   ruleClassesFooter,
	"namedDecodersHeader":                 namedDecodersHeader,
	"namedClassDeclare":                   namedClassDeclare,
	"namedClassDeclareSym":                namedClassDeclareSym,
	"namedClassesFooter":                  namedClassesFooter,
	"namedDecoderHeader":                  namedDecoderHeader,
	"decoderStateField":                   decoderStateField,
	"decoderStateFieldName":               decoderStateFieldName,
	"decoderStateDecoderComments":         decoderStateDecoderComments,
	"decoderStateDecoder":                 decoderStateDecoder,
	"namedDecoderFooter":                  namedDecoderFooter,
	"namedCCHeader":                       namedCCHeader,
	"namedCCTraceInclude":                 namedCCTraceInclude,
	"namedCCPreamble":                     namedCCPreamble,
	"parseTableMethodHeader":              parseTableMethodHeader,
	"parseTableCitation":                  parseTableCitation,
	"parseTableMethodSignature":           parseTableMethodSignature,
	"methodHeaderTrace":                   methodHeaderTrace,
	"methodDispatchBegin":                 methodDispatchBegin,
	"methodDispatchTrace":                 methodDispatchTrace,
	"parseTableMethodRow":                 parseTableMethodRow,
	"methodDispatchClose":                 methodDispatchClose,
	"parseTableMethodFooter":              parseTableMethodFooter,
	"namedCCFooter":                       namedCCFooter,
	"testCCHeader":                        testCCHeader,
	"constraintTesterClassHeader":         constraintTesterClassHeader,
	"constraintTesterRestrictionsHeader":  constraintTesterRestrictionsHeader,
	"constraintTesterClassClose":          constraintTesterClassClose,
	"constraintTesterParseHeader":         constraintTesterParseHeader,
	"rowConstraintsHeader":                rowConstraintsHeader,
	"patternConstraintRestrictionsHeader": patternConstraintRestrictionsHeader,
	"constraintCheck":                     constraintCheck,
	"constraintTesterClassFooter":         constraintTesterClassFooter,
	"safetyTesterHeader":                  safetyTesterHeader,
	"safetyTesterCheck":                   safetyTesterCheck,
	"defsSafetyCheck":                     defsSafetyCheck,
	"safetyTesterFooter":                  safetyTesterFooter,
	"testerClassHeader":                   testerClassHeader,
	"testerClass":                         testerClass,
	"testHarness":                         testHarness,
	"testFunctionActualVsBaseline":        testFunctionActualVsBaseline,
	"testFunctionBaseline":                testFunctionBaseline,
	"testFunctionBaselineVsBaseline":      testFunctionBaselineVsBaseline,
	"testCCFooter":                        testCCFooter,
}

func TestTemplates_ResolveForBothKinds(t *testing.T) {
	v := &Values{}
	v.installAction(&decoder.DecoderAction{
		Baseline:          "Binary",
		Actual:            "Actual_Binary",
		Rule:              "ADD_A1",
		Pattern:           "cccc0010",
		GeneratedBaseline: "ADD_case_0",
		Safety:            []decoder.Safety{{Qualifier: "NotPc"}},
	})
	for _, k := range decoder.Kinds {
		for name, tmpl := range allTemplates {
			out, err := expand(instantiate(tmpl, k), v)
			if err != nil {
				t.Fatalf("%s (%s): %v", name, k, err)
			}
			if strings.Contains(out, "%(") {
				t.Fatalf("%s (%s) left a placeholder:\n%s", name, k, out)
			}
		}
	}
	if got, _ := expand(instantiate(namedClassDeclareSym, decoder.Actual), v); got != "NamedActual_Binary_ADD_A1" {
		t.Fatalf("actual named class = %q", got)
	}
	if _, err := expand("%(no_such_name)s", v); err == nil {
		t.Fatalf("unknown placeholder accepted")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	dec := loadFixture(t)
	g := &Generator{Config: fixtureConfig()}
	first, err := g.Render(context.Background(), dec, testBase, Artifacts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := g.Render(context.Background(), dec, testBase, Artifacts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(first) != len(Artifacts) {
		t.Fatalf("got %d outputs, want %d", len(first), len(Artifacts))
	}
	for i := range first {
		if diff := cmp.Diff(string(first[i].Data), string(second[i].Data)); diff != "" {
			t.Fatalf("%s differs between runs (-first +second):\n%s", first[i].Filename, diff)
		}
	}
}

func TestGenerate_TwoRowScenario(t *testing.T) {
	a := &decoder.DecoderAction{Baseline: "A", Rule: "a", Pattern: "1xxx"}
	b := &decoder.DecoderAction{Baseline: "B", Rule: "b", Pattern: "0xxx"}
	dec := newDecoder(&decoder.Table{Name: "T", Rows: []decoder.Row{
		mustRow(t, a, "op(3:0)=1xxx"),
		mustRow(t, b, "op(3:0)=0xxx"),
	}})
	src := renderOne(t, &Generator{}, dec, Source)

	rowA := "  if ((inst.Bits() & 0x00000008) == 0x00000008 /* op(3:0)=1xxx */) {\n    return A_a_instance_;\n  }\n"
	rowB := "  if ((inst.Bits() & 0x00000008) == 0x00000000 /* op(3:0)=0xxx */) {\n    return B_b_instance_;\n  }\n"
	ia, ib := strings.Index(src, rowA), strings.Index(src, rowB)
	if ia < 0 || ib < 0 || ia > ib {
		t.Fatalf("rows missing or reordered (A at %d, B at %d):\n%s", ia, ib, src)
	}
	if !strings.Contains(src[ib:], "return not_implemented_;") {
		t.Fatalf("method does not end in the not-implemented fallback:\n%s", src)
	}
}

func TestGenerate_Fallback(t *testing.T) {
	a := &decoder.DecoderAction{Baseline: "A", Rule: "a", Pattern: "1xxx"}
	d := &decoder.DecoderAction{Class: "D", Rule: "d"}
	const rowA = "  if ((inst.Bits() & 0x00000008) == 0x00000008 /* op(3:0)=1xxx */) {\n    return A_a_instance_;\n  }\n"
	const sentinel = "\n  // Catch any attempt to fall through...\n  return not_implemented_;\n}\n"

	tests := []struct {
		name string
		def  *decoder.Row
		tail string
	}{
		{"default row", &decoder.Row{Action: d}, "  if (true) {\n    return D_d_instance_;\n  }\n" + sentinel},
		{"no default row", nil, rowA + sentinel},
	}
	for _, tt := range tests {
		dec := newDecoder(&decoder.Table{Name: "T", Citation: "A5.1", Default: tt.def, Rows: []decoder.Row{
			mustRow(t, a, "op(3:0)=1xxx"),
		}})
		src := renderOne(t, &Generator{}, dec, Source)
		method := src[strings.Index(src, "::decode_T("):]
		method = method[:strings.Index(method, sentinel)+len(sentinel)]
		if !strings.HasSuffix(method, tt.tail) {
			t.Fatalf("%s: method ends\n%s\nwant suffix\n%s", tt.name, method, tt.tail)
		}
		if i := strings.Index(method, rowA); i < 0 || i > len(method)-len(tt.tail) {
			t.Fatalf("%s: row A must precede the fallback:\n%s", tt.name, method)
		}
		if !strings.Contains(src, " * Implementation of table T.\n * Specified by: A5.1\n */\n") {
			t.Fatalf("%s: citation missing:\n%s", tt.name, src)
		}
	}
}

func TestGenerate_NoCitationLine(t *testing.T) {
	a := &decoder.DecoderAction{Baseline: "A", Rule: "a", Pattern: "1xxx"}
	dec := newDecoder(&decoder.Table{Name: "T", Rows: []decoder.Row{mustRow(t, a, "op(3:0)=1xxx")}})
	src := renderOne(t, &Generator{}, dec, Source)
	if strings.Contains(src, "Specified by") {
		t.Fatalf("uncited table renders a citation line:\n%s", src)
	}
	if !strings.Contains(src, " * Implementation of table T.\n */\n") {
		t.Fatalf("method comment malformed:\n%s", src)
	}
}

func TestGenerate_RecursiveTable(t *testing.T) {
	c := &decoder.DecoderAction{Baseline: "C", Rule: "c", Pattern: "x1xx"}
	dec := newDecoder(
		&decoder.Table{Name: "T1", Rows: []decoder.Row{
			mustRow(t, &decoder.DecoderMethod{Table: "T2"}, "op(3:0)=1xxx"),
		}},
		&decoder.Table{Name: "T2", Rows: []decoder.Row{
			mustRow(t, c, "op(3:0)=x1xx"),
		}},
	)
	src := renderOne(t, &Generator{}, dec, Source)
	if n := strings.Count(src, "return decode_T2(inst);"); n != 1 {
		t.Fatalf("calls into T2 = %d, want 1:\n%s", n, src)
	}
	if n := strings.Count(src, "::decode_T2("); n != 1 {
		t.Fatalf("T2 method bodies = %d, want 1", n)
	}
	if n := strings.Count(src, "return C_c_instance_;"); n != 1 {
		t.Fatalf("T2 body duplicated: %d returns of C", n)
	}
	if !strings.Contains(src, "return decode_T1(inst);") {
		t.Fatalf("decode_named does not enter the primary table")
	}
}

func TestTests_BaselineCollapse(t *testing.T) {
	same := &decoder.DecoderAction{Baseline: "A", Rule: "a", Pattern: "1xxx"}
	dec := newDecoder(&decoder.Table{Name: "T", Rows: []decoder.Row{mustRow(t, same, "op(3:0)=1xxx")}})
	out := renderOne(t, &Generator{}, dec, Tests)
	if n := strings.Count(out, "TEST_F("); n != 1 {
		t.Fatalf("TEST_F count = %d, want 1", n)
	}
	if strings.Contains(out, "ActualVsBaselineTester") {
		t.Fatalf("baseline-only row produced an actual-vs-baseline test")
	}

	distinct := &decoder.DecoderAction{Baseline: "A", Actual: "B", Rule: "a", Pattern: "1xxx"}
	dec = newDecoder(&decoder.Table{Name: "T", Rows: []decoder.Row{mustRow(t, distinct, "op(3:0)=1xxx")}})
	out = renderOne(t, &Generator{}, dec, Tests)
	if n := strings.Count(out, "TEST_F("); n != 1 || !strings.Contains(out, "  NamedB_a actual;\n") {
		t.Fatalf("actual-vs-baseline test missing (%d tests):\n%s", n, out)
	}
}

func TestTests_Deduplication(t *testing.T) {
	r1 := &decoder.DecoderAction{Baseline: "A", Rule: "r1", Pattern: "1000"}
	r2 := &decoder.DecoderAction{Baseline: "A", Rule: "r2", Pattern: "1001"}
	r3 := &decoder.DecoderAction{Baseline: "A", Rule: "r3", Pattern: "0000"}
	dec := newDecoder(&decoder.Table{Name: "T", Rows: []decoder.Row{
		mustRow(t, r1, "op(3:0)=1xxx"),
		mustRow(t, r2, "op(3:0)=1xxx"),
		mustRow(t, r3, "op(3:0)=0xxx"),
	}})
	out := renderOne(t, &Generator{}, dec, Tests)

	counts := map[string]int{
		"class ATesterCase0\n":          1,
		"class ATesterCase1\n":          1,
		"class ATesterCase2\n":          0,
		"class A_r1Tester_Case0\n":      1,
		"class A_r2Tester_Case1\n":      1,
		"class A_r3Tester_Case2\n":      1,
		"    : public ATesterCase0 {\n": 2,
		"    : public ATesterCase1 {\n": 1,
		"TEST_F(":                       3,
	}
	for s, want := range counts {
		if got := strings.Count(out, s); got != want {
			t.Fatalf("count(%q) = %d, want %d\n%s", s, got, want, out)
		}
	}
}

func TestTests_BaselineVsBaseline(t *testing.T) {
	a := &decoder.DecoderAction{Baseline: "A", Rule: "a", Pattern: "1xxx", GeneratedBaseline: "G"}
	dec := newDecoder(&decoder.Table{Name: "T", Rows: []decoder.Row{mustRow(t, a, "op(3:0)=1xxx")}})

	out := renderOne(t, &Generator{}, dec, Tests)
	if strings.Contains(out, "BvB_") {
		t.Fatalf("baseline-vs-baseline test emitted without test-base")
	}

	cfg := config.Default()
	cfg.TestBase = []string{"T"}
	g := &Generator{Config: cfg}
	out = renderOne(t, g, dec, Tests)
	if !strings.Contains(out, "BvB_A_aTester_Case0_TestCase0") || !strings.Contains(out, "  NamedG gen_base_tester;\n") {
		t.Fatalf("baseline-vs-baseline test missing:\n%s", out)
	}
	if n := strings.Count(out, "TEST_F("); n != 2 {
		t.Fatalf("TEST_F count = %d, want 2", n)
	}
	bases := renderOne(t, g, dec, NamedBases)
	if !strings.Contains(bases, "class NamedG\n") {
		t.Fatalf("named bases header lacks NamedG:\n%s", bases)
	}
}

var (
	instanceRef = regexp.MustCompile(`return (\w+_instance_);`)
	methodRef   = regexp.MustCompile(`decode_(\w+)\(inst\)`)
	fieldDecl   = regexp.MustCompile(`const (Named\w+) \w+_instance_;`)
)

func TestHeadersCoverSourceSymbols(t *testing.T) {
	for _, kind := range []string{"baseline", "actual"} {
		cfg := fixtureConfig()
		cfg.Dispatch = kind
		g := &Generator{Config: cfg}
		dec := loadFixture(t)
		src := renderOne(t, g, dec, Source)
		hdr := renderOne(t, g, dec, NamedDecoder)
		classes := renderOne(t, g, dec, NamedClasses)

		refs := instanceRef.FindAllStringSubmatch(src, -1)
		if len(refs) == 0 {
			t.Fatalf("%s: source returns no instances", kind)
		}
		for _, m := range refs {
			if !strings.Contains(hdr, " "+m[1]+";\n") {
				t.Fatalf("%s: instance %s not declared in named decoder", kind, m[1])
			}
		}
		for _, m := range methodRef.FindAllStringSubmatch(src, -1) {
			if !strings.Contains(hdr, "decode_"+m[1]+"(\n") {
				t.Fatalf("%s: method decode_%s not declared", kind, m[1])
			}
		}
		for _, m := range fieldDecl.FindAllStringSubmatch(hdr, -1) {
			if !strings.Contains(classes, "class "+m[1]+"\n") {
				t.Fatalf("%s: class %s not declared in named classes", kind, m[1])
			}
		}
	}
}

func TestTests_FixtureContent(t *testing.T) {
	bag := diag.NewBag(10)
	g := &Generator{Config: fixtureConfig(), Reporter: diag.BagReporter{Bag: bag}}
	out := renderOne(t, g, loadFixture(t), Tests)

	want := []string{
		"class BranchImmediate24TesterCase0\n    : public BranchImmediate24TesterRelativeBranch {\n",
		"  if ((inst.Bits() & 0x0000F000) != 0x00000000 /* Ra(15:12)=~0000 */) return false;\n",
		"  EXPECT_TRUE(!(RegisterList(Rd(inst)).Add(Rn(inst)).Add(Rm(inst)).Contains(Register::Pc())));\n",
		"  EXPECT_TRUE(decoder.defs(inst).IsSame(RegisterList(Rd(inst))",
		"  NamedActual_MUL_A1_cccc0000000sdddd0000mmmm1001nnnn_MUL_A1 actual;\n",
		"  NamedActual_BLX_immediate_A2_1111101hiiiiiiiiiiiiiiiiiiiiiiii_BLX_immediate_A2 actual;\n",
		"BvB_Binary2RegisterImmediateOp_ADC_immediate_A1Tester_Case4_TestCase4",
		"static const NamedTestDecode state_;\n",
		"int main(int argc, char* argv[]) {\n",
	}
	for _, s := range want {
		if !strings.Contains(out, s) {
			t.Fatalf("tests output lacks %q", s)
		}
	}

	missing := 0
	for _, d := range bag.Items() {
		if d.Code == diag.ActMissingPattern {
			missing++
			if d.Location.Row != diag.DefaultRow {
				t.Fatalf("missing pattern reported at %s, want a default row", d.Location)
			}
		}
	}
	if missing != 2 {
		t.Fatalf("missing-pattern warnings = %d, want 2: %s", missing, diag.FormatShort(bag.Items()))
	}
}

func TestSource_Trace(t *testing.T) {
	a := &decoder.DecoderAction{Baseline: "A", Rule: "a", Pattern: "1xxx"}
	dec := newDecoder(&decoder.Table{Name: "T", Rows: []decoder.Row{mustRow(t, a, "op(3:0)=1xxx")}})

	plain := renderOne(t, &Generator{}, dec, Source)
	if strings.Contains(plain, "fprintf") {
		t.Fatalf("trace statements emitted without trace")
	}
	cfg := config.Default()
	cfg.Trace = true
	traced := renderOne(t, &Generator{Config: cfg}, dec, Source)
	for _, s := range []string{"#include <stdio.h>\n", `fprintf(stderr, "decode T\n");`, `fprintf(stderr, "  T row 1\n");`} {
		if !strings.Contains(traced, s) {
			t.Fatalf("traced source lacks %q:\n%s", s, traced)
		}
	}
}

func TestGenerate_Errors(t *testing.T) {
	a := &decoder.DecoderAction{Baseline: "A", Rule: "a", Pattern: "1xxx"}
	good := newDecoder(&decoder.Table{Name: "T", Rows: []decoder.Row{mustRow(t, a, "op(3:0)=1xxx")}})
	badCall := newDecoder(&decoder.Table{Name: "T", Rows: []decoder.Row{
		mustRow(t, a, "op(3:0)=1xxx"),
		mustRow(t, &decoder.DecoderMethod{Table: "missing"}, "op(3:0)=0xxx"),
	}})

	tests := []struct {
		name     string
		dec      *decoder.Decoder
		filename string
		code     diag.Code
		loc      string
	}{
		{"bad suffix", good, "out/test_decode.h", diag.CfgBadFilename, "decoder"},
		{"no primary", &decoder.Decoder{Name: "empty"}, "test_decode.cc", diag.CfgNoPrimary, "decoder"},
		{"unknown table", badCall, "test_decode_named_classes.h", diag.ActUnknownTable, "T:2"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		err := Generate(context.Background(), tt.dec, config.Default(), tt.filename, &buf)
		var de *diag.Error
		if !errors.As(err, &de) || de.Diag.Code != tt.code {
			t.Fatalf("%s: err = %v, want code %s", tt.name, err, tt.code.ID())
		}
		if got := de.Diag.Location.String(); got != tt.loc {
			t.Fatalf("%s: location = %s, want %s", tt.name, got, tt.loc)
		}
		if buf.Len() != 0 {
			t.Fatalf("%s: %d bytes written on failure", tt.name, buf.Len())
		}
	}
}
