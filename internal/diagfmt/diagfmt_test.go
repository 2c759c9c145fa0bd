package diagfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"dgen/internal/diag"
)

func sample() []diag.Diagnostic {
	return []diag.Diagnostic{
		diag.New(diag.SevWarning, diag.OptShadowedRow, diag.Location{Table: "main", Row: 2}, "row is shadowed"),
		diag.New(diag.SevWarning, diag.ActMissingPattern, diag.Location{Table: "main", Row: diag.DefaultRow}, "no test pattern").
			WithAction("= {class: Undefined}"),
	}
}

func TestPretty_Plain(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sample(), PrettyOpts{Path: "arm32.yaml", ShowAction: true})
	want := "arm32.yaml: main:2: warning OPT3001: row is shadowed\n" +
		"arm32.yaml: main:default: warning ACT2006: no test pattern\n" +
		"    action: = {class: Undefined}\n"
	if got := buf.String(); got != want {
		t.Fatalf("Pretty:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestPretty_ColorAddsEscapes(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sample()[:1], PrettyOpts{Color: true})
	if !bytes.Contains(buf.Bytes(), []byte("\x1b[")) {
		t.Fatalf("no escape sequences in %q", buf.String())
	}
}

func TestPrettyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "diagnostic",
			err: diag.At(diag.Errorf(diag.ActUnknownTable, "table %q is not defined", "shift").WithAction("->shift"),
				diag.Location{Table: "main", Row: 3}),
			want: "main:3: error ACT2003: table \"shift\" is not defined\n    action: ->shift\n",
		},
		{
			name: "wrapped cause",
			err:  fmt.Errorf("gen: %w", diag.Wrap(diag.CfgBadValue, fmt.Errorf("bad bool"), "option trace")),
			want: "decoder: error CFG1004: option trace: bad bool\n",
		},
		{
			name: "plain",
			err:  fmt.Errorf("disk full"),
			want: "error: disk full\n",
		},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		PrettyError(&buf, tt.err, PrettyOpts{})
		if got := buf.String(); got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sample(), JSONOpts{Path: "arm32.yaml", Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d, len = %d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Code != "OPT3001" || d.Severity != "WARNING" || d.Location.Row != "2" || d.Location.File != "arm32.yaml" {
		t.Fatalf("diagnostic = %+v", d)
	}
	if rowString(diag.DefaultRow) != "default" || rowString(0) != "" {
		t.Fatalf("rowString mismatch")
	}
}
