package config

import (
	"os"
	"path/filepath"
	"testing"

	"dgen/internal/decoder"
	"dgen/internal/diag"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestActualFor_MostSpecificKeyWins(t *testing.T) {
	c := Default()
	c.AutoActual = map[string]string{
		"main":         "TableWide",
		"main:mov":     "MovActual",
		"main#3":       "RowThree",
		"main#default": "DefaultActual",
	}
	tests := []struct {
		row  int
		rule string
		want string
	}{
		{3, "mov", "RowThree"},
		{2, "mov", "MovActual"},
		{2, "add", "TableWide"},
		{diag.DefaultRow, "udf", "DefaultActual"},
	}
	for _, tt := range tests {
		got, ok := c.ActualFor("main", tt.row, tt.rule)
		if !ok || got != tt.want {
			t.Errorf("ActualFor(main, %d, %s) = %q, %v; want %q", tt.row, tt.rule, got, ok, tt.want)
		}
	}
	if _, ok := c.ActualFor("other", 1, "mov"); ok {
		t.Errorf("unexpected actual for unmapped table")
	}
}

func TestSet_Overrides(t *testing.T) {
	c := Default()
	err := c.SetAll([]string{
		"trace=True",
		"test-base=main, shift",
		"dispatch=actual",
		"auto-actual.main:mov=MovActual",
	})
	if err != nil {
		t.Fatalf("SetAll: %v", err)
	}
	if !bool(c.Trace) || !c.InTestBase("shift") || c.InTestBase("other") {
		t.Fatalf("unexpected config %+v", c)
	}
	if k, _ := c.DispatchKind(); k != decoder.Actual {
		t.Fatalf("dispatch = %v", k)
	}
	if got, _ := c.ActualFor("main", 1, "mov"); got != "MovActual" {
		t.Fatalf("auto-actual = %q", got)
	}
	for _, bad := range []string{"trace=maybe", "dispatch=both", "colour=red", "novalue"} {
		if err := Default().SetAll([]string{bad}); diag.CodeOf(err) != diag.CfgBadValue {
			t.Errorf("SetAll(%q) = %v, want CfgBadValue", bad, err)
		}
	}
}

func TestClone_IsDeep(t *testing.T) {
	c := Default()
	c.TestBase = []string{"main"}
	cp := c.Clone()
	cp.AutoActual["x"] = "y"
	cp.TestBase[0] = "changed"
	if len(c.AutoActual) != 0 || c.TestBase[0] != "main" {
		t.Fatalf("clone shares state with original")
	}
}

func TestLoadManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
[generate]
tables = "tables/arm32.yaml"
base = "gen/arm32_decode"
out-dir = "out"

[options]
trace = "True"
test-base = ["main"]

[options.auto-actual]
"main:mov" = "MovActual"
`)
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path, ok, err := FindManifest(sub)
	if err != nil || !ok {
		t.Fatalf("FindManifest: %v %v", ok, err)
	}
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Generate.Tables != filepath.Join(root, "tables", "arm32.yaml") {
		t.Fatalf("tables = %q", m.Generate.Tables)
	}
	if m.Generate.OutDir != filepath.Join(root, "out") || m.Generate.Base != "gen/arm32_decode" {
		t.Fatalf("generate = %+v", m.Generate)
	}
	if !bool(m.Options.Trace) || !m.Options.InTestBase("main") || m.Options.FileHeader != DefaultFileHeader {
		t.Fatalf("options = %+v", m.Options)
	}
	if got, _ := m.Options.ActualFor("main", 1, "mov"); got != "MovActual" {
		t.Fatalf("auto-actual = %q", got)
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	tests := map[string]string{
		"missing generate": "[options]\ntrace = true\n",
		"missing tables":   "[generate]\nbase = \"x\"\n",
		"unknown key":      "[generate]\ntables = \"t.yaml\"\nlanguage = \"c\"\n",
		"bad flag":         "[generate]\ntables = \"t.yaml\"\n[options]\ntrace = \"perhaps\"\n",
		"bad dispatch":     "[generate]\ntables = \"t.yaml\"\n[options]\ndispatch = \"both\"\n",
	}
	for name, content := range tests {
		path := filepath.Join(t.TempDir(), ManifestName)
		writeFile(t, path, content)
		if _, err := LoadManifest(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad_TopLevelOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opts.toml")
	writeFile(t, path, "trace = false\ndispatch = \"actual\"\n[auto-actual]\nmain = \"A\"\n")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Trace || c.Dispatch != "actual" || c.AutoActual["main"] != "A" {
		t.Fatalf("config = %+v", c)
	}
}
