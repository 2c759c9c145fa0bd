package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestColored_PlainWhenColorDisabled(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = true

	tests := []struct {
		in   string
		want string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.2.3-rc.1+build.123", "1.2.3-rc.1+build.123"},
		{"dev", "dev"},
		{" 2.0.0 ", "2.0.0"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Colored(); got != tt.want {
			t.Fatalf("Colored(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColored_KeepsSuffixPlain(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	versionPatchColor.EnableColor()
	defer versionPatchColor.DisableColor()
	Version = "1.2.3-dev"

	got := Colored()
	// color resets end in "m" whatever attributes they clear
	if !strings.HasSuffix(got, "m-dev") || strings.Contains(got, "-dev\x1b") {
		t.Fatalf("Colored() = %q, want the pre-release outside the escape", got)
	}
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("Colored() = %q, want the patch number colored", got)
	}
}
