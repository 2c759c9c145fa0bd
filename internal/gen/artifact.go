package gen

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dgen/internal/diag"
)

// Artifact is one kind of generated file.
type Artifact uint8

const (
	NamedBases Artifact = iota + 1
	NamedClasses
	NamedDecoder
	Tests
	Source
)

// Artifacts lists every artifact in dependency order.
var Artifacts = []Artifact{NamedBases, NamedClasses, NamedDecoder, Source, Tests}

// Suffix is the filename suffix selecting the artifact.
func (a Artifact) Suffix() string {
	switch a {
	case NamedBases:
		return "_named_bases.h"
	case NamedClasses:
		return "_named_classes.h"
	case NamedDecoder:
		return "_named_decoder.h"
	case Tests:
		return "_tests.cc"
	case Source:
		return ".cc"
	}
	return ""
}

func (a Artifact) String() string {
	switch a {
	case NamedBases:
		return "named-bases"
	case NamedClasses:
		return "named-classes"
	case NamedDecoder:
		return "named-decoder"
	case Tests:
		return "tests"
	case Source:
		return "source"
	}
	return "unknown"
}

// ParseArtifact accepts an artifact name or its suffix.
func ParseArtifact(s string) (Artifact, error) {
	for _, a := range Artifacts {
		if s == a.String() || s == a.Suffix() {
			return a, nil
		}
	}
	return 0, diag.Errorf(diag.CfgBadFilename, "unknown artifact %q", s)
}

// suffix matching order: "_tests.cc" must be tried before ".cc".
var matchOrder = []Artifact{NamedBases, NamedClasses, NamedDecoder, Tests, Source}

// ParseFilename maps an output filename to its artifact and base name.
func ParseFilename(filename string) (Artifact, string, error) {
	for _, a := range matchOrder {
		if base, ok := strings.CutSuffix(filename, a.Suffix()); ok && base != "" && !strings.HasSuffix(base, "/") {
			return a, base, nil
		}
	}
	return 0, "", diag.Errorf(diag.CfgBadFilename,
		"output filename %q must end in _named_bases.h, _named_classes.h, _named_decoder.h, _tests.cc or .cc", filename)
}

// Filename is the output filename of a for base.
func Filename(base string, a Artifact) string {
	return base + a.Suffix()
}

// ifdefName derives the include guard from the filename.
func ifdefName(filename string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(filename) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteByte('_')
	return b.String()
}

// decoderName turns the last element of base into a C++ class stem:
// "gen/arm32_decode" becomes "Arm32Decode".
func decoderName(base string) string {
	title := cases.Title(language.English)
	words := strings.FieldsFunc(path.Base(base), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, w := range words {
		b.WriteString(title.String(w))
	}
	if b.Len() == 0 {
		return "Decoder"
	}
	return b.String()
}

// identifier makes s usable inside a C++ identifier.
func identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
