// Package gen renders an augmented decoder into the five generated
// artifacts: the three named headers, the dispatch source and the tests.
//
// Every artifact is produced from %(name)s templates expanded against a
// Values context. Rendering is deterministic: the same decoder and
// configuration always give the same bytes.
package gen

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"dgen/internal/config"
	"dgen/internal/decoder"
	"dgen/internal/diag"
	"dgen/internal/observ"
	"dgen/internal/trace"
)

// Generator renders artifacts. The zero value uses the default
// configuration and discards warnings. A Generator holds no per-call
// state and may be shared between goroutines.
type Generator struct {
	Config   *config.Config
	Reporter diag.Reporter
	Stats    *observ.Stats
}

// Output is one rendered artifact.
type Output struct {
	Artifact Artifact
	Filename string
	Data     []byte
	Symbols  int
}

// Generate renders the artifact selected by filename's suffix into w.
// Nothing is written when generation fails.
func (g *Generator) Generate(ctx context.Context, dec *decoder.Decoder, filename string, w io.Writer) error {
	a, base, err := ParseFilename(filename)
	if err != nil {
		return err
	}
	outs, err := g.Render(ctx, dec, base, []Artifact{a})
	if err != nil {
		return err
	}
	if _, err := w.Write(outs[0].Data); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// Render augments dec once and renders arts for the output base name.
// Either all requested artifacts are returned or none.
func (g *Generator) Render(ctx context.Context, dec *decoder.Decoder, base string, arts []Artifact) ([]Output, error) {
	aug, err := g.Augment(ctx, dec)
	if err != nil {
		return nil, err
	}
	return g.RenderAugmented(ctx, aug, base, arts)
}

// Augment binds baselines and actuals using the generator's configuration.
func (g *Generator) Augment(ctx context.Context, dec *decoder.Decoder) (*decoder.Decoder, error) {
	s, err := g.settings()
	if err != nil {
		return nil, err
	}
	_, span := trace.Start(ctx, trace.ScopeArtifact, "augment")
	defer span.End("")
	return decoder.Augment(dec, s.cfg)
}

// RenderAugmented renders arts from a decoder Augment already processed.
func (g *Generator) RenderAugmented(ctx context.Context, aug *decoder.Decoder, base string, arts []Artifact) ([]Output, error) {
	s, err := g.settings()
	if err != nil {
		return nil, err
	}
	if aug == nil || aug.Primary == nil {
		return nil, diag.Errorf(diag.CfgNoPrimary, "decoder has no primary table")
	}
	outs := make([]Output, 0, len(arts))
	for _, a := range arts {
		out, err := g.render(ctx, aug, s, base, a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", Filename(base, a), err)
		}
		outs = append(outs, out)
	}
	return outs, nil
}

type settings struct {
	cfg      *config.Config
	kind     decoder.Kind
	reporter diag.Reporter
}

func (g *Generator) settings() (settings, error) {
	cfg := g.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return settings{}, err
	}
	kind, err := cfg.DispatchKind()
	if err != nil {
		return settings{}, err
	}
	reporter := g.Reporter
	if reporter == nil {
		reporter = diag.Nop
	}
	return settings{cfg: cfg, kind: kind, reporter: reporter}, nil
}

func (g *Generator) render(ctx context.Context, dec *decoder.Decoder, s settings, base string, a Artifact) (Output, error) {
	filename := Filename(base, a)
	ctx, span := trace.Start(ctx, trace.ScopeArtifact, "render:"+filename)
	defer span.End("")

	w := newWriter(newValues(s.cfg, dec, base, filename))
	var (
		err   error
		tests int
	)
	switch a {
	case NamedBases:
		err = emitNamedBases(w, dec)
	case NamedClasses:
		err = emitNamedClasses(w, dec)
	case NamedDecoder:
		err = emitNamedDecoder(w, dec)
	case Source:
		err = emitSource(ctx, w, dec, sourceOptions{
			kind:     s.kind,
			trace:    bool(s.cfg.Trace),
			reporter: s.reporter,
			stats:    g.Stats,
		})
	case Tests:
		tests, err = emitTests(w, dec, s.cfg, s.reporter)
	default:
		err = diag.Errorf(diag.CfgBadFilename, "unknown artifact %d", a)
	}
	if err != nil {
		return Output{}, err
	}

	out := Output{
		Artifact: a,
		Filename: filename,
		Data:     bytes.Clone(w.buf.Bytes()),
		Symbols:  len(w.symbols) + tests,
	}
	span.WithExtra("bytes", fmt.Sprint(len(out.Data)))
	g.Stats.RecordArtifact(observ.ArtifactStats{Path: filename, Bytes: len(out.Data), Symbols: out.Symbols})
	return out, nil
}

// newValues seeds the decoder-wide template fields.
func newValues(cfg *config.Config, dec *decoder.Decoder, base, filename string) *Values {
	return &Values{
		FileHeader:    cfg.FileHeader,
		NotTCBMessage: cfg.NotTCBMessage,
		IfdefName:     ifdefName(filename),
		FilenameBase:  base,
		DecoderName:   decoderName(base),
		EntryTable:    dec.Primary.Name,
	}
}

// Generate renders the artifact named by filename with cfg.
func Generate(ctx context.Context, dec *decoder.Decoder, cfg *config.Config, filename string, w io.Writer) error {
	g := &Generator{Config: cfg}
	return g.Generate(ctx, dec, filename, w)
}
