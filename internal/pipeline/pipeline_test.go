package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/goleak"

	"dgen/internal/config"
	"dgen/internal/decoder"
	"dgen/internal/diag"
	"dgen/internal/gen"
	"dgen/internal/observ"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixture = filepath.Join("..", "tables", "testdata", "arm32.yaml")

func brokenDecoder() *decoder.Decoder {
	t := &decoder.Table{Name: "main", Rows: []decoder.Row{
		{Action: &decoder.DecoderMethod{Table: "missing"}},
	}}
	return &decoder.Decoder{Name: "broken", Tables: []*decoder.Table{t}, Primary: t}
}

func TestRun_WritesAllArtifacts(t *testing.T) {
	out := t.TempDir()
	var events []Event
	stats := observ.NewStats()
	timer := observ.NewTimer()
	req := &Request{
		Tables:   fixture,
		Base:     "gen/arm32_decode",
		OutDir:   out,
		Progress: FuncSink(func(e Event) { events = append(events, e) }),
		Stats:    stats,
		Timer:    timer,
	}
	res, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Written) != len(gen.Artifacts) {
		t.Fatalf("written %d files, want %d", len(res.Written), len(gen.Artifacts))
	}
	for _, a := range gen.Artifacts {
		path := filepath.Join(out, "gen", "arm32_decode"+a.Suffix())
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
	for _, st := range Stages {
		if !res.Timings.Has(st) {
			t.Fatalf("no timing for stage %s", st)
		}
	}
	if len(events) != 2*len(Stages) {
		t.Fatalf("got %d events, want %d: %+v", len(events), 2*len(Stages), events)
	}
	last := events[len(events)-1]
	if last.Stage != StageWrite || last.Status != StatusDone || last.File != filepath.ToSlash(fixture) {
		t.Fatalf("last event = %+v", last)
	}
	if len(stats.Tables()) == 0 || len(stats.Artifacts()) != len(gen.Artifacts) {
		t.Fatalf("stats not recorded: %s", stats.Summary())
	}
	if len(timer.Report().Phases) != len(Stages) {
		t.Fatalf("timer phases = %d", len(timer.Report().Phases))
	}
}

func TestRun_FailureWritesNothing(t *testing.T) {
	out := t.TempDir()
	var events []Event
	req := &Request{
		Decoder:  brokenDecoder(),
		OutDir:   out,
		Progress: FuncSink(func(e Event) { events = append(events, e) }),
	}
	res, err := Run(context.Background(), req)
	if diag.CodeOf(err) != diag.ActUnknownTable {
		t.Fatalf("err = %v, want ActUnknownTable", err)
	}
	if res.Err == nil || len(res.Written) != 0 {
		t.Fatalf("result = %+v", res)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("output dir not empty: %v", entries)
	}
	last := events[len(events)-1]
	if last.Stage != StageAugment || last.Status != StatusError {
		t.Fatalf("last event = %+v", last)
	}
}

func TestRun_WriteFailureKeepsEarlierArtifacts(t *testing.T) {
	out := t.TempDir()
	dir := filepath.Join(out, "gen")
	first := filepath.Join(dir, "arm32_decode"+gen.Artifacts[0].Suffix())
	last := filepath.Join(dir, "arm32_decode"+gen.Artifacts[len(gen.Artifacts)-1].Suffix())
	if err := os.MkdirAll(last, 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(first, []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	req := &Request{Tables: fixture, Base: "gen/arm32_decode", OutDir: out}
	res, err := Run(context.Background(), req)
	if err == nil {
		t.Fatalf("Run succeeded with a directory in place of %s", last)
	}
	if len(res.Written) != 0 {
		t.Fatalf("written = %v, want none", res.Written)
	}
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read %s: %v", first, err)
	}
	if string(data) != "old" {
		t.Fatalf("%s was replaced: %q", first, data)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("leftover files in %s: %v", dir, names)
	}
}

func TestRun_DryRunAndSelection(t *testing.T) {
	out := t.TempDir()
	req := &Request{
		Tables:    fixture,
		OutDir:    out,
		Artifacts: []gen.Artifact{gen.NamedDecoder, gen.Source},
		DryRun:    true,
	}
	res, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Outputs) != 2 || res.Outputs[0].Filename != "arm32_named_decoder.h" || res.Outputs[1].Filename != "arm32.cc" {
		t.Fatalf("outputs = %+v", res.Outputs)
	}
	if len(res.Written) != 0 || res.Timings.Has(StageWrite) {
		t.Fatalf("dry run wrote files: %v", res.Written)
	}
}

func TestRunAll_KeepsGoingAfterFailure(t *testing.T) {
	ch := make(chan Event, 64)
	sink := ChannelSink{Ch: ch}
	reqs := []*Request{
		{Tables: fixture, DryRun: true, Progress: sink},
		{Decoder: brokenDecoder(), DryRun: true, Progress: sink},
		{Tables: fixture, DryRun: true, Progress: sink, Config: &config.Config{Dispatch: "actual"}},
	}
	results, err := RunAll(context.Background(), reqs, 2)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	close(ch)
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("unexpected errors: %v / %v", results[0].Err, results[2].Err)
	}
	if diag.CodeOf(results[1].Err) != diag.ActUnknownTable {
		t.Fatalf("results[1].Err = %v", results[1].Err)
	}
	if results[1].File != "broken" {
		t.Fatalf("results[1].File = %q", results[1].File)
	}
	queued := 0
	for e := range ch {
		if e.Status == StatusQueued {
			queued++
		}
	}
	if queued != len(reqs) {
		t.Fatalf("queued events = %d, want %d", queued, len(reqs))
	}
}

func TestRunAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunAll(ctx, []*Request{{Tables: fixture, DryRun: true}}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestFromManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := `[generate]
tables = "tables/arm32.yaml"
base = "gen/arm32"
out-dir = "out"
outputs = ["named-decoder", ".cc"]

[options]
test-base = ["dp_misc"]
`
	path := filepath.Join(dir, config.ManifestName)
	if err := os.WriteFile(path, []byte(manifest), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	m, err := config.LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	req, err := FromManifest(m)
	if err != nil {
		t.Fatalf("FromManifest: %v", err)
	}
	if len(req.Artifacts) != 2 || req.Artifacts[0] != gen.NamedDecoder || req.Artifacts[1] != gen.Source {
		t.Fatalf("artifacts = %v", req.Artifacts)
	}
	if got, want := req.Path(gen.Source), filepath.Join(dir, "out", "gen", "arm32.cc"); got != want {
		t.Fatalf("Path = %q, want %q", got, want)
	}
	if !req.Config.InTestBase("dp_misc") {
		t.Fatalf("options not carried over")
	}
}
