// Package pipeline runs table files through load, augment, emit and write.
// Artifacts are rendered in memory, staged in pending files, and only
// renamed over their targets once every one of them was staged.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"golang.org/x/sync/errgroup"

	"dgen/internal/config"
	"dgen/internal/decoder"
	"dgen/internal/diag"
	"dgen/internal/gen"
	"dgen/internal/observ"
	"dgen/internal/tables"
	"dgen/internal/trace"
)

// Request configures one generation run.
type Request struct {
	// Tables is the table file to load.
	Tables string
	// Decoder, when set, is used instead of loading Tables.
	Decoder *decoder.Decoder
	// Base is the artifact base name as it appears in generated includes;
	// defaults to the stem of Tables.
	Base string
	// OutDir receives the artifacts; defaults to the current directory.
	OutDir string
	// Artifacts selects what to render; empty means all of them.
	Artifacts []gen.Artifact
	Config    *config.Config
	Reporter  diag.Reporter
	Stats     *observ.Stats
	Timer     *observ.Timer
	Progress  ProgressSink
	// DryRun renders without touching the file system.
	DryRun bool
}

// Result captures the rendered artifacts and stage timings.
type Result struct {
	File    string
	Outputs []gen.Output
	Written []string
	Timings Timings
	Err     error
}

// FromManifest builds the request a bare `dgen gen` runs.
func FromManifest(m *config.Manifest) (*Request, error) {
	req := &Request{
		Tables: m.Generate.Tables,
		Base:   m.Generate.Base,
		OutDir: m.Generate.OutDir,
		Config: m.Options,
	}
	for _, s := range m.Generate.Outputs {
		a, err := gen.ParseArtifact(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Path, err)
		}
		req.Artifacts = append(req.Artifacts, a)
	}
	return req, nil
}

// DisplayName is how progress events and errors name the request.
func (r *Request) DisplayName() string {
	switch {
	case r.Tables != "":
		return filepath.ToSlash(r.Tables)
	case r.Decoder != nil && r.Decoder.Name != "":
		return r.Decoder.Name
	}
	return "<decoder>"
}

func (r *Request) base() string {
	if r.Base != "" {
		return r.Base
	}
	stem := filepath.Base(r.Tables)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	if stem == "" || stem == "." {
		if r.Decoder != nil && r.Decoder.Name != "" {
			return r.Decoder.Name
		}
		return "decoder"
	}
	return stem
}

// Path is where artifact a of the request is written.
func (r *Request) Path(a gen.Artifact) string {
	outDir := r.OutDir
	if outDir == "" {
		outDir = "."
	}
	return filepath.Join(outDir, filepath.FromSlash(gen.Filename(r.base(), a)))
}

type runner struct {
	req  *Request
	file string
	res  *Result
}

func (r *runner) stage(stage Stage, fn func() error) error {
	emit(r.req.Progress, r.file, stage, StatusWorking, nil, 0)
	idx := r.req.Timer.Begin(r.file + ":" + string(stage))
	start := time.Now()
	err := fn()
	dur := time.Since(start)
	r.res.Timings.Set(stage, dur)
	if err != nil {
		r.req.Timer.End(idx, "failed")
		emit(r.req.Progress, r.file, stage, StatusError, err, dur)
		return err
	}
	r.req.Timer.End(idx, "")
	emit(r.req.Progress, r.file, stage, StatusDone, nil, dur)
	return nil
}

// Run executes every stage of req. On error no artifact is written and the
// error is also stored in the result.
func Run(ctx context.Context, req *Request) (Result, error) {
	if req == nil {
		err := fmt.Errorf("missing generation request")
		return Result{Err: err}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	res := Result{File: req.DisplayName()}
	err := run(ctx, req, &res)
	if err != nil {
		res.Err = err
	}
	return res, err
}

func run(ctx context.Context, req *Request, res *Result) error {
	r := &runner{req: req, file: res.File, res: res}
	ctx, span := trace.Start(ctx, trace.ScopeRun, "generate:"+r.file)
	defer span.End("")

	g := &gen.Generator{Config: req.Config, Reporter: req.Reporter, Stats: req.Stats}
	arts := req.Artifacts
	if len(arts) == 0 {
		arts = gen.Artifacts
	}

	dec := req.Decoder
	err := r.stage(StageLoad, func() error {
		if dec != nil {
			return nil
		}
		if req.Tables == "" {
			return diag.Errorf(diag.CfgBadValue, "no table file given")
		}
		var err error
		dec, err = tables.Load(req.Tables)
		return err
	})
	if err != nil {
		return err
	}

	var aug *decoder.Decoder
	err = r.stage(StageAugment, func() error {
		var err error
		aug, err = g.Augment(ctx, dec)
		return err
	})
	if err != nil {
		return err
	}

	err = r.stage(StageEmit, func() error {
		var err error
		res.Outputs, err = g.RenderAugmented(ctx, aug, req.base(), arts)
		return err
	})
	if err != nil {
		return err
	}

	if req.DryRun {
		return nil
	}
	return r.stage(StageWrite, func() error {
		written, err := writeArtifacts(req, res.Outputs)
		res.Written = written
		return err
	})
}

// writeArtifacts stages every output in a pending file next to its target
// and renames them into place only once all of them were written, so a
// failing artifact leaves the earlier ones untouched.
func writeArtifacts(req *Request, outs []gen.Output) ([]string, error) {
	paths := make([]string, 0, len(outs))
	pending := make([]*renameio.PendingFile, 0, len(outs))
	defer func() {
		// no-op for committed files
		for _, pf := range pending {
			_ = pf.Cleanup()
		}
	}()
	for _, out := range outs {
		path := req.Path(out.Artifact)
		pf, err := stageArtifact(path, out.Data)
		if err != nil {
			return nil, err
		}
		pending = append(pending, pf)
		paths = append(paths, path)
	}
	written := make([]string, 0, len(paths))
	for i, pf := range pending {
		if err := pf.CloseAtomicallyReplace(); err != nil {
			return written, fmt.Errorf("failed to replace %q: %w", paths[i], err)
		}
		written = append(written, paths[i])
	}
	return written, nil
}

func stageArtifact(path string, data []byte) (*renameio.PendingFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return nil, fmt.Errorf("failed to write %q: is a directory", path)
	}
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return nil, fmt.Errorf("failed to stage %q: %w", path, err)
	}
	if _, err := pf.Write(data); err != nil {
		_ = pf.Cleanup()
		return nil, fmt.Errorf("failed to write %q: %w", path, err)
	}
	return pf, nil
}

// RunAll runs independent requests with at most jobs in flight. A failing
// request does not stop the others: its error is kept in its Result. The
// returned error is only set when ctx was cancelled.
func RunAll(ctx context.Context, reqs []*Request, jobs int) ([]Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, req := range reqs {
		if req != nil {
			emit(req.Progress, req.DisplayName(), StageLoad, StatusQueued, nil, 0)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(reqs)))
	for i, req := range reqs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// each goroutine owns results[i]
			results[i], _ = Run(gctx, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
