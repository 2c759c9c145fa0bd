package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dgen/internal/config"
	"dgen/internal/diag"
	"dgen/internal/diagfmt"
	"dgen/internal/gen"
	"dgen/internal/observ"
	"dgen/internal/pipeline"
	"dgen/internal/tables"
)

var genCmd = &cobra.Command{
	Use:   "gen [flags] [tables...]",
	Short: "Generate decoder artifacts from table files",
	Long: `Generate the named headers, the dispatch source and the test source for
each table file. Without arguments the [generate] section of the nearest
dgen.toml is used.`,
	RunE: runGen,
}

func init() {
	genCmd.Flags().StringP("out-dir", "o", "", "directory receiving the artifacts")
	genCmd.Flags().String("base", "", "artifact base name (single table file only)")
	genCmd.Flags().StringSlice("only", nil, "artifacts to produce (named-bases, named-classes, named-decoder, source, tests)")
	genCmd.Flags().IntP("jobs", "j", 0, "max parallel table files (0=auto)")
	genCmd.Flags().Bool("dry-run", false, "render without writing files")
	genCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	genCmd.Flags().Bool("json", false, "print diagnostics as JSON")
	addOptionFlags(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := parseUIMode(uiValue)
	if err != nil {
		return err
	}
	output := genOutput{mode: mode, quiet: quiet, json: jsonOut, tty: isTerminal(os.Stdout)}

	reqs, err := genRequests(cmd, args)
	if err != nil {
		return err
	}

	stats := observ.NewStats()
	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
	}
	bags := make([]*diag.Bag, len(reqs))
	for i, req := range reqs {
		bags[i] = diag.NewBag(maxDiagnostics)
		req.Reporter = diag.NewDedupReporter(diag.BagReporter{Bag: bags[i]})
		req.Stats = stats
		req.Timer = timer
		req.DryRun = dryRun
	}

	var results []pipeline.Result
	if output.showProgress() {
		results, err = runAllWithUI(cmd.Context(), "dgen gen", reqs, jobs)
	} else {
		results, err = pipeline.RunAll(cmd.Context(), reqs, jobs)
	}
	if err != nil {
		return err
	}

	useColor, err := colorEnabled(cmd, os.Stderr)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	failed := 0
	var all []diag.Diagnostic
	for i, res := range results {
		bags[i].Sort()
		items := bags[i].Items()
		if jsonOut {
			all = append(all, items...)
		} else {
			diagfmt.Pretty(errOut, items, diagfmt.PrettyOpts{Color: useColor, Path: res.File})
		}
		if res.Err != nil {
			failed++
			diagfmt.PrettyError(errOut, res.Err, diagfmt.PrettyOpts{Color: useColor, Path: res.File})
			continue
		}
		if !quiet && !jsonOut {
			reportOutputs(out, res, dryRun)
		}
		if showTimings {
			printStageTimings(out, res.File, res.Timings)
		}
	}
	if jsonOut {
		if err := diagfmt.JSON(out, all, diagfmt.JSONOpts{Max: maxDiagnostics}); err != nil {
			return err
		}
	}
	if showTimings {
		printRunSummary(out, stats, timer)
	}
	if failed > 0 {
		return errReported
	}
	return nil
}

func reportOutputs(out io.Writer, res pipeline.Result, dryRun bool) {
	if dryRun {
		for _, o := range res.Outputs {
			fmt.Fprintf(out, "%s: would write %s (%d bytes, %d symbols)\n", res.File, o.Filename, len(o.Data), o.Symbols)
		}
		return
	}
	fmt.Fprintf(out, "%s: wrote %d files\n", res.File, len(res.Written))
}

// genRequests builds one request per table file argument, or the manifest
// request when there are none.
func genRequests(cmd *cobra.Command, args []string) ([]*pipeline.Request, error) {
	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get out-dir flag: %w", err)
	}
	base, err := cmd.Flags().GetString("base")
	if err != nil {
		return nil, fmt.Errorf("failed to get base flag: %w", err)
	}
	only, err := cmd.Flags().GetStringSlice("only")
	if err != nil {
		return nil, fmt.Errorf("failed to get only flag: %w", err)
	}
	arts := make([]gen.Artifact, 0, len(only))
	for _, s := range only {
		a, err := gen.ParseArtifact(s)
		if err != nil {
			return nil, err
		}
		arts = append(arts, a)
	}

	if len(args) == 0 {
		m, err := findManifest()
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.New("no table files given and no " + config.ManifestName + " found")
		}
		req, err := pipeline.FromManifest(m)
		if err != nil {
			return nil, err
		}
		if req.Config, err = loadOptions(cmd, m.Options); err != nil {
			return nil, err
		}
		applyOverrides(req, outDir, base, arts)
		return []*pipeline.Request{req}, nil
	}

	if base != "" && len(args) > 1 {
		return nil, errors.New("--base needs exactly one table file")
	}
	cfg, err := loadOptions(cmd, nil)
	if err != nil {
		return nil, err
	}
	reqs := make([]*pipeline.Request, 0, len(args))
	for _, path := range args {
		if _, err := tables.DetectFormat(path); err != nil {
			return nil, err
		}
		req := &pipeline.Request{Tables: path, Config: cfg}
		applyOverrides(req, outDir, base, arts)
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func applyOverrides(req *pipeline.Request, outDir, base string, arts []gen.Artifact) {
	if outDir != "" {
		req.OutDir = outDir
	}
	if base != "" {
		req.Base = base
	}
	if len(arts) > 0 {
		req.Artifacts = arts
	}
}
