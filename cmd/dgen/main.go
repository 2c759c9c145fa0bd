// Package main implements the dgen CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dgen/internal/diagfmt"
	"dgen/internal/version"
)

// errReported is returned by commands that already printed their failures.
var errReported = errors.New("errors reported")

var traceCleanup = func() {}

var rootCmd = &cobra.Command{
	Use:           "dgen",
	Short:         "Decoder table code generator",
	Long:          `dgen compiles instruction decoder tables into dispatch code, named class headers and conformance tests`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		useColor, err := colorEnabled(cmd, os.Stdout)
		if err != nil {
			return err
		}
		color.NoColor = !useColor
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to keep per table file")

	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept by the ring tracer")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")
}

// main executes the root command. Errors not already reported are printed
// and the process exits with status 1.
func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		dumpTraceRing(os.Stderr)
	}
	traceCleanup()
	if err == nil {
		return
	}
	if !errors.Is(err, errReported) {
		useColor := isTerminal(os.Stderr)
		if flag := rootCmd.PersistentFlags().Lookup("color"); flag != nil {
			useColor = resolveColor(flag.Value.String(), os.Stderr)
		}
		diagfmt.PrettyError(os.Stderr, err, diagfmt.PrettyOpts{Color: useColor})
	}
	os.Exit(1)
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func resolveColor(value string, f *os.File) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(f)
}

func colorEnabled(cmd *cobra.Command, f *os.File) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "auto", "on", "off":
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
	return resolveColor(value, f), nil
}
