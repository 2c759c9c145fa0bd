package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"dgen/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the dgen version",
	Long: `Show the dgen version. --full adds the commit and build time, taken from
the -ldflags overrides or, when those are empty, from the Go build info.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return fmt.Errorf("failed to get json flag: %w", err)
		}
		full, err := cmd.Flags().GetBool("full")
		if err != nil {
			return fmt.Errorf("failed to get full flag: %w", err)
		}
		return writeVersion(cmd.OutOrStdout(), currentBuild(full, readVCS()), asJSON)
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "print as JSON")
	versionCmd.Flags().Bool("full", false, "include commit and build time")
}

type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Built   string `json:"built,omitempty"`
}

// readVCS returns the vcs.* settings stamped by the go command.
func readVCS() map[string]string {
	out := make(map[string]string)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}
	for _, s := range info.Settings {
		if strings.HasPrefix(s.Key, "vcs.") {
			out[s.Key] = s.Value
		}
	}
	return out
}

func currentBuild(full bool, vcs map[string]string) buildInfo {
	b := buildInfo{Version: strings.TrimSpace(version.Version)}
	if b.Version == "" {
		b.Version = "dev"
	}
	if !full {
		return b
	}
	b.Commit = firstNonEmpty(version.GitCommit, vcs["vcs.revision"], "unknown")
	if vcs["vcs.modified"] == "true" && version.GitCommit == "" {
		b.Commit += "+dirty"
	}
	b.Built = firstNonEmpty(version.BuildDate, vcs["vcs.time"], "unknown")
	return b
}

func writeVersion(out io.Writer, b buildInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}
	fmt.Fprintf(out, "dgen %s\n", version.Colored())
	if b.Commit != "" {
		fmt.Fprintf(out, "commit %s\nbuilt  %s\n", b.Commit, b.Built)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
