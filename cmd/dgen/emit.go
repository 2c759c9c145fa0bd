package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"dgen/internal/diag"
	"dgen/internal/diagfmt"
	"dgen/internal/gen"
	"dgen/internal/tables"
)

var emitCmd = &cobra.Command{
	Use:   "emit [flags] TABLES OUTPUT",
	Short: "Render the single artifact named by OUTPUT",
	Long: `Render one artifact. OUTPUT's suffix selects it (_named_bases.h,
_named_classes.h, _named_decoder.h, _tests.cc or .cc) and the rest of the
name is used as the include base.`,
	Args: cobra.ExactArgs(2),
	RunE: runEmit,
}

func init() {
	emitCmd.Flags().Bool("stdout", false, "print the artifact instead of writing OUTPUT")
	addOptionFlags(emitCmd)
}

func runEmit(cmd *cobra.Command, args []string) error {
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return fmt.Errorf("failed to get stdout flag: %w", err)
	}
	tablesPath, output := args[0], filepath.ToSlash(args[1])

	dec, err := tables.Load(tablesPath)
	if err != nil {
		return err
	}
	cfg, err := loadOptions(cmd, nil)
	if err != nil {
		return err
	}
	bag := diag.NewBag(100)
	g := &gen.Generator{Config: cfg, Reporter: diag.NewDedupReporter(diag.BagReporter{Bag: bag})}

	var buf bytes.Buffer
	if err := g.Generate(cmd.Context(), dec, output, &buf); err != nil {
		return err
	}
	useColor, err := colorEnabled(cmd, os.Stderr)
	if err != nil {
		return err
	}
	bag.Sort()
	diagfmt.Pretty(cmd.ErrOrStderr(), bag.Items(), diagfmt.PrettyOpts{Color: useColor, Path: tablesPath})

	if toStdout {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := renameio.WriteFile(args[1], buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", args[1], err)
	}
	return nil
}
