package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dgen/internal/tables"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot TABLES OUTPUT",
	Short: "Convert a table file to the binary snapshot format",
	Long: `Load a YAML, TOML or snapshot table file and write it as a msgpack
snapshot (.dgs). Snapshots load without re-parsing text and round-trip to
the same decoder.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dec, err := tables.Load(args[0])
		if err != nil {
			return err
		}
		if err := tables.WriteSnapshot(args[1], dec); err != nil {
			return err
		}
		quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
		if err != nil {
			return fmt.Errorf("failed to get quiet flag: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d tables -> %s\n", args[0], len(dec.Tables), args[1])
		}
		return nil
	},
}
