package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"dgen/internal/decoder"
	"dgen/internal/tables"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] TABLES",
	Short: "Dump the decoder model",
	Long: `Dump the decoder model after augmentation: every decoder action with its
baseline and actual classes bound. --raw dumps the model as loaded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := cmd.Flags().GetBool("raw")
		if err != nil {
			return fmt.Errorf("failed to get raw flag: %w", err)
		}
		var dec *decoder.Decoder
		if raw {
			dec, err = tables.Load(args[0])
		} else {
			dec, err = augmented(cmd, args[0])
		}
		if err != nil {
			return err
		}
		dumpConfig.Fdump(cmd.OutOrStdout(), dec.Name, dec.Primary.Name, dec.Tables)
		return nil
	},
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func init() {
	dumpCmd.Flags().Bool("raw", false, "dump the tables without binding classes")
	addOptionFlags(dumpCmd)
}
