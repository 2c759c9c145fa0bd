package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dgen/internal/decoder"
)

var matchCmd = &cobra.Command{
	Use:   "match [flags] TABLES WORD...",
	Short: "Show how instruction words dispatch through the tables",
	Long: `Dispatch each instruction word from the primary table and print the
tables visited and the decoder action selected. Words are hex (0x), binary
(0b) or decimal.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().String("kind", "", "print the class bound for this kind (baseline|actual) instead of the action")
	addOptionFlags(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	kindValue, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}
	dec, err := augmented(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, s := range args[1:] {
		line, err := matchWord(dec, s, kindValue)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

// matchWord formats the resolution of one word. An empty kind prints the
// whole action.
func matchWord(dec *decoder.Decoder, word, kind string) (string, error) {
	inst, err := decoder.ParseWord(word)
	if err != nil {
		return "", err
	}
	res, err := dec.Resolve(inst)
	if err != nil {
		return "", err
	}
	if kind == "" || res.Action == nil {
		return fmt.Sprintf("0x%08X: %s", inst, res), nil
	}
	k, err := decoder.ParseKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0x%08X: %s", inst, res.Action.ClassFor(k)), nil
}
