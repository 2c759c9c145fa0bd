package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"dgen/internal/decoder"
	"dgen/internal/tables"
)

var treeCmd = &cobra.Command{
	Use:   "tree [flags] TABLES",
	Short: "Print the table call graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := cmd.Flags().GetBool("rows")
		if err != nil {
			return fmt.Errorf("failed to get rows flag: %w", err)
		}
		dec, err := tables.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), buildTree(dec, rows).String())
		return nil
	},
}

func init() {
	treeCmd.Flags().Bool("rows", false, "list decoder actions under their table")
}

// buildTree renders the tables reachable from the primary table. A table
// is expanded once; later references and cycles become leaves.
func buildTree(dec *decoder.Decoder, rows bool) treeprint.Tree {
	tree := treeprint.NewWithRoot(dec.Name)
	expanded := make(map[string]bool, len(dec.Tables))
	onPath := make(map[string]bool)

	var add func(parent treeprint.Tree, t *decoder.Table)
	add = func(parent treeprint.Tree, t *decoder.Table) {
		expanded[t.Name] = true
		onPath[t.Name] = true
		defer delete(onPath, t.Name)

		branch := parent.AddMetaBranch(fmt.Sprintf("%d rows", len(t.AllRows())), t.Name)
		for _, r := range t.AllRows() {
			switch a := r.Action.(type) {
			case *decoder.DecoderMethod:
				next, ok := dec.Table(a.Table)
				switch {
				case !ok:
					branch.AddMetaNode("undefined", a.Table)
				case onPath[a.Table]:
					branch.AddMetaNode("cycle", a.Table)
				case expanded[a.Table]:
					branch.AddMetaNode("see above", a.Table)
				default:
					add(branch, next)
				}
			case *decoder.DecoderAction:
				if rows {
					branch.AddNode(r.String())
				}
			}
		}
	}

	if dec.Primary != nil {
		add(tree, dec.Primary)
	}
	for _, t := range dec.Tables {
		if !expanded[t.Name] {
			tree.AddMetaNode("unreachable", t.Name)
		}
	}
	return tree
}
