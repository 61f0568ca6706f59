package cli

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/scbrown/blockwright/internal/analyze"
	"github.com/scbrown/blockwright/internal/model"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the actions the generator can build",
	Long: `List every action name that maps to at least one block in the knowledge
base, plus the names of the patterns in the pattern library.`,
	Example: `  bw actions
  bw actions --knowledge ./my-blocks.yaml --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		actions := newCompiler().Generator().AvailableActions()
		w := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(w, actions)
		}
		for _, a := range actions {
			fmt.Fprintln(w, a)
		}
		return nil
	},
}

var blockCmd = &cobra.Command{
	Use:   "block <id>",
	Short: "Show a block definition from the knowledge base",
	Example: `  bw block motion_movesteps
  bw block looks_sayforsecs --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gen := newCompiler().Generator()
		def, ok := gen.BlockInfo(args[0])
		if !ok {
			msg := fmt.Sprintf("unknown block %q", args[0])
			if sugg := analyze.Suggest(args[0], gen.Knowledge().SortedIDs()); len(sugg) > 0 {
				msg += "; did you mean " + sugg[0].Name + "?"
			}
			return fmt.Errorf("%s", msg)
		}
		w := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(w, def)
		}
		printDefinition(cmd, def)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(blockCmd)
}

func printDefinition(cmd *cobra.Command, def model.Definition) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "ID:          %s\n", def.ID)
	fmt.Fprintf(w, "Category:    %s\n", def.Category)
	fmt.Fprintf(w, "Description: %s\n", def.Description)
	if def.KidExplanation != "" {
		fmt.Fprintf(w, "Explanation: %s\n", def.KidExplanation)
	}
	if def.IsHat {
		fmt.Fprintln(w, "Hat block:   yes")
	}
	if len(def.Inputs) > 0 {
		fmt.Fprintln(w)
		tbl := NewTable(w, "INPUT", "DEFAULT")
		for _, in := range def.Inputs {
			val := "-"
			if def.HasDefault(in) {
				val = def.Default(in).String()
			}
			tbl.Row(in, val)
		}
		tbl.Flush()
	}

	var extra []string
	for k := range def.Defaults {
		if !slices.Contains(def.Inputs, k) {
			extra = append(extra, k+"="+def.Defaults[k].String())
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		fmt.Fprintf(w, "\nOther defaults: %s\n", strings.Join(extra, " "))
	}
}
