package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scbrown/blockwright/internal/model"
	"github.com/scbrown/blockwright/internal/nlparse"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <text...>",
	Short: "Show the intents recognized in a sentence",
	Long: `Parse splits the sentence on "and", "then" and "and then" and shows the
action, trigger, parameters and modifiers found in each part. Parts with no
recognizable action are dropped. Nothing is generated or recorded.`,
	Example: `  bw parse move left 5 steps and then jump
  bw parse when space key pressed spin --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		intents := nlparse.Parse(strings.Join(args, " "))
		w := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(w, intents)
		}
		if len(intents) == 0 {
			fmt.Fprintln(w, "No intents recognized.")
			fmt.Fprintf(w, "Sentences need one of: %s\n", strings.Join(nlparse.Actions(), ", "))
			return nil
		}
		tbl := NewTable(w, "#", "ACTION", "TRIGGER", "PARAMETERS", "MODIFIERS")
		for i, in := range intents {
			tbl.Row(
				fmt.Sprintf("%d", i+1),
				in.Action,
				orDash(string(in.Trigger)),
				orDash(formatParams(in.Parameters)),
				orDash(strings.Join(in.Modifiers, ",")),
			)
		}
		return tbl.Flush()
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

// formatParams renders parameters as sorted KEY=value pairs.
func formatParams(params map[string]model.Value) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k].String()
	}
	return strings.Join(parts, " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
