package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the generator knows",
	Long: `Status reports the loaded knowledge base and pattern library: the
available actions, block categories and counts, output formats and the
concepts bw explain can teach.`,
	Example: `  bw status
  bw status --knowledge ./my-blocks.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newCompiler().Status()
		w := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(w, st)
		}

		source := "built-in"
		if knowledgePath != "" {
			source = knowledgePath
		}
		fmt.Fprintf(w, "Knowledge base:     %s\n", source)
		fmt.Fprintf(w, "Blocks:             %d\n", st.Blocks)
		fmt.Fprintf(w, "Patterns:           %d\n", st.Patterns)
		fmt.Fprintf(w, "Categories:         %s\n", strings.Join(st.Categories, ", "))
		fmt.Fprintf(w, "Formats:            %s\n", strings.Join(st.Formats, ", "))
		fmt.Fprintf(w, "Concepts:           %s\n", strings.Join(st.Concepts, ", "))
		fmt.Fprintf(w, "Templates:          %s\n", strings.Join(st.Templates, ", "))
		fmt.Fprintf(w, "Actions (%d):\n", len(st.Actions))
		for _, a := range st.Actions {
			fmt.Fprintf(w, "  %s\n", a)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
