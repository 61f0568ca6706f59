package cli

import (
	"fmt"
	"strings"

	"github.com/scbrown/blockwright/internal/concept"
	"github.com/scbrown/blockwright/internal/model"
	"github.com/spf13/cobra"
)

var explainLevel string

var explainCmd = &cobra.Command{
	Use:   "explain <concept>",
	Short: "Explain a programming idea at a chosen level",
	Long: `Explain describes one of the ideas behind block programming.

Concepts: ` + strings.Join(concept.Names(), ", ") + `
Levels:   beginner (default), intermediate, advanced`,
	Example: `  bw explain loops
  bw explain events --level advanced`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := concept.Explain(args[0], model.Difficulty(strings.ToLower(explainLevel)))
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(w, exp)
		}

		color := isTTY(w)
		fmt.Fprintf(w, "%s (%s)\n\n", bold(strings.ToUpper(exp.Concept[:1])+exp.Concept[1:], color), exp.Level)
		fmt.Fprintln(w, exp.Text)
		if len(exp.Examples) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, bold("Examples:", color))
			for _, ex := range exp.Examples {
				fmt.Fprintf(w, "  - %s\n", ex)
			}
		}
		if exp.TryNext != "" {
			fmt.Fprintf(w, "\n%s\n", exp.TryNext)
		}
		return nil
	},
}

func init() {
	explainCmd.Flags().StringVar(&explainLevel, "level", string(model.Beginner), "explanation level: beginner, intermediate or advanced")
	rootCmd.AddCommand(explainCmd)
}
