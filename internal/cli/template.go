package cli

import (
	"strings"

	"github.com/scbrown/blockwright/internal/compile"
	"github.com/scbrown/blockwright/internal/model"
	"github.com/spf13/cobra"
)

var (
	tmplLevel    string
	tmplFormat   string
	tmplOut      string
	tmplNoRecord bool
)

var templateCmd = &cobra.Command{
	Use:   "template <game>",
	Short: "Build a starter program for a small game",
	Long: `Template builds a ready-made starter program for a game type. Higher
levels add more blocks to the same game.

Games:  ` + strings.Join(compile.TemplateNames(), ", ") + `
Levels: beginner (default), intermediate, advanced

The output, history and --out handling are the same as bw generate.`,
	Example: `  bw template maze
  bw template platformer --level advanced --format pictoblox --out platformer.pbl`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := tmplFormat
		if format == "" {
			format = defaultFormat
		}
		level := model.Difficulty(strings.ToLower(tmplLevel))
		res, err := newCompiler().Template(args[0], level, format)
		if err != nil {
			return err
		}
		return emitResult(cmd.OutOrStdout(), res, tmplOut, tmplNoRecord)
	},
}

func init() {
	templateCmd.Flags().StringVar(&tmplLevel, "level", string(model.Beginner), "template complexity: beginner, intermediate or advanced")
	templateCmd.Flags().StringVarP(&tmplFormat, "format", "f", "", "output format: text, pictoblox or blocks")
	templateCmd.Flags().StringVarP(&tmplOut, "out", "o", "", "write the program to this file or directory")
	templateCmd.Flags().BoolVar(&tmplNoRecord, "no-record", false, "do not save this request to the history")
	rootCmd.AddCommand(templateCmd)
}
