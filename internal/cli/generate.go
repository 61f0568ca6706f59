package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/scbrown/blockwright/internal/compile"
	"github.com/spf13/cobra"
)

var (
	genFormat   string
	genOut      string
	genNoRecord bool
)

var generateCmd = &cobra.Command{
	Use:     "generate <text...>",
	Aliases: []string{"gen"},
	Short:   "Build a block program from a sentence",
	Long: `Generate parses the sentence, picks the matching blocks and prints the
program in the chosen format.

Formats:
  text       Numbered, human-readable block listing (default)
  pictoblox  A PictoBlox project document (.pbl)
  blocks     A versioned JSON block list that can be re-read later

Requests that are not understood print example phrasings and the closest
known words instead of a program. Every request is saved to the history
unless --no-record is given or record_history is off.`,
	Example: `  bw generate make the cat move right 10 steps
  bw generate when flag clicked say hello and spin --format blocks
  bw generate when space key pressed jump --format pictoblox --out jump.pbl
  bw generate jump --out projects/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		format := genFormat
		if format == "" {
			format = defaultFormat
		}

		res, err := newCompiler().Compile(text, format)
		if err != nil {
			return err
		}
		return emitResult(cmd.OutOrStdout(), res, genOut, genNoRecord)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&genFormat, "format", "f", "", "output format: text, pictoblox or blocks")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "write the program to this file or directory")
	generateCmd.Flags().BoolVar(&genNoRecord, "no-record", false, "do not save this request to the history")
	rootCmd.AddCommand(generateCmd)
}

// emitResult records res in the history and prints it, or writes it to out
// when out is set.
func emitResult(w io.Writer, res *compile.Result, out string, noRecord bool) error {
	if recordHistory && !noRecord {
		record(context.Background(), res)
	}
	if jsonOutput {
		return printJSON(w, res)
	}
	if !res.Understood {
		printNotUnderstood(w, res)
		return nil
	}
	if out != "" {
		path, err := writeOutput(out, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s (%s)\n", path, res.Summary())
		return nil
	}
	fmt.Fprintln(w, res.Content)
	return nil
}

// writeOutput writes the rendered content to out. A directory (existing, or
// named with a trailing slash) receives the format's default file name.
func writeOutput(out string, res *compile.Result) (string, error) {
	path := out
	if strings.HasSuffix(out, "/") || strings.HasSuffix(out, string(os.PathSeparator)) {
		path = filepath.Join(out, res.Filename)
	} else if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		path = filepath.Join(out, res.Filename)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(res.Content+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func printNotUnderstood(w io.Writer, res *compile.Result) {
	color := isTTY(w)
	fmt.Fprintln(w, res.Message)

	if len(res.Suggestions) > 0 {
		names := make([]string, len(res.Suggestions))
		for i, s := range res.Suggestions {
			names[i] = s.Name
		}
		fmt.Fprintf(w, "\nDid you mean: %s?\n", strings.Join(names, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("Try something like:", color))
	for _, ex := range res.Examples {
		fmt.Fprintf(w, "  %s\n", ex)
	}

	if len(res.Actions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, bold("Known actions:", color))
		fmt.Fprintf(w, "  %s\n", strings.Join(res.Actions, ", "))
	}
}
