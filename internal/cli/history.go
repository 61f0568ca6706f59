package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/scbrown/blockwright/internal/model"
	"github.com/scbrown/blockwright/internal/store"
	"github.com/spf13/cobra"
)

var (
	historySince        string
	historyDifficulty   string
	historyLimit        int
	historyUnrecognized bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past generation requests",
	Long: `History displays a table of past requests, newest first. Requests that
were not understood show "-" for their block count; use --unrecognized to see
only those, which is a good way to find phrasings worth supporting.`,
	Example: `  bw history
  bw history --since 7d
  bw history --difficulty advanced --limit 5
  bw history --unrecognized --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.ListOpts{Limit: historyLimit}
		if historySince != "" {
			d, err := parseDuration(historySince)
			if err != nil {
				return fmt.Errorf("invalid --since value %q: %w", historySince, err)
			}
			opts.Since = time.Now().Add(-d)
		}
		if historyDifficulty != "" {
			opts.Difficulty = model.Difficulty(strings.ToLower(historyDifficulty))
			if !opts.Difficulty.Valid() {
				return fmt.Errorf("invalid --difficulty value %q: use beginner, intermediate or advanced", historyDifficulty)
			}
		}
		if historyUnrecognized {
			understood := false
			opts.Understood = &understood
		}

		s, err := openStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		gens, err := s.ListGenerations(context.Background(), opts)
		if err != nil {
			return fmt.Errorf("list generations: %w", err)
		}

		w := cmd.OutOrStdout()
		if jsonOutput {
			if gens == nil {
				gens = []model.Generation{}
			}
			return printJSON(w, gens)
		}
		if len(gens) == 0 {
			fmt.Fprintln(w, "No generations found.")
			return nil
		}

		tbl := NewTable(w, "TIME", "FORMAT", "LEVEL", "BLOCKS", "INPUT")
		for _, g := range gens {
			level, blocks := string(g.Difficulty), strconv.Itoa(g.BlockCount)
			if !g.Understood {
				level, blocks = "unrecognized", "-"
			}
			tbl.Row(
				g.CreatedAt.Local().Format(time.DateTime),
				g.Format,
				level,
				blocks,
				truncate(g.Input, max(tbl.Width()-50, 20)),
			)
		}
		return tbl.Flush()
	},
}

func init() {
	historyCmd.Flags().StringVar(&historySince, "since", "", "show requests within this duration (e.g., 30m, 24h, 7d)")
	historyCmd.Flags().StringVar(&historyDifficulty, "difficulty", "", "filter by level: beginner, intermediate or advanced")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum number of results")
	historyCmd.Flags().BoolVar(&historyUnrecognized, "unrecognized", false, "only show requests that were not understood")
	rootCmd.AddCommand(historyCmd)
}

// parseDuration parses a duration string that supports d (days), h (hours), m (minutes), s (seconds).
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	// Handle "d" suffix for days, which time.ParseDuration doesn't support.
	if strings.HasSuffix(s, "d") {
		numStr := s[:len(s)-1]
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", numStr)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
