package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/scbrown/blockwright/internal/model"
	"github.com/scbrown/blockwright/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show summary statistics about past requests",
	Long: `Display a summary of the generation history: how many requests were
made and understood, the split by level, date range, recent activity, the
most requested actions and the most common requests that were not
understood.`,
	Example: `  bw stats
  bw stats --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		st, err := s.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}

		w := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(w, st)
		}
		printStatsText(w, st)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func printStatsText(w io.Writer, st store.Stats) {
	color := isTTY(w)

	fmt.Fprintf(w, "Total requests:     %d\n", st.Total)
	fmt.Fprintf(w, "Understood:         %d\n", st.Understood)
	fmt.Fprintf(w, "Not understood:     %d\n", st.Unrecognized)

	if st.Total == 0 {
		return
	}

	fmt.Fprintln(w)

	// Date range.
	fmt.Fprintf(w, "Date range:         %s to %s\n",
		st.Earliest.Format("2006-01-02"), st.Latest.Format("2006-01-02"))

	// Recent activity.
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Last 24h:           %d\n", st.Last24h)
	fmt.Fprintf(w, "Last 7d:            %d\n", st.Last7d)
	fmt.Fprintf(w, "Last 30d:           %d\n", st.Last30d)

	if st.Understood > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, bold("By level:", color))
		for _, d := range []model.Difficulty{model.Beginner, model.Intermediate, model.Advanced} {
			fmt.Fprintf(w, "  %-20s %d\n", d, st.ByDifficulty[string(d)])
		}
	}

	if len(st.TopActions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, bold("Top actions:", color))
		for _, a := range st.TopActions {
			fmt.Fprintf(w, "  %-20s %d\n", a.Name, a.Count)
		}
	}

	if len(st.TopUnrecognized) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, bold("Not understood:", color))
		for _, u := range st.TopUnrecognized {
			fmt.Fprintf(w, "  %-20s %d\n", truncate(u.Name, 40), u.Count)
		}
	}
}
