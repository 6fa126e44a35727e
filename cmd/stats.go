package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/ledger"
	"github.com/abhisek/cybersage/internal/progress"
	"github.com/abhisek/cybersage/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := openEnv(ctx, cmd, envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		counts, err := env.store.EventRepo().CountByKind(ctx)
		if err != nil {
			return fmt.Errorf("count events: %w", err)
		}
		return writeStats(cmd.OutOrStdout(), statsReport{
			name:    env.profile.Name(),
			catalog: env.catalog,
			tracker: env.profile.Tracker(),
			ledger:  env.profile.Ledger().Stats(),
			events:  counts,
		})
	},
}

type statsReport struct {
	name    string
	catalog *catalog.Catalog
	tracker *progress.Tracker
	ledger  ledger.Stats
	events  map[store.EventKind]int
}

// completionPercent rounds to the nearest whole percent.
func completionPercent(done, total int) int {
	if total == 0 {
		return 0
	}
	return (done*100 + total/2) / total
}

func writeStats(w io.Writer, r statsReport) error {
	ls := r.ledger
	total := r.catalog.Len()
	done := r.tracker.CompletedCount()

	if r.name != "" {
		fmt.Fprintf(w, "Learner:     %s\n", r.name)
	}
	fmt.Fprintf(w, "Points:      %d\n", ls.Points)
	fmt.Fprintf(w, "Completed:   %d/%d modules (%d%%)\n", done, total, completionPercent(done, total))
	fmt.Fprintf(w, "Answers:     %d correct, %d wrong\n", ls.TotalCorrect, ls.TotalWrong)
	fmt.Fprintf(w, "Hints used:  %d\n", ls.HintsUsed)
	fmt.Fprintf(w, "Streak:      %d (best %d)\n", ls.Streak, ls.BestStreak)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-20s  %-7s  %8s  %9s  %7s  %6s\n",
		"Module", "Level", "Attempts", "Completed", "Perfect", "Streak")
	fmt.Fprintln(w, strings.Repeat("─", 68))
	for _, m := range r.catalog.TopologicalOrder() {
		records, err := r.tracker.Records(m.ID)
		if err != nil {
			return err
		}
		for _, d := range catalog.AllDifficulties() {
			rec, ok := records[d]
			if !ok || rec.Attempts == 0 {
				continue
			}
			fmt.Fprintf(w, "%-20s  %-7s  %8d  %9d  %7d  %6d\n",
				truncate(m.Name, 20), d.Label(), rec.Attempts, rec.Completions, rec.PerfectRuns, rec.BestStreak)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Events:      %d sessions, %d answers, %d hints, %d progress changes, %d LLM calls\n",
		r.events[store.KindSession], r.events[store.KindAnswer], r.events[store.KindHint],
		r.events[store.KindModule], r.events[store.KindLLMRequest])
	return nil
}
