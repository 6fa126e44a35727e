package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List training modules and their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context(), cmd, envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		tracker := env.profile.Tracker()
		fmt.Printf("%-18s  %-20s  %-10s  %-7s  %5s  %5s  %s\n",
			"ID", "Name", "Status", "Level", "Pass", "Best", "Requires")
		fmt.Println(strings.Repeat("─", 96))

		for _, m := range env.catalog.TopologicalOrder() {
			st, err := tracker.Status(m.ID)
			if err != nil {
				return err
			}
			best := "-"
			if st.HasBest {
				best = fmt.Sprintf("%d%%", st.BestScore)
			}
			fmt.Printf("%-18s  %-20s  %-10s  %-7s  %4d%%  %5s  %s\n",
				m.ID, truncate(m.Name, 20), statusLabel(st.Completed, st.Unlocked),
				st.ActiveDifficulty.Label(), st.PassThreshold, best,
				strings.Join(m.Dependencies, ", "))
		}
		return nil
	},
}

func statusLabel(completed, unlocked bool) string {
	switch {
	case completed:
		return "completed"
	case unlocked:
		return "unlocked"
	}
	return "locked"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
