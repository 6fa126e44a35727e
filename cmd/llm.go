package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/cybersage/internal/store"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		env, err := openEnv(cmd.Context(), cmd, envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		events, err := env.store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		// Header.
		fmt.Printf("%-5s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 100))

		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
			if e.ErrorMessage != "" {
				fmt.Printf("       %s\n", truncate(e.ErrorMessage, 92))
			}
		}
		return nil
	},
}

// usage aggregates LLM events for one purpose.
type usage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd.Context(), cmd, envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		events, err := env.store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		byPurpose := make(map[string]*usage)
		for _, e := range events {
			u, ok := byPurpose[e.Purpose]
			if !ok {
				u = &usage{Purpose: e.Purpose}
				byPurpose[e.Purpose] = u
			}
			u.Calls++
			if !e.Success {
				u.Failures++
			}
			u.InputTokens += e.InputTokens
			u.OutputTokens += e.OutputTokens
			u.LatencyMs += e.LatencyMs
		}

		stats := make([]*usage, 0, len(byPurpose))
		for _, u := range byPurpose {
			stats = append(stats, u)
		}
		sort.Slice(stats, func(i, j int) bool { return stats[i].Purpose < stats[j].Purpose })

		fmt.Println("Usage by Purpose")
		fmt.Println(strings.Repeat("─", 80))
		fmt.Printf("%-16s  %6s  %6s  %10s  %10s  %10s  %8s\n",
			"Purpose", "Calls", "Failed", "Input", "Output", "Total", "Avg Ms")
		fmt.Println(strings.Repeat("─", 80))

		var totalCalls, totalIn, totalOut int
		for _, u := range stats {
			fmt.Printf("%-16s  %6d  %6d  %10d  %10d  %10d  %8d\n",
				u.Purpose, u.Calls, u.Failures, u.InputTokens, u.OutputTokens,
				u.InputTokens+u.OutputTokens, u.LatencyMs/int64(u.Calls))
			totalCalls += u.Calls
			totalIn += u.InputTokens
			totalOut += u.OutputTokens
		}

		fmt.Println(strings.Repeat("─", 80))
		fmt.Printf("%-16s  %6d  %6s  %10d  %10d  %10d\n",
			"TOTAL", totalCalls, "", totalIn, totalOut, totalIn+totalOut)
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. question-gen, hint)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
