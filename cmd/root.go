package cmd

import (
	"github.com/abhisek/cybersage/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cybersage",
	Short: "Cybersecurity awareness trainer",
	Long:  "CyberSage: terminal quizzes that build everyday cybersecurity habits, one module at a time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CYBERSAGE_DB env var)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(certificatesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(llmCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
