package cmd

import (
	"fmt"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/screen"
	sessionscreen "github.com/abhisek/cybersage/internal/screens/session"
	"github.com/abhisek/cybersage/internal/training"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [module-id]",
	Short: "Start a quiz right away",
	Long: "Start training on a module, skipping the home screen. Without a module " +
		"a cross-module practice round is played at --difficulty.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		diffFlag, _ := cmd.Flags().GetString("difficulty")
		diff, err := catalog.ParseDifficulty(diffFlag)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			return runApp(cmd, func(orch *training.Orchestrator) screen.Screen {
				return sessionscreen.NewPractice(orch, diff)
			})
		}

		id := args[0]
		if !catalog.Default().Has(id) {
			return fmt.Errorf("unknown module %q (see `cybersage modules`)", id)
		}
		return runApp(cmd, func(orch *training.Orchestrator) screen.Screen {
			return sessionscreen.NewModule(orch, id)
		})
	},
}

func init() {
	playCmd.Flags().StringP("difficulty", "d", string(catalog.Easy), "Practice difficulty (easy, medium or hard)")
}
