package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset progress and points",
	Long:  "Reset module progress, certificates and points to their initial state. The learner name and event history are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Print("This erases all progress and points. Continue? [y/N] ")
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		env, err := openEnv(cmd.Context(), cmd, envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.profile.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		env.log.Info("learner progress reset")
		fmt.Println("Progress reset.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
