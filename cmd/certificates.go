package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var certificatesCmd = &cobra.Command{
	Use:   "certificates",
	Short: "List earned certificates",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := openEnv(cmd.Context(), cmd, envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		certs := env.profile.Tracker().Certificates()
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(certs)
		}

		if len(certs) == 0 {
			fmt.Println("No certificates yet. Complete a module to earn one.")
			return nil
		}
		for _, c := range certs {
			fmt.Printf("%-20s  %4d%%  %-20s  %s  %s\n",
				truncate(c.ModuleName, 20), c.Score, c.CredentialID,
				c.IssuedAt.Local().Format("2006-01-02"), c.Recipient)
		}
		return nil
	},
}

func init() {
	certificatesCmd.Flags().Bool("json", false, "Print certificates as JSON")
}
