package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database and cache connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Container == nil {
			return ErrNotInitialized
		}
		report := app.Container.Health.Check(cmd.Context())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "status: %s\n", report.Status)
		for name, check := range report.Checks {
			fmt.Fprintf(out, "  %-10s %s\n", name, check.Status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
