package appointment

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
)

var (
	listStatus string
	listDate   string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:     "appointments",
	Short:   "List appointments visible to you",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListAppointmentsHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := cli.CurrentActor()
		if err != nil {
			return err
		}

		list, err := app.ListAppointmentsHandler.Handle(cmd.Context(), queries.ListAppointmentsQuery{
			Actor:  actor,
			Status: listStatus,
			Date:   listDate,
			Limit:  listLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list appointments: %w", err)
		}
		printAppointments(cmd.OutOrStdout(), list)
		return nil
	},
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List pending requests awaiting your approval (doctor)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListPendingRequestsHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := cli.CurrentActor()
		if err != nil {
			return err
		}

		list, err := app.ListPendingRequestsHandler.Handle(cmd.Context(), queries.ListPendingRequestsQuery{Actor: actor})
		if err != nil {
			return fmt.Errorf("failed to list requests: %w", err)
		}
		printAppointments(cmd.OutOrStdout(), list)
		return nil
	},
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Queue reminders for tomorrow's appointments now",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ReminderSweeper == nil {
			return cli.ErrNotInitialized
		}
		n, err := app.ReminderSweeper.Sweep(cmd.Context(), time.Now())
		if err != nil {
			return fmt.Errorf("reminder sweep failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Queued %d reminders.\n", n)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (Pending, Scheduled, ...)")
	listCmd.Flags().StringVarP(&listDate, "date", "d", "", "filter by date (YYYY-MM-DD)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "maximum rows")
}
