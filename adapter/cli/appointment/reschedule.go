package appointment

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
)

var (
	rescheduleDate string
	rescheduleTime string
)

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule <appointment-id>",
	Short: "Move an appointment to another slot",
	Long: `Move an appointment. Omitted flags keep the current date or time.

Examples:
  clinicq reschedule 7d4e... --time 10:30
  clinicq reschedule 7d4e... --date 2026-03-03 --time 09:00`,
	Aliases: []string{"move"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RescheduleAppointmentHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := cli.CurrentActor()
		if err != nil {
			return err
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid appointment ID: %w", err)
		}
		if rescheduleDate == "" && rescheduleTime == "" {
			return fmt.Errorf("pass --date, --time or both")
		}

		appt, err := app.RescheduleAppointmentHandler.Handle(cmd.Context(), commands.RescheduleAppointmentCommand{
			Actor:         actor,
			AppointmentID: id,
			Date:          rescheduleDate,
			Time:          rescheduleTime,
		})
		if err != nil {
			return fmt.Errorf("failed to reschedule appointment: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Rescheduled:")
		printAppointment(cmd.OutOrStdout(), queries.ToAppointmentDTO(appt))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <appointment-id>",
	Short: "Show reschedule attempts for an appointment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListRescheduleAttemptsHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := cli.CurrentActor()
		if err != nil {
			return err
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid appointment ID: %w", err)
		}

		attempts, err := app.ListRescheduleAttemptsHandler.Handle(cmd.Context(), queries.ListRescheduleAttemptsQuery{
			Actor:         actor,
			AppointmentID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to list reschedule attempts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(attempts) == 0 {
			fmt.Fprintln(out, "No reschedule attempts.")
			return nil
		}
		for _, a := range attempts {
			status := "ok"
			if !a.Success {
				status = "rejected: " + a.FailureReason
			}
			fmt.Fprintf(out, "%s  %s -> %s  %s\n", a.AttemptedAt.Format("2006-01-02 15:04"), a.From, a.To, status)
		}
		return nil
	},
}

func init() {
	rescheduleCmd.Flags().StringVarP(&rescheduleDate, "date", "d", "", "new date (YYYY-MM-DD)")
	rescheduleCmd.Flags().StringVarP(&rescheduleTime, "time", "t", "", "new slot start (HH:mm)")
}
