package appointment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
)

var (
	slotsDoctor string
	slotsDate   string
	queueDoctor string
	queueDate   string
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List a doctor's open slots for a date",
	Long: `List the slots still open for booking on one date.

Examples:
  clinicq slots --doctor 3f2c... --date 2026-03-02`,
	Aliases: []string{"available"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ResolveAvailableSlotsHandler == nil {
			return cli.ErrNotInitialized
		}
		doctorID, err := uuid.Parse(slotsDoctor)
		if err != nil {
			return fmt.Errorf("invalid doctor ID: %w", err)
		}

		result, err := app.ResolveAvailableSlotsHandler.Handle(cmd.Context(), queries.ResolveAvailableSlotsQuery{
			DoctorID: doctorID,
			Date:     slotsDate,
		})
		if err != nil {
			return fmt.Errorf("failed to resolve slots: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Slots) == 0 {
			fmt.Fprintln(out, "No open slots.")
			return nil
		}
		fmt.Fprintf(out, "%d open slots (%d min each)\n", len(result.Slots), result.DurationMinutes)
		fmt.Fprintln(out, strings.Join(result.Slots, "  "))
		return nil
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show a doctor's queue with estimated wait times",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ComputeQueueHandler == nil {
			return cli.ErrNotInitialized
		}
		doctorID, err := uuid.Parse(queueDoctor)
		if err != nil {
			return fmt.Errorf("invalid doctor ID: %w", err)
		}

		q, err := app.ComputeQueueHandler.Handle(cmd.Context(), queries.ComputeQueueQuery{
			DoctorID: doctorID,
			Date:     queueDate,
		})
		if err != nil {
			return fmt.Errorf("failed to compute queue: %w", err)
		}

		out := cmd.OutOrStdout()
		if q.Count == 0 {
			fmt.Fprintln(out, "Queue is empty.")
			return nil
		}
		fmt.Fprintf(out, "%d in queue (%d min per visit)\n", q.Count, q.DurationMinutes)
		for _, e := range q.Entries {
			fmt.Fprintf(out, "  #%d  %s  patient=%s  wait ~%d min\n",
				e.Position, e.Time, e.PatientID, e.ETAMinutes)
		}
		return nil
	},
}

func init() {
	slotsCmd.Flags().StringVar(&slotsDoctor, "doctor", "", "doctor ID")
	slotsCmd.Flags().StringVarP(&slotsDate, "date", "d", "", "date (YYYY-MM-DD)")
	_ = slotsCmd.MarkFlagRequired("doctor")
	_ = slotsCmd.MarkFlagRequired("date")

	queueCmd.Flags().StringVar(&queueDoctor, "doctor", "", "doctor ID")
	queueCmd.Flags().StringVarP(&queueDate, "date", "d", "", "date (YYYY-MM-DD)")
	_ = queueCmd.MarkFlagRequired("doctor")
	_ = queueCmd.MarkFlagRequired("date")
}
