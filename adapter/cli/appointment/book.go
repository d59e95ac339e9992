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
	bookDoctor  string
	bookPatient string
	bookDate    string
	bookTime    string
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Request an appointment in an open slot",
	Long: `Request an appointment. The request stays pending until the doctor
approves it. Admins book on behalf of a patient with --patient.

Examples:
  clinicq book --doctor 3f2c... --date 2026-03-02 --time 09:15
  clinicq book --role admin --patient 9a1b... --doctor 3f2c... --date 2026-03-02 --time 09:15`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.BookAppointmentHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := cli.CurrentActor()
		if err != nil {
			return err
		}
		doctorID, err := uuid.Parse(bookDoctor)
		if err != nil {
			return fmt.Errorf("invalid doctor ID: %w", err)
		}
		var patientID uuid.UUID
		if bookPatient != "" {
			if patientID, err = uuid.Parse(bookPatient); err != nil {
				return fmt.Errorf("invalid patient ID: %w", err)
			}
		}

		appt, err := app.BookAppointmentHandler.Handle(cmd.Context(), commands.BookAppointmentCommand{
			Actor:     actor,
			PatientID: patientID,
			DoctorID:  doctorID,
			Date:      bookDate,
			Time:      bookTime,
		})
		if err != nil {
			return fmt.Errorf("failed to book appointment: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Requested:")
		printAppointment(cmd.OutOrStdout(), queries.ToAppointmentDTO(appt))
		return nil
	},
}

func init() {
	bookCmd.Flags().StringVar(&bookDoctor, "doctor", "", "doctor ID")
	bookCmd.Flags().StringVar(&bookPatient, "patient", "", "patient ID (admin only)")
	bookCmd.Flags().StringVarP(&bookDate, "date", "d", "", "date (YYYY-MM-DD)")
	bookCmd.Flags().StringVarP(&bookTime, "time", "t", "", "slot start (HH:mm)")
	_ = bookCmd.MarkFlagRequired("doctor")
	_ = bookCmd.MarkFlagRequired("date")
	_ = bookCmd.MarkFlagRequired("time")
}
