package appointment

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	scheduleQueries "github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
)

// Commands returns the booking and queue commands, registered at the top level.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		slotsCmd,
		queueCmd,
		bookCmd,
		approveCmd,
		declineCmd,
		cancelCmd,
		completeCmd,
		noShowCmd,
		rescheduleCmd,
		listCmd,
		requestsCmd,
		historyCmd,
		remindCmd,
	}
}

func printAppointment(out io.Writer, a scheduleQueries.AppointmentDTO) {
	fmt.Fprintf(out, "%s  %s %s  %-9s  doctor=%s patient=%s\n",
		a.ID, a.Date, a.Time, a.Status, a.DoctorID, a.PatientID)
}

func printAppointments(out io.Writer, list []scheduleQueries.AppointmentDTO) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No appointments.")
		return
	}
	for _, a := range list {
		printAppointment(out, a)
	}
}
