package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
)

type transitionFunc func(context.Context, commands.TransitionCommand) (*domain.Appointment, error)

// newTransitionCmd builds a command that moves one appointment through
// its lifecycle. pick selects the handler from the running app.
func newTransitionCmd(use, short, verb string, pick func(*cli.App) transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <appointment-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := cli.GetApp()
			if app == nil {
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

			appt, err := pick(app)(cmd.Context(), commands.TransitionCommand{Actor: actor, AppointmentID: id})
			if err != nil {
				return fmt.Errorf("failed to %s appointment: %w", verb, err)
			}
			printAppointment(cmd.OutOrStdout(), queries.ToAppointmentDTO(appt))
			return nil
		},
	}
}

var (
	approveCmd = newTransitionCmd("approve", "Approve a pending request (doctor)", "approve",
		func(a *cli.App) transitionFunc { return a.ApproveAppointmentHandler.Handle })
	declineCmd = newTransitionCmd("decline", "Decline a pending request (doctor)", "decline",
		func(a *cli.App) transitionFunc { return a.DeclineAppointmentHandler.Handle })
	cancelCmd = newTransitionCmd("cancel", "Cancel an appointment", "cancel",
		func(a *cli.App) transitionFunc { return a.CancelAppointmentHandler.Handle })
	completeCmd = newTransitionCmd("complete", "Mark a scheduled appointment as seen (doctor)", "complete",
		func(a *cli.App) transitionFunc { return a.CompleteAppointmentHandler.Handle })
	noShowCmd = newTransitionCmd("no-show", "Mark a scheduled appointment as missed (doctor)", "mark",
		func(a *cli.App) transitionFunc { return a.MarkNoShowHandler.Handle })
)
