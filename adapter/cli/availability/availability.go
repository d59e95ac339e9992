package availability

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	"github.com/felixgeelhaar/clinicq/internal/availability/application/commands"
	"github.com/felixgeelhaar/clinicq/internal/availability/application/queries"
	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
)

// Cmd is the availability command group
var Cmd = &cobra.Command{
	Use:   "availability",
	Short: "Manage a doctor's weekly availability",
}

var (
	setDays     []string
	setDuration int
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Update your weekly template (doctor)",
	Long: `Update the acting doctor's weekly template. Each --day flag is
Weekday=HH:mm-HH:mm[,HH:mm-HH:mm...]; when any --day is given the week is
replaced. Omit --day to change only the slot length, or --slot to keep it.

Examples:
  clinicq availability set --day Monday=09:00-12:00,14:00-17:00 --day Friday=09:00-13:00 --slot 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SetAvailabilityHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := cli.CurrentActor()
		if err != nil {
			return err
		}
		if len(setDays) == 0 && setDuration <= 0 {
			return fmt.Errorf("pass --day, --slot or both")
		}
		days, err := parseDays(setDays)
		if err != nil {
			return err
		}

		result, err := app.SetAvailabilityHandler.Handle(cmd.Context(), commands.SetAvailabilityCommand{
			Actor:               actor,
			Days:                days,
			SlotDurationMinutes: setDuration,
		})
		if err != nil {
			return fmt.Errorf("failed to set availability: %w", err)
		}
		printTemplate(cmd, result.Days, result.SlotDurationMinutes)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [doctor-id]",
	Short: "Show a doctor's weekly template",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetAvailabilityHandler == nil {
			return cli.ErrNotInitialized
		}
		var doctorID uuid.UUID
		if len(args) == 1 {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid doctor ID: %w", err)
			}
			doctorID = id
		} else {
			actor, err := cli.CurrentActor()
			if err != nil {
				return err
			}
			doctorID = actor.ID
		}

		result, err := app.GetAvailabilityHandler.Handle(cmd.Context(), queries.GetAvailabilityQuery{DoctorID: doctorID})
		if err != nil {
			return fmt.Errorf("failed to load availability: %w", err)
		}
		if !result.Configured {
			fmt.Fprintln(cmd.OutOrStdout(), "No availability configured.")
			return nil
		}
		printTemplate(cmd, result.Days, result.SlotDurationMinutes)
		return nil
	},
}

func init() {
	setCmd.Flags().StringArrayVar(&setDays, "day", nil, "Weekday=HH:mm-HH:mm[,...] (repeatable)")
	setCmd.Flags().IntVar(&setDuration, "slot", 0, "slot length in minutes (kept when omitted; 15 for a new template)")

	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(showCmd)
}

// parseDays turns "Monday=09:00-12:00,14:00-17:00" flags into template
// ranges. No flags yields nil, which keeps the stored week. Clock values
// are validated by the domain, not here.
func parseDays(flags []string) (map[string][]domain.Range, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	days := make(map[string][]domain.Range, len(flags))
	for _, f := range flags {
		day, spec, ok := strings.Cut(f, "=")
		if !ok || day == "" || spec == "" {
			return nil, fmt.Errorf("invalid --day %q, want Weekday=HH:mm-HH:mm", f)
		}
		for _, part := range strings.Split(spec, ",") {
			start, end, ok := strings.Cut(strings.TrimSpace(part), "-")
			if !ok {
				return nil, fmt.Errorf("invalid range %q in --day %s", part, day)
			}
			days[day] = append(days[day], domain.Range{Start: start, End: end})
		}
	}
	return days, nil
}

func printTemplate(cmd *cobra.Command, days map[string][]domain.Range, duration int) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Slot length: %d min\n", duration)

	names := make([]string, 0, len(days))
	for name := range days {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ranges := make([]string, 0, len(days[name]))
		for _, r := range days[name] {
			ranges = append(ranges, r.Start+"-"+r.End)
		}
		fmt.Fprintf(out, "  %-9s %s\n", name, strings.Join(ranges, ", "))
	}
}
