package availability

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	"github.com/felixgeelhaar/clinicq/internal/availability/application/commands"
	"github.com/felixgeelhaar/clinicq/internal/availability/application/queries"
)

// BlocksCmd is the blocked-time command group
var BlocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Block out time on a specific date (doctor)",
}

var (
	blockDate   string
	blockStart  string
	blockEnd    string
	blockReason string
	listDate    string
)

var addBlockCmd = &cobra.Command{
	Use:   "add",
	Short: "Block [start, end) on a date",
	Long: `Block time so its slots are no longer offered.

Examples:
  clinicq blocks add --date 2026-03-02 --start 12:00 --end 13:00 --reason lunch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AddBlockHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := cli.CurrentActor()
		if err != nil {
			return err
		}

		result, err := app.AddBlockHandler.Handle(cmd.Context(), commands.AddBlockCommand{
			Actor:  actor,
			Date:   blockDate,
			Start:  blockStart,
			End:    blockEnd,
			Reason: blockReason,
		})
		if err != nil {
			return fmt.Errorf("failed to add block: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Blocked %s %s-%s (%s)\n", blockDate, blockStart, blockEnd, result.BlockID)
		return nil
	},
}

var listBlocksCmd = &cobra.Command{
	Use:     "list",
	Short:   "List your blocks",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListBlocksHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := cli.CurrentActor()
		if err != nil {
			return err
		}

		blocks, err := app.ListBlocksHandler.Handle(cmd.Context(), queries.ListBlocksQuery{Actor: actor, Date: listDate})
		if err != nil {
			return fmt.Errorf("failed to list blocks: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(blocks) == 0 {
			fmt.Fprintln(out, "No blocks.")
			return nil
		}
		for _, b := range blocks {
			fmt.Fprintf(out, "%s  %s %s-%s  %s\n", b.ID, b.Date, b.Start, b.End, b.Reason)
		}
		return nil
	},
}

var removeBlockCmd = &cobra.Command{
	Use:     "remove <block-id>",
	Short:   "Remove a block",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RemoveBlockHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := cli.CurrentActor()
		if err != nil {
			return err
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid block ID: %w", err)
		}

		if err := app.RemoveBlockHandler.Handle(cmd.Context(), commands.RemoveBlockCommand{Actor: actor, BlockID: id}); err != nil {
			return fmt.Errorf("failed to remove block: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Block removed.")
		return nil
	},
}

func init() {
	addBlockCmd.Flags().StringVarP(&blockDate, "date", "d", "", "date (YYYY-MM-DD)")
	addBlockCmd.Flags().StringVar(&blockStart, "start", "", "start (HH:mm)")
	addBlockCmd.Flags().StringVar(&blockEnd, "end", "", "end (HH:mm, exclusive)")
	addBlockCmd.Flags().StringVar(&blockReason, "reason", "", "optional note")
	_ = addBlockCmd.MarkFlagRequired("date")
	_ = addBlockCmd.MarkFlagRequired("start")
	_ = addBlockCmd.MarkFlagRequired("end")

	listBlocksCmd.Flags().StringVarP(&listDate, "date", "d", "", "only this date (YYYY-MM-DD)")

	BlocksCmd.AddCommand(addBlockCmd)
	BlocksCmd.AddCommand(listBlocksCmd)
	BlocksCmd.AddCommand(removeBlockCmd)
}
