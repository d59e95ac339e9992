package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/clinicq/adapter/cli"
	availabilityCommands "github.com/felixgeelhaar/clinicq/internal/availability/application/commands"
	availabilityQueries "github.com/felixgeelhaar/clinicq/internal/availability/application/queries"
	availability "github.com/felixgeelhaar/clinicq/internal/availability/domain"
)

type setAvailabilityInput struct {
	Days         map[string][]availability.Range `json:"days,omitempty"`
	SlotDuration int                             `json:"slot_duration,omitempty"`
}

type getAvailabilityInput struct {
	DoctorID string `json:"doctor_id,omitempty"`
}

type addBlockInput struct {
	Date   string `json:"date" jsonschema:"required"`
	Start  string `json:"start" jsonschema:"required"`
	End    string `json:"end" jsonschema:"required"`
	Reason string `json:"reason,omitempty"`
}

type listBlocksInput struct {
	Date string `json:"date,omitempty"`
}

type blockIDInput struct {
	BlockID string `json:"block_id" jsonschema:"required"`
}

func registerAvailabilityTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("availability.set").
		Description("Replace the acting doctor's weekly template").
		Handler(setAvailabilityTool(app))

	srv.Tool("availability.get").
		Description("Read a doctor's weekly template; defaults to the acting doctor").
		Handler(func(ctx context.Context, input getAvailabilityInput) (*availabilityQueries.AvailabilityDTO, error) {
			if app.GetAvailabilityHandler == nil {
				return nil, errNoDatabase
			}
			doctorID, err := parseOptionalUUID(input.DoctorID)
			if err != nil {
				return nil, err
			}
			if input.DoctorID == "" {
				actor, err := actorOf(app)
				if err != nil {
					return nil, err
				}
				doctorID = actor.ID
			}
			return app.GetAvailabilityHandler.Handle(ctx, availabilityQueries.GetAvailabilityQuery{DoctorID: doctorID})
		})

	srv.Tool("blocks.add").
		Description("Block [start, end) on a date").
		Handler(func(ctx context.Context, input addBlockInput) (map[string]string, error) {
			if app.AddBlockHandler == nil {
				return nil, errNoDatabase
			}
			actor, err := actorOf(app)
			if err != nil {
				return nil, err
			}
			result, err := app.AddBlockHandler.Handle(ctx, availabilityCommands.AddBlockCommand{
				Actor:  actor,
				Date:   input.Date,
				Start:  input.Start,
				End:    input.End,
				Reason: input.Reason,
			})
			if err != nil {
				return nil, err
			}
			return map[string]string{"block_id": result.BlockID.String()}, nil
		})

	srv.Tool("blocks.list").
		Description("List the acting doctor's blocks").
		Handler(func(ctx context.Context, input listBlocksInput) ([]availabilityQueries.BlockDTO, error) {
			if app.ListBlocksHandler == nil {
				return nil, errNoDatabase
			}
			actor, err := actorOf(app)
			if err != nil {
				return nil, err
			}
			return app.ListBlocksHandler.Handle(ctx, availabilityQueries.ListBlocksQuery{Actor: actor, Date: input.Date})
		})

	srv.Tool("blocks.remove").
		Description("Remove one of the acting doctor's blocks").
		Handler(func(ctx context.Context, input blockIDInput) (map[string]string, error) {
			if app.RemoveBlockHandler == nil {
				return nil, errNoDatabase
			}
			actor, err := actorOf(app)
			if err != nil {
				return nil, err
			}
			id, err := parseUUID(input.BlockID)
			if err != nil {
				return nil, err
			}
			if err := app.RemoveBlockHandler.Handle(ctx, availabilityCommands.RemoveBlockCommand{Actor: actor, BlockID: id}); err != nil {
				return nil, err
			}
			return map[string]string{"status": "removed"}, nil
		})
}

func setAvailabilityTool(app *cli.App) func(context.Context, setAvailabilityInput) (*availabilityQueries.AvailabilityDTO, error) {
	return func(ctx context.Context, input setAvailabilityInput) (*availabilityQueries.AvailabilityDTO, error) {
		if app.SetAvailabilityHandler == nil {
			return nil, errNoDatabase
		}
		actor, err := actorOf(app)
		if err != nil {
			return nil, err
		}
		result, err := app.SetAvailabilityHandler.Handle(ctx, availabilityCommands.SetAvailabilityCommand{
			Actor:               actor,
			Days:                input.Days,
			SlotDurationMinutes: input.SlotDuration,
		})
		if err != nil {
			return nil, err
		}
		return &availabilityQueries.AvailabilityDTO{
			DoctorID:            result.DoctorID,
			Days:                result.Days,
			SlotDurationMinutes: result.SlotDurationMinutes,
			Configured:          true,
		}, nil
	}
}
