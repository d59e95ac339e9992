package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers prompts for the clinic's daily routines.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("morning_triage").
		Description("Walk a doctor through today's pending requests and queue.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Morning triage",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Help me get through today's clinic. Please:

1. Read clinicq://appointments/requests and summarise each pending request.
2. Suggest which to approve or decline; flag any that sit outside my usual hours.
3. Use queue.show for today's date and tell me the expected waits.

Act only with appointment.approve or appointment.decline after I confirm.`,
						},
					},
				},
			}, nil
		})

	srv.Prompt("find_appointment").
		Description("Help a patient find and book an open slot.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			doctor := args["doctor_id"]
			if doctor == "" {
				doctor = "the doctor I name"
			}
			return &mcp.PromptResult{
				Description: "Find an appointment",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`I want to see %s. Use slots.list for the next few working days,
show me the earliest open times, and book the one I pick with appointment.book.
Remind me the request stays pending until the doctor approves it.`, doctor),
						},
					},
				},
			}, nil
		})

	return nil
}
