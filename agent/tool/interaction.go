package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
	crmx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/crm"
)

type logInteractionArgs struct {
	RawNotes          string   `json:"raw_notes"`
	HCPID             *int64   `json:"hcp_id"`
	InteractionType   *string  `json:"interaction_type"`
	Channel           *string  `json:"channel"`
	InteractionDate   *string  `json:"interaction_date"`
	Attendees         *string  `json:"attendees"`
	Outcomes          *string  `json:"outcomes"`
	NextSteps         *string  `json:"next_steps"`
	ProductsDiscussed []string `json:"products_discussed"`
	Sentiment         *string  `json:"sentiment"`
	Summary           *string  `json:"summary"`
}

func (d Deps) logInteraction(ctx context.Context, arguments string) (contractx.ToolResult, error) {
	var args logInteractionArgs
	if err := decodeArgs(arguments, &args); err != nil {
		return invalidArgsResult(ToolLogInteraction, err), nil
	}

	if strings.TrimSpace(args.RawNotes) == "" {
		return errorResult(ToolLogInteraction, "raw_notes is required"), nil
	}
	hcpID, ok := d.resolveHCPID(args.HCPID)
	if !ok {
		return errorResult(ToolLogInteraction, "HCP id is required"), nil
	}

	in := &crmx.Interaction{
		HCPID:             hcpID,
		InteractionDate:   parseDate(args.InteractionDate),
		Notes:             args.RawNotes,
		ProductsDiscussed: args.ProductsDiscussed,
		Source:            crmx.SourceChat,
	}
	if args.InteractionType != nil {
		in.InteractionType = *args.InteractionType
	}
	if args.Channel != nil {
		in.Channel = *args.Channel
	}
	if args.Summary != nil {
		in.Summary = *args.Summary
	}
	if args.Attendees != nil {
		in.Attendees = *args.Attendees
	}
	if args.Outcomes != nil {
		in.Outcomes = *args.Outcomes
	}
	if args.NextSteps != nil {
		in.NextSteps = *args.NextSteps
	}
	if args.Sentiment != nil {
		in.Sentiment = *args.Sentiment
	}

	// Extraction runs only when the model left summary, products or sentiment
	// open. Explicit arguments always win over extracted values.
	if args.Summary == nil || args.ProductsDiscussed == nil || args.Sentiment == nil {
		entities, err := d.Extractor.Extract(ctx, args.RawNotes)
		if err != nil {
			return contractx.ToolResult{}, fmt.Errorf("log interaction: %w", err)
		}
		if args.Summary == nil {
			in.Summary = entities.Summary
		}
		if args.ProductsDiscussed == nil {
			in.ProductsDiscussed = entities.ProductsDiscussed
		}
		if args.Sentiment == nil {
			in.Sentiment = entities.Sentiment
		}
		if args.Outcomes == nil {
			in.Outcomes = entities.Outcomes
		}
		if args.NextSteps == nil {
			in.NextSteps = entities.NextSteps
		}
		if args.Attendees == nil {
			in.Attendees = entities.Attendees
		}
		in.ExtractedEntities = entities.Raw
	}

	if err := d.Store.CreateInteraction(ctx, in); err != nil {
		return contractx.ToolResult{}, fmt.Errorf("log interaction: %w", err)
	}

	return contractx.ToolResult{
		Tool: ToolLogInteraction,
		Result: map[string]any{
			"interaction_id": in.ID,
			"summary":        in.Summary,
		},
	}, nil
}

type editInteractionArgs struct {
	InteractionID     *int64   `json:"interaction_id"`
	Summary           *string  `json:"summary"`
	Notes             *string  `json:"notes"`
	Outcomes          *string  `json:"outcomes"`
	NextSteps         *string  `json:"next_steps"`
	ProductsDiscussed []string `json:"products_discussed"`
	Sentiment         *string  `json:"sentiment"`
}

func (d Deps) editInteraction(ctx context.Context, arguments string) (contractx.ToolResult, error) {
	var args editInteractionArgs
	if err := decodeArgs(arguments, &args); err != nil {
		return invalidArgsResult(ToolEditInteraction, err), nil
	}
	if args.InteractionID == nil {
		return errorResult(ToolEditInteraction, "interaction_id is required"), nil
	}

	updated, err := d.Store.UpdateInteraction(ctx, *args.InteractionID, crmx.InteractionPatch{
		Summary:           args.Summary,
		Notes:             args.Notes,
		Outcomes:          args.Outcomes,
		NextSteps:         args.NextSteps,
		ProductsDiscussed: args.ProductsDiscussed,
		Sentiment:         args.Sentiment,
	})
	if errors.Is(err, crmx.ErrInteractionNotFound) {
		return errorResult(ToolEditInteraction, "Interaction not found"), nil
	}
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("edit interaction: %w", err)
	}

	return contractx.ToolResult{
		Tool: ToolEditInteraction,
		Result: map[string]any{
			"interaction_id": updated.ID,
			"summary":        updated.Summary,
		},
	}, nil
}
