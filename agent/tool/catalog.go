package tool

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
	crmx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/crm"
)

const (
	ToolFetchHCPProfile       = "fetch_hcp_profile"
	ToolLogInteraction        = "log_interaction"
	ToolEditInteraction       = "edit_interaction"
	ToolSuggestNextBestAction = "suggest_next_best_action"
	ToolCheckCompliance       = "check_compliance"
)

// Deps carries the request-scoped collaborators every tool invocation needs.
// DefaultHCPID fills in for tool calls where the model omitted hcp_id.
type Deps struct {
	Store        crmx.Store
	Extractor    contractx.EntityExtractor
	Reviewer     contractx.ComplianceReviewer
	Recommender  contractx.Recommender
	DefaultHCPID *int64
}

// Execute dispatches one tool call by name. Missing references and bad
// arguments come back inside the ToolResult so the conversation continues; the
// error return is reserved for storage and model-transport failures, which
// terminate the request.
func (d Deps) Execute(ctx context.Context, name string, arguments string) (contractx.ToolResult, error) {
	switch name {
	case ToolFetchHCPProfile:
		return d.fetchHCPProfile(ctx, arguments)
	case ToolLogInteraction:
		return d.logInteraction(ctx, arguments)
	case ToolEditInteraction:
		return d.editInteraction(ctx, arguments)
	case ToolSuggestNextBestAction:
		return d.suggestNextBestAction(ctx, arguments)
	case ToolCheckCompliance:
		return d.checkCompliance(ctx, arguments)
	default:
		return contractx.ToolResult{
			Tool:  name,
			Error: fmt.Sprintf("unknown tool %q", name),
		}, nil
	}
}

func (d Deps) resolveHCPID(hcpID *int64) (int64, bool) {
	if hcpID != nil {
		return *hcpID, true
	}
	if d.DefaultHCPID != nil {
		return *d.DefaultHCPID, true
	}
	return 0, false
}

// Schemas declares the full toolset exposed to the model.
func Schemas() []contractx.ToolSchema {
	return []contractx.ToolSchema{
		{
			Name:        ToolFetchHCPProfile,
			Description: "Fetch HCP profile details with recent interactions.",
			Parameters: objectSchema(map[string]any{
				"hcp_id": integerParam("HCP id. Defaults to the active HCP of the conversation."),
			}),
		},
		{
			Name:        ToolLogInteraction,
			Description: "Log an HCP interaction. If summary or entities are missing, auto-extract them.",
			Parameters: objectSchema(map[string]any{
				"raw_notes":          stringParam("Free-text notes of the interaction."),
				"hcp_id":             integerParam("HCP id. Defaults to the active HCP of the conversation."),
				"interaction_type":   stringParam("Interaction type, e.g. visit, call."),
				"channel":            stringParam("Channel, e.g. in-person, phone, email."),
				"interaction_date":   stringParam("Interaction date in ISO 8601 format."),
				"attendees":          stringParam("Attendees of the interaction."),
				"outcomes":           stringParam("Outcomes of the interaction."),
				"next_steps":         stringParam("Agreed next steps."),
				"products_discussed": stringArrayParam("Products discussed."),
				"sentiment":          stringParam("Overall sentiment label."),
				"summary":            stringParam("Concise summary of the interaction."),
			}, "raw_notes"),
		},
		{
			Name:        ToolEditInteraction,
			Description: "Edit an existing interaction record.",
			Parameters: objectSchema(map[string]any{
				"interaction_id":     integerParam("Id of the interaction to edit."),
				"summary":            stringParam("New summary."),
				"notes":              stringParam("New notes."),
				"outcomes":           stringParam("New outcomes."),
				"next_steps":         stringParam("New next steps."),
				"products_discussed": stringArrayParam("New list of products discussed."),
				"sentiment":          stringParam("New sentiment label."),
			}, "interaction_id"),
		},
		{
			Name:        ToolSuggestNextBestAction,
			Description: "Provide a recommended next action for the rep.",
			Parameters: objectSchema(map[string]any{
				"hcp_id": integerParam("HCP id. Defaults to the active HCP of the conversation."),
			}),
		},
		{
			Name:        ToolCheckCompliance,
			Description: "Check compliance risks in the interaction notes.",
			Parameters: objectSchema(map[string]any{
				"raw_notes":          stringParam("Free-text notes to review."),
				"products_discussed": stringArrayParam("Products discussed."),
			}, "raw_notes"),
		},
	}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringParam(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func integerParam(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func stringArrayParam(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}
