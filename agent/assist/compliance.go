package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
	promptx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/prompt"
)

// Reviewer flags compliance risk in interaction notes with a single model
// call.
type Reviewer struct {
	model  contractx.ChatModel
	prompt string
}

func NewReviewer(model contractx.ChatModel) *Reviewer {
	return &Reviewer{
		model:  model,
		prompt: promptx.LoadPromptSet().Compliance,
	}
}

func (r *Reviewer) Review(ctx context.Context, rawNotes string, productsDiscussed []string) (map[string]any, error) {
	if strings.TrimSpace(rawNotes) == "" {
		return nil, fmt.Errorf("%w: raw notes are required", contractx.ErrValidation)
	}
	if productsDiscussed == nil {
		productsDiscussed = []string{}
	}

	payload, err := json.Marshal(map[string]any{
		"notes":              rawNotes,
		"products_discussed": productsDiscussed,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal compliance payload: %v", contractx.ErrValidation, err)
	}

	reply, err := r.model.Complete(ctx, []contractx.Message{
		{Role: contractx.RoleSystem, Content: r.prompt},
		{Role: contractx.RoleUser, Content: string(payload)},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("review compliance: %w", err)
	}

	return safeJSONMap("compliance_review", reply.Content), nil
}
