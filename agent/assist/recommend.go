package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
	promptx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/prompt"
	crmx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/crm"
)

// Recommender produces a short next-best-action narrative from HCP context.
type Recommender struct {
	model  contractx.ChatModel
	prompt string
}

func NewRecommender(model contractx.ChatModel) *Recommender {
	return &Recommender{
		model:  model,
		prompt: promptx.LoadPromptSet().Recommendation,
	}
}

func (r *Recommender) Recommend(ctx context.Context, hcp *crmx.HCP, last *crmx.Interaction) (string, error) {
	if hcp == nil {
		return "", fmt.Errorf("%w: hcp is required", contractx.ErrValidation)
	}

	lastInteraction := map[string]any{
		"summary":    nil,
		"outcomes":   nil,
		"next_steps": nil,
	}
	if last != nil {
		lastInteraction["summary"] = last.Summary
		lastInteraction["outcomes"] = last.Outcomes
		lastInteraction["next_steps"] = last.NextSteps
	}

	payload, err := json.Marshal(map[string]any{
		"hcp": map[string]any{
			"name":         hcp.Name,
			"specialty":    hcp.Specialty,
			"organization": hcp.Organization,
			"tier":         hcp.Tier,
		},
		"last_interaction": lastInteraction,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal recommendation context: %v", contractx.ErrValidation, err)
	}

	reply, err := r.model.Complete(ctx, []contractx.Message{
		{Role: contractx.RoleSystem, Content: r.prompt},
		{Role: contractx.RoleUser, Content: string(payload)},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("recommend action: %w", err)
	}

	return strings.TrimSpace(reply.Content), nil
}
