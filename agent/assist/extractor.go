package assist

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
	promptx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/prompt"
)

// Extractor turns free-text interaction notes into structured fields with a
// single model call.
type Extractor struct {
	model  contractx.ChatModel
	prompt string
}

func NewExtractor(model contractx.ChatModel) *Extractor {
	return &Extractor{
		model:  model,
		prompt: promptx.LoadPromptSet().Extractor,
	}
}

func (e *Extractor) Extract(ctx context.Context, rawNotes string) (contractx.ExtractedEntities, error) {
	if strings.TrimSpace(rawNotes) == "" {
		return contractx.ExtractedEntities{}, fmt.Errorf("%w: raw notes are required", contractx.ErrValidation)
	}

	reply, err := e.model.Complete(ctx, []contractx.Message{
		{Role: contractx.RoleSystem, Content: e.prompt},
		{Role: contractx.RoleUser, Content: rawNotes},
	}, nil)
	if err != nil {
		return contractx.ExtractedEntities{}, fmt.Errorf("extract entities: %w", err)
	}

	payload := safeJSONMap("entity_extraction", reply.Content)
	return contractx.ExtractedEntities{
		Summary:           stringField(payload, "summary"),
		ProductsDiscussed: stringSliceField(payload, "products_discussed"),
		Sentiment:         stringField(payload, "sentiment"),
		Outcomes:          stringField(payload, "outcomes"),
		NextSteps:         stringField(payload, "next_steps"),
		Attendees:         stringField(payload, "attendees"),
		Raw:               payload,
	}, nil
}
