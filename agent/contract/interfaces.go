package contract

import (
	"context"

	crmx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/crm"
)

// ChatModel is a single blocking round-trip to a language model. A nil or
// empty tools slice requests a plain completion.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message, tools []ToolSchema) (Message, error)
}

type EntityExtractor interface {
	Extract(ctx context.Context, rawNotes string) (ExtractedEntities, error)
}

type ComplianceReviewer interface {
	Review(ctx context.Context, rawNotes string, productsDiscussed []string) (map[string]any, error)
}

type Recommender interface {
	Recommend(ctx context.Context, hcp *crmx.HCP, last *crmx.Interaction) (string, error)
}
