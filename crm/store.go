package crm

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHCPNotFound         = errors.New("hcp not found")
	ErrInteractionNotFound = errors.New("interaction not found")
)

// Store is the record-store contract consumed by the agent tools and the HTTP
// layer. Implementations commit once per call.
type Store interface {
	GetHCP(ctx context.Context, id int64) (*HCP, error)
	ListHCPs(ctx context.Context) ([]HCP, error)
	CreateHCP(ctx context.Context, hcp *HCP) error
	CountHCPs(ctx context.Context) (int, error)

	// ListRecentInteractions returns at most limit interactions for the HCP,
	// ordered by interaction date descending with undated records last.
	ListRecentInteractions(ctx context.Context, hcpID int64, limit int) ([]Interaction, error)
	ListInteractions(ctx context.Context, hcpID *int64) ([]Interaction, error)
	CreateInteraction(ctx context.Context, in *Interaction) error
	GetInteraction(ctx context.Context, id int64) (*Interaction, error)
	UpdateInteraction(ctx context.Context, id int64, patch InteractionPatch) (*Interaction, error)
}

// InteractionPatch is a partial update. Nil fields are left unchanged.
type InteractionPatch struct {
	InteractionType   *string        `json:"interaction_type"`
	Channel           *string        `json:"channel"`
	InteractionDate   *time.Time     `json:"interaction_date"`
	Summary           *string        `json:"summary"`
	Notes             *string        `json:"notes"`
	Attendees         *string        `json:"attendees"`
	Outcomes          *string        `json:"outcomes"`
	NextSteps         *string        `json:"next_steps"`
	ProductsDiscussed []string       `json:"products_discussed"`
	Sentiment         *string        `json:"sentiment"`
	ExtractedEntities map[string]any `json:"extracted_entities"`
}

// Apply overwrites the interaction fields the patch provides.
func (p InteractionPatch) Apply(in *Interaction) {
	if p.InteractionType != nil {
		in.InteractionType = *p.InteractionType
	}
	if p.Channel != nil {
		in.Channel = *p.Channel
	}
	if p.InteractionDate != nil {
		in.InteractionDate = p.InteractionDate
	}
	if p.Summary != nil {
		in.Summary = *p.Summary
	}
	if p.Notes != nil {
		in.Notes = *p.Notes
	}
	if p.Attendees != nil {
		in.Attendees = *p.Attendees
	}
	if p.Outcomes != nil {
		in.Outcomes = *p.Outcomes
	}
	if p.NextSteps != nil {
		in.NextSteps = *p.NextSteps
	}
	if p.ProductsDiscussed != nil {
		in.ProductsDiscussed = p.ProductsDiscussed
	}
	if p.Sentiment != nil {
		in.Sentiment = *p.Sentiment
	}
	if p.ExtractedEntities != nil {
		in.ExtractedEntities = p.ExtractedEntities
	}
}
