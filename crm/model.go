package crm

import (
	"time"

	"github.com/uptrace/bun"
)

// Interaction provenance values.
const (
	SourceForm = "form"
	SourceChat = "chat"
)

// HCP is a healthcare professional tracked by the CRM. Records are immutable
// after creation; there is no update or delete operation.
type HCP struct {
	bun.BaseModel `bun:"table:hcps,alias:h"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Specialty    string    `bun:"specialty" json:"specialty,omitempty"`
	Organization string    `bun:"organization" json:"organization,omitempty"`
	City         string    `bun:"city" json:"city,omitempty"`
	State        string    `bun:"state" json:"state,omitempty"`
	Tier         string    `bun:"tier" json:"tier,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Interaction is a recorded encounter between a rep and an HCP. Every
// interaction references exactly one existing HCP.
type Interaction struct {
	bun.BaseModel `bun:"table:interactions,alias:i"`

	ID                int64          `bun:"id,pk,autoincrement" json:"id"`
	HCPID             int64          `bun:"hcp_id,notnull" json:"hcp_id"`
	InteractionType   string         `bun:"interaction_type" json:"interaction_type,omitempty"`
	Channel           string         `bun:"channel" json:"channel,omitempty"`
	InteractionDate   *time.Time     `bun:"interaction_date,nullzero" json:"interaction_date,omitempty"`
	Summary           string         `bun:"summary" json:"summary,omitempty"`
	Notes             string         `bun:"notes" json:"notes,omitempty"`
	Attendees         string         `bun:"attendees" json:"attendees,omitempty"`
	Outcomes          string         `bun:"outcomes" json:"outcomes,omitempty"`
	NextSteps         string         `bun:"next_steps" json:"next_steps,omitempty"`
	ProductsDiscussed []string       `bun:"products_discussed,type:jsonb" json:"products_discussed,omitempty"`
	Sentiment         string         `bun:"sentiment" json:"sentiment,omitempty"`
	ExtractedEntities map[string]any `bun:"extracted_entities,type:jsonb" json:"extracted_entities,omitempty"`
	Source            string         `bun:"source,notnull,default:'form'" json:"source"`
	CreatedAt         time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
