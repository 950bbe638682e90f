package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/assistant.txt
	assistantRaw string

	//go:embed template/extractor.txt
	extractorRaw string

	//go:embed template/compliance.txt
	complianceRaw string

	//go:embed template/recommendation.txt
	recommendationRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Assistant      string
	Extractor      string
	Compliance     string
	Recommendation string
}

// LoadPromptSet returns the embedded prompts with surrounding whitespace
// trimmed. Safe for concurrent use.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Assistant:      strings.TrimSpace(assistantRaw),
		Extractor:      strings.TrimSpace(extractorRaw),
		Compliance:     strings.TrimSpace(complianceRaw),
		Recommendation: strings.TrimSpace(recommendationRaw),
	}
}
