package tool

import (
	"encoding/json"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
)

// decodeArgs parses the model-supplied arguments JSON. An empty arguments
// string counts as an empty object.
func decodeArgs(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return json.Unmarshal([]byte(trimmed), v)
}

func errorResult(tool, message string) contractx.ToolResult {
	return contractx.ToolResult{Tool: tool, Error: message}
}

func invalidArgsResult(tool string, err error) contractx.ToolResult {
	return contractx.ToolResult{Tool: tool, Error: "invalid arguments: " + err.Error()}
}

// parseDate accepts RFC 3339 or plain dates. Anything else becomes nil, same
// as an absent date.
func parseDate(value *string) *time.Time {
	if value == nil {
		return nil
	}
	raw := strings.TrimSpace(*value)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	return nil
}
