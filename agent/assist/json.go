package assist

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// safeJSONMap parses model output that is expected to be a JSON object.
// Unparseable output degrades to an empty map so the conversation can
// continue; the degradation is logged so "model said nothing useful" stays
// distinguishable from "model output was garbage" in observability.
func safeJSONMap(flow, text string) map[string]any {
	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		log.Warn().
			Str("flow", flow).
			Err(err).
			Msg("model output is not valid JSON, degrading to empty result")
		return map[string]any{}
	}
	if payload == nil {
		return map[string]any{}
	}
	return payload
}

func stringField(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceField(payload map[string]any, key string) []string {
	raw, ok := payload[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
