package contract

import "encoding/json"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a conversation transcript. Assistant messages may
// carry requested tool calls; tool messages carry the id of the call they
// answer.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-issued request to invoke a named tool. Arguments is the
// raw JSON object text exactly as the model produced it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolSchema declares a callable tool to the model. Parameters is a JSON
// Schema object.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolResult is the outcome of one tool invocation. Missing-reference and
// bad-argument conditions are carried in Error so the conversation can
// continue; only infrastructure failures surface as Go errors.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Payload renders the JSON body fed back to the model as the content of the
// tool message answering the call.
func (r ToolResult) Payload() string {
	if r.Error != "" {
		body, err := json.Marshal(map[string]string{"error": r.Error})
		if err != nil {
			return `{"error":"tool result encoding failed"}`
		}
		return string(body)
	}

	body, err := json.Marshal(r.Result)
	if err != nil {
		return `{"error":"tool result encoding failed"}`
	}
	return string(body)
}

// ExtractedEntities is the structured view derived from free-text interaction
// notes. Raw keeps the full payload the model returned, including keys this
// struct does not model.
type ExtractedEntities struct {
	Summary           string         `json:"summary,omitempty"`
	ProductsDiscussed []string       `json:"products_discussed,omitempty"`
	Sentiment         string         `json:"sentiment,omitempty"`
	Outcomes          string         `json:"outcomes,omitempty"`
	NextSteps         string         `json:"next_steps,omitempty"`
	Attendees         string         `json:"attendees,omitempty"`
	Raw               map[string]any `json:"-"`
}
