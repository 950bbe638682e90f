package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
)

// Config targets Groq's OpenAI-compatible chat completions endpoint.
// SecondaryModel serves the extraction/compliance/recommendation sub-flows.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.groq.com/openai/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gemma2-9b-it"`
	SecondaryModel     string        `envconfig:"SECONDARY_MODEL" split_words:"true" default:"llama-3.3-70b-versatile"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// Client implements contract.ChatModel on the OpenAI SDK. One Client is bound
// to one model name; WithModel derives a sibling for overrides.
type Client struct {
	api            openaisdk.Client
	model          string
	secondaryModel string
	maxTokens      int
	temperature    float64
}

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("groq api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("groq model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	return &Client{
		api:            openaisdk.NewClient(opts...),
		model:          model,
		secondaryModel: strings.TrimSpace(cfg.SecondaryModel),
		maxTokens:      cfg.MaxCompletionToken,
		temperature:    cfg.Temperature,
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Chat returns the client bound to the given model name, or the default model
// when the name is blank.
func (c *Client) Chat(model string) contractx.ChatModel {
	return c.withModel(model)
}

// Worker returns the client bound to the secondary model used by the
// stateless sub-flows.
func (c *Client) Worker() contractx.ChatModel {
	return c.withModel(c.secondaryModel)
}

func (c *Client) withModel(model string) *Client {
	trimmed := strings.TrimSpace(model)
	if trimmed == "" || trimmed == c.model {
		return c
	}
	clone := *c
	clone.model = trimmed
	return &clone
}

func (c *Client) Complete(ctx context.Context, messages []contractx.Message, tools []contractx.ToolSchema) (contractx.Message, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(c.model),
		Messages:    toSDKMessages(messages),
		Temperature: openaisdk.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(c.maxTokens))
	}
	if len(tools) > 0 {
		params.Tools = toSDKTools(tools)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.Message{}, fmt.Errorf("%w: chat completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return contractx.Message{}, fmt.Errorf("%w: chat completion returned no choices", contractx.ErrModelInvoke)
	}

	choice := resp.Choices[0].Message
	out := contractx.Message{
		Role:    contractx.RoleAssistant,
		Content: choice.Content,
	}
	for _, tc := range choice.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, contractx.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func toSDKMessages(messages []contractx.Message) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case contractx.RoleSystem:
			out = append(out, openaisdk.SystemMessage(m.Content))
		case contractx.RoleUser:
			out = append(out, openaisdk.UserMessage(m.Content))
		case contractx.RoleTool:
			out = append(out, openaisdk.ToolMessage(m.Content, m.ToolCallID))
		case contractx.RoleAssistant:
			out = append(out, assistantMessage(m))
		}
	}
	return out
}

func assistantMessage(m contractx.Message) openaisdk.ChatCompletionMessageParamUnion {
	if len(m.ToolCalls) == 0 {
		return openaisdk.AssistantMessage(m.Content)
	}

	assistant := openaisdk.ChatCompletionAssistantMessageParam{}
	if m.Content != "" {
		assistant.Content.OfString = openaisdk.String(m.Content)
	}
	for _, tc := range m.ToolCalls {
		assistant.ToolCalls = append(assistant.ToolCalls, openaisdk.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openaisdk.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openaisdk.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			},
		})
	}
	return openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func toSDKTools(tools []contractx.ToolSchema) []openaisdk.ChatCompletionToolUnionParam {
	out := make([]openaisdk.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openaisdk.ChatCompletionFunctionTool(openaisdk.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openaisdk.String(t.Description),
			Parameters:  openaisdk.FunctionParameters(t.Parameters),
		}))
	}
	return out
}
