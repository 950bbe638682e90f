package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
)

const defaultMaxRounds = 8

// ToolExecutor runs one model-requested tool call. The ToolResult carries
// conversational errors; the error return is fatal for the run.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, arguments string) (contractx.ToolResult, error)
}

type Config struct {
	// SystemPrompt is the fixed instruction that opens every transcript.
	SystemPrompt string
	// HCPContext optionally extends the system prompt with an active-HCP hint.
	HCPContext string
	// MaxRounds bounds the reasoning/acting cycle. Zero means the default.
	MaxRounds int
}

// Orchestrator drives one conversation: ask the model what to do, execute the
// tool calls it requests, feed the results back, and repeat until the model
// answers in plain content.
type Orchestrator struct {
	model   contractx.ChatModel
	tools   ToolExecutor
	schemas []contractx.ToolSchema

	systemPrompt string
	maxRounds    int
}

// Result is the outcome of one orchestration run. Messages is the transcript
// without the system instruction; InteractionID is the id surfaced by the
// first log/edit tool result of the run, if any.
type Result struct {
	Messages      []contractx.Message
	InteractionID *int64
}

func New(model contractx.ChatModel, tools ToolExecutor, schemas []contractx.ToolSchema, cfg Config) (*Orchestrator, error) {
	if model == nil {
		return nil, errors.New("chat model is required")
	}
	if tools == nil {
		return nil, errors.New("tool executor is required")
	}
	systemPrompt := strings.TrimSpace(cfg.SystemPrompt)
	if systemPrompt == "" {
		return nil, errors.New("system prompt is required")
	}
	if hcpContext := strings.TrimSpace(cfg.HCPContext); hcpContext != "" {
		systemPrompt += "\n\n" + hcpContext
	}

	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}

	return &Orchestrator{
		model:        model,
		tools:        tools,
		schemas:      schemas,
		systemPrompt: systemPrompt,
		maxRounds:    maxRounds,
	}, nil
}

// Run executes the reasoning/acting cycle for one user message. On exceeding
// the round budget it returns the partial transcript together with
// contract.ErrToolLoopExhausted.
func (o *Orchestrator) Run(ctx context.Context, userMessage string) (Result, error) {
	if strings.TrimSpace(userMessage) == "" {
		return Result{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()

	transcript := []contractx.Message{
		{Role: contractx.RoleSystem, Content: o.systemPrompt},
		{Role: contractx.RoleUser, Content: userMessage},
	}

	for round := 1; round <= o.maxRounds; round++ {
		reply, err := o.model.Complete(ctx, transcript, o.schemas)
		if err != nil {
			return Result{}, fmt.Errorf("reasoning round %d: %w", round, err)
		}
		transcript = append(transcript, reply)

		if len(reply.ToolCalls) == 0 {
			logger.Debug().Int("rounds", round).Msg("conversation settled")
			return finish(transcript), nil
		}

		logger.Debug().
			Int("round", round).
			Int("tool_calls", len(reply.ToolCalls)).
			Msg("executing tool round")

		results, err := o.executeRound(ctx, reply.ToolCalls)
		if err != nil {
			return Result{}, fmt.Errorf("acting round %d: %w", round, err)
		}
		transcript = append(transcript, results...)
	}

	logger.Warn().Int("max_rounds", o.maxRounds).Msg("tool loop budget exceeded")
	return finish(transcript), fmt.Errorf("%w: gave up after %d rounds", contractx.ErrToolLoopExhausted, o.maxRounds)
}

// executeRound runs the calls of one acting step concurrently. Each call is
// self-contained against the record store; the returned tool messages keep the
// order the calls were requested in.
func (o *Orchestrator) executeRound(ctx context.Context, calls []contractx.ToolCall) ([]contractx.Message, error) {
	results := make([]contractx.Message, len(calls))
	errs := make([]error, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call contractx.ToolCall) {
			defer wg.Done()
			out, err := o.tools.Execute(ctx, call.Name, call.Arguments)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = contractx.Message{
				Role:       contractx.RoleTool,
				Content:    out.Payload(),
				ToolCallID: call.ID,
			}
		}(i, call)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func finish(transcript []contractx.Message) Result {
	// The system instruction is run-internal and not part of the returned
	// transcript.
	messages := transcript[1:]
	return Result{
		Messages:      messages,
		InteractionID: scanInteractionID(messages),
	}
}

// scanInteractionID finds the first tool-result payload of the transcript that
// carries an interaction_id key.
func scanInteractionID(messages []contractx.Message) *int64 {
	for _, msg := range messages {
		if msg.Role != contractx.RoleTool {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(msg.Content), &payload); err != nil {
			continue
		}
		raw, ok := payload["interaction_id"]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case float64:
			id := int64(v)
			return &id
		case json.Number:
			if id, err := v.Int64(); err == nil {
				return &id
			}
		}
	}
	return nil
}
