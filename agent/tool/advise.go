package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
	crmx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/crm"
)

type suggestNextBestActionArgs struct {
	HCPID *int64 `json:"hcp_id"`
}

func (d Deps) suggestNextBestAction(ctx context.Context, arguments string) (contractx.ToolResult, error) {
	var args suggestNextBestActionArgs
	if err := decodeArgs(arguments, &args); err != nil {
		return invalidArgsResult(ToolSuggestNextBestAction, err), nil
	}

	hcpID, ok := d.resolveHCPID(args.HCPID)
	if !ok {
		return errorResult(ToolSuggestNextBestAction, "HCP id is required"), nil
	}

	hcp, err := d.Store.GetHCP(ctx, hcpID)
	if errors.Is(err, crmx.ErrHCPNotFound) {
		return errorResult(ToolSuggestNextBestAction, "HCP not found"), nil
	}
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("suggest next best action: %w", err)
	}

	interactions, err := d.Store.ListRecentInteractions(ctx, hcpID, 1)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("suggest next best action: %w", err)
	}
	var last *crmx.Interaction
	if len(interactions) > 0 {
		last = &interactions[0]
	}

	recommendation, err := d.Recommender.Recommend(ctx, hcp, last)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("suggest next best action: %w", err)
	}

	return contractx.ToolResult{
		Tool: ToolSuggestNextBestAction,
		Result: map[string]any{
			"recommendation": recommendation,
		},
	}, nil
}

type checkComplianceArgs struct {
	RawNotes          string   `json:"raw_notes"`
	ProductsDiscussed []string `json:"products_discussed"`
}

func (d Deps) checkCompliance(ctx context.Context, arguments string) (contractx.ToolResult, error) {
	var args checkComplianceArgs
	if err := decodeArgs(arguments, &args); err != nil {
		return invalidArgsResult(ToolCheckCompliance, err), nil
	}
	if strings.TrimSpace(args.RawNotes) == "" {
		return errorResult(ToolCheckCompliance, "raw_notes is required"), nil
	}

	report, err := d.Reviewer.Review(ctx, args.RawNotes, args.ProductsDiscussed)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("check compliance: %w", err)
	}

	return contractx.ToolResult{
		Tool:   ToolCheckCompliance,
		Result: report,
	}, nil
}
