package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
	crmx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/crm"
)

const recentInteractionLimit = 3

type fetchHCPProfileArgs struct {
	HCPID *int64 `json:"hcp_id"`
}

func (d Deps) fetchHCPProfile(ctx context.Context, arguments string) (contractx.ToolResult, error) {
	var args fetchHCPProfileArgs
	if err := decodeArgs(arguments, &args); err != nil {
		return invalidArgsResult(ToolFetchHCPProfile, err), nil
	}

	hcpID, ok := d.resolveHCPID(args.HCPID)
	if !ok {
		return errorResult(ToolFetchHCPProfile, "HCP id is required"), nil
	}

	hcp, err := d.Store.GetHCP(ctx, hcpID)
	if errors.Is(err, crmx.ErrHCPNotFound) {
		return errorResult(ToolFetchHCPProfile, "HCP not found"), nil
	}
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("fetch hcp profile: %w", err)
	}

	interactions, err := d.Store.ListRecentInteractions(ctx, hcpID, recentInteractionLimit)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("fetch recent interactions: %w", err)
	}

	recent := make([]map[string]any, 0, len(interactions))
	for _, in := range interactions {
		var date any
		if in.InteractionDate != nil {
			date = in.InteractionDate.Format(time.RFC3339)
		}
		recent = append(recent, map[string]any{
			"id":               in.ID,
			"summary":          in.Summary,
			"interaction_date": date,
			"sentiment":        in.Sentiment,
		})
	}

	return contractx.ToolResult{
		Tool: ToolFetchHCPProfile,
		Result: map[string]any{
			"hcp": map[string]any{
				"id":           hcp.ID,
				"name":         hcp.Name,
				"specialty":    hcp.Specialty,
				"organization": hcp.Organization,
				"city":         hcp.City,
				"state":        hcp.State,
				"tier":         hcp.Tier,
			},
			"recent_interactions": recent,
		},
	}, nil
}
