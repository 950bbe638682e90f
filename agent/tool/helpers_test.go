package tool

import (
	"context"
	"sort"

	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
	crmx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/crm"
)

type fakeStore struct {
	hcps         map[int64]crmx.HCP
	interactions map[int64]crmx.Interaction
	nextID       int64
	createErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hcps:         map[int64]crmx.HCP{},
		interactions: map[int64]crmx.Interaction{},
	}
}

func (f *fakeStore) addHCP(hcp crmx.HCP) {
	f.hcps[hcp.ID] = hcp
}

func (f *fakeStore) addInteraction(in crmx.Interaction) {
	if in.ID > f.nextID {
		f.nextID = in.ID
	}
	f.interactions[in.ID] = in
}

func (f *fakeStore) GetHCP(ctx context.Context, id int64) (*crmx.HCP, error) {
	hcp, ok := f.hcps[id]
	if !ok {
		return nil, crmx.ErrHCPNotFound
	}
	return &hcp, nil
}

func (f *fakeStore) ListHCPs(ctx context.Context) ([]crmx.HCP, error) {
	out := make([]crmx.HCP, 0, len(f.hcps))
	for _, hcp := range f.hcps {
		out = append(out, hcp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) CreateHCP(ctx context.Context, hcp *crmx.HCP) error {
	f.nextID++
	hcp.ID = f.nextID
	f.hcps[hcp.ID] = *hcp
	return nil
}

func (f *fakeStore) CountHCPs(ctx context.Context) (int, error) {
	return len(f.hcps), nil
}

func (f *fakeStore) ListRecentInteractions(ctx context.Context, hcpID int64, limit int) ([]crmx.Interaction, error) {
	var out []crmx.Interaction
	for _, in := range f.interactions {
		if in.HCPID == hcpID {
			out = append(out, in)
		}
	}
	// interaction date desc, undated records last
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].InteractionDate, out[j].InteractionDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListInteractions(ctx context.Context, hcpID *int64) ([]crmx.Interaction, error) {
	var out []crmx.Interaction
	for _, in := range f.interactions {
		if hcpID == nil || in.HCPID == *hcpID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateInteraction(ctx context.Context, in *crmx.Interaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	if in.Source == "" {
		in.Source = crmx.SourceForm
	}
	f.nextID++
	in.ID = f.nextID
	f.interactions[in.ID] = *in
	return nil
}

func (f *fakeStore) GetInteraction(ctx context.Context, id int64) (*crmx.Interaction, error) {
	in, ok := f.interactions[id]
	if !ok {
		return nil, crmx.ErrInteractionNotFound
	}
	return &in, nil
}

func (f *fakeStore) UpdateInteraction(ctx context.Context, id int64, patch crmx.InteractionPatch) (*crmx.Interaction, error) {
	in, ok := f.interactions[id]
	if !ok {
		return nil, crmx.ErrInteractionNotFound
	}
	patch.Apply(&in)
	f.interactions[id] = in
	return &in, nil
}

type fakeExtractor struct {
	entities contractx.ExtractedEntities
	err      error
	calls    int
}

func (f *fakeExtractor) Extract(ctx context.Context, rawNotes string) (contractx.ExtractedEntities, error) {
	f.calls++
	if f.err != nil {
		return contractx.ExtractedEntities{}, f.err
	}
	return f.entities, nil
}

type fakeReviewer struct {
	report map[string]any
	err    error
	calls  int
}

func (f *fakeReviewer) Review(ctx context.Context, rawNotes string, productsDiscussed []string) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeRecommender struct {
	recommendation string
	err            error
	lastHCP        *crmx.HCP
	lastSeen       *crmx.Interaction
}

func (f *fakeRecommender) Recommend(ctx context.Context, hcp *crmx.HCP, last *crmx.Interaction) (string, error) {
	f.lastHCP = hcp
	f.lastSeen = last
	if f.err != nil {
		return "", f.err
	}
	return f.recommendation, nil
}

func int64p(v int64) *int64 {
	return &v
}

func stringp(v string) *string {
	return &v
}
