package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
	crmx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/crm"
)

type fakeStore struct {
	hcps         map[int64]crmx.HCP
	interactions map[int64]crmx.Interaction
	nextID       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hcps:         map[int64]crmx.HCP{},
		interactions: map[int64]crmx.Interaction{},
	}
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
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
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
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CreateInteraction(ctx context.Context, in *crmx.Interaction) error {
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

type scriptedModel struct {
	replies []contractx.Message
}

func (m *scriptedModel) Complete(ctx context.Context, messages []contractx.Message, tools []contractx.ToolSchema) (contractx.Message, error) {
	if len(m.replies) == 0 {
		return contractx.Message{Role: contractx.RoleAssistant, Content: "done"}, nil
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

type fakeModelSet struct {
	chat   *scriptedModel
	worker *scriptedModel
}

func (f *fakeModelSet) Chat(model string) contractx.ChatModel { return f.chat }

func (f *fakeModelSet) Worker() contractx.ChatModel { return f.worker }

func newTestServer(store crmx.Store, models ModelSet) *Server {
	return New(store, models, Config{AgentMaxRounds: 4})
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleRoot(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeStore(), &fakeModelSet{chat: &scriptedModel{}, worker: &scriptedModel{}})
	rec := doJSON(t, srv.Router(), http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "hcp-crm" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestCreateAndListHCPs(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeStore(), &fakeModelSet{chat: &scriptedModel{}, worker: &scriptedModel{}})
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/hcps/", `{"name":"Dr. Test","specialty":"Oncology"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/hcps/", "")
	var hcps []crmx.HCP
	if err := json.Unmarshal(rec.Body.Bytes(), &hcps); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(hcps) != 1 || hcps[0].Name != "Dr. Test" {
		t.Fatalf("unexpected listing: %+v", hcps)
	}
}

func TestCreateHCPRequiresName(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeStore(), &fakeModelSet{chat: &scriptedModel{}, worker: &scriptedModel{}})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/hcps/", `{"specialty":"Oncology"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestSeedEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeStore(), &fakeModelSet{chat: &scriptedModel{}, worker: &scriptedModel{}})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/hcps/seed", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var hcps []crmx.HCP
	if err := json.Unmarshal(rec.Body.Bytes(), &hcps); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(hcps) != 2 {
		t.Fatalf("expected the two seed hcps, got %d", len(hcps))
	}
}

func TestListInteractionsRejectsBadHCPID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeStore(), &fakeModelSet{chat: &scriptedModel{}, worker: &scriptedModel{}})
	rec := doJSON(t, srv.Router(), http.MethodGet, "/interactions/?hcp_id=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestCreateInteractionFormAutoExtraction(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	worker := &scriptedModel{replies: []contractx.Message{{
		Role:    contractx.RoleAssistant,
		Content: `{"summary":"Spoke about DrugX","products_discussed":["DrugX"],"sentiment":"positive"}`,
	}}}
	srv := newTestServer(store, &fakeModelSet{chat: &scriptedModel{}, worker: worker})

	rec := doJSON(t, srv.Router(), http.MethodPost, "/interactions/",
		`{"hcp_id":1,"raw_notes":"spoke with dr iyer about drugx"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", rec.Code, rec.Body.String())
	}

	var created crmx.Interaction
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if created.Summary != "Spoke about DrugX" || created.Sentiment != "positive" {
		t.Fatalf("auto-extraction not applied: %+v", created)
	}
	if created.Source != crmx.SourceForm {
		t.Fatalf("form submissions default to source %q, got %q", crmx.SourceForm, created.Source)
	}
	if created.Notes != "spoke with dr iyer about drugx" {
		t.Fatalf("raw notes must land in notes: %q", created.Notes)
	}
}

func TestCreateInteractionKeepsExplicitSummary(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	srv := newTestServer(store, &fakeModelSet{chat: &scriptedModel{}, worker: &scriptedModel{}})

	rec := doJSON(t, srv.Router(), http.MethodPost, "/interactions/",
		`{"hcp_id":1,"raw_notes":"notes","summary":"manual summary"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var created crmx.Interaction
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if created.Summary != "manual summary" {
		t.Fatalf("explicit summary must skip extraction: %q", created.Summary)
	}
}

func TestCreateInteractionRequiresHCPID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeStore(), &fakeModelSet{chat: &scriptedModel{}, worker: &scriptedModel{}})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/interactions/", `{"raw_notes":"notes"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestUpdateInteractionNotFound(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeStore(), &fakeModelSet{chat: &scriptedModel{}, worker: &scriptedModel{}})
	rec := doJSON(t, srv.Router(), http.MethodPut, "/interactions/99", `{"summary":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["detail"] != "Interaction not found" {
		t.Fatalf("unexpected detail: %q", body["detail"])
	}
}

func TestUpdateInteraction(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.interactions[7] = crmx.Interaction{ID: 7, HCPID: 1, Summary: "old"}
	store.nextID = 7
	srv := newTestServer(store, &fakeModelSet{chat: &scriptedModel{}, worker: &scriptedModel{}})

	rec := doJSON(t, srv.Router(), http.MethodPut, "/interactions/7", `{"summary":"new"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var updated crmx.Interaction
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if updated.Summary != "new" {
		t.Fatalf("patch not applied: %+v", updated)
	}
}

func TestAgentChatPlainAnswer(t *testing.T) {
	t.Parallel()

	chat := &scriptedModel{replies: []contractx.Message{{
		Role:    contractx.RoleAssistant,
		Content: "Happy to help with your field visits.",
	}}}
	srv := newTestServer(newFakeStore(), &fakeModelSet{chat: chat, worker: &scriptedModel{}})

	rec := doJSON(t, srv.Router(), http.MethodPost, "/agent/chat", `{"message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Messages      []contractx.Message `json:"messages"`
		InteractionID *int64              `json:"interaction_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected [user, assistant], got %d messages", len(resp.Messages))
	}
	if resp.Messages[0].Role != contractx.RoleUser || resp.Messages[1].Content != "Happy to help with your field visits." {
		t.Fatalf("unexpected transcript: %+v", resp.Messages)
	}
	if resp.InteractionID != nil {
		t.Fatalf("unexpected interaction id: %v", *resp.InteractionID)
	}
}

func TestAgentChatLogsInteraction(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.hcps[1] = crmx.HCP{ID: 1, Name: "Dr. Anaya Iyer", Specialty: "Cardiology"}
	store.nextID = 1

	chat := &scriptedModel{replies: []contractx.Message{
		{
			Role: contractx.RoleAssistant,
			ToolCalls: []contractx.ToolCall{{
				ID:        "call-1",
				Name:      "log_interaction",
				Arguments: `{"raw_notes":"met dr iyer, discussed drugx"}`,
			}},
		},
		{Role: contractx.RoleAssistant, Content: "Logged your visit with Dr. Iyer."},
	}}
	worker := &scriptedModel{replies: []contractx.Message{{
		Role:    contractx.RoleAssistant,
		Content: `{"summary":"Met Dr. Iyer about DrugX","products_discussed":["DrugX"],"sentiment":"positive"}`,
	}}}
	srv := newTestServer(store, &fakeModelSet{chat: chat, worker: worker})

	rec := doJSON(t, srv.Router(), http.MethodPost, "/agent/chat",
		`{"hcp_id":1,"message":"log my visit with dr iyer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Messages      []contractx.Message `json:"messages"`
		InteractionID *int64              `json:"interaction_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.InteractionID == nil {
		t.Fatal("expected a surfaced interaction id")
	}

	saved, ok := store.interactions[*resp.InteractionID]
	if !ok {
		t.Fatalf("no interaction stored under id %d", *resp.InteractionID)
	}
	if saved.HCPID != 1 || saved.Source != crmx.SourceChat {
		t.Fatalf("unexpected stored interaction: %+v", saved)
	}
	if saved.Summary != "Met Dr. Iyer about DrugX" {
		t.Fatalf("extraction output not stored: %q", saved.Summary)
	}

	// user, assistant(tool call), tool, assistant
	if len(resp.Messages) != 4 {
		t.Fatalf("expected 4 transcript messages, got %d", len(resp.Messages))
	}
	if resp.Messages[2].Role != contractx.RoleTool || resp.Messages[2].ToolCallID != "call-1" {
		t.Fatalf("unexpected tool message: %+v", resp.Messages[2])
	}
}

func TestAgentChatSuggestsNextBestAction(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.hcps[2] = crmx.HCP{ID: 2, Name: "Dr. Kunal Mehta", Specialty: "Endocrinology", Tier: "B"}
	store.interactions[10] = crmx.Interaction{ID: 10, HCPID: 2, Summary: "Asked for efficacy data"}
	store.nextID = 10

	chat := &scriptedModel{replies: []contractx.Message{
		{
			Role: contractx.RoleAssistant,
			ToolCalls: []contractx.ToolCall{{
				ID:        "call-1",
				Name:      "suggest_next_best_action",
				Arguments: `{}`,
			}},
		},
		{Role: contractx.RoleAssistant, Content: "You should follow up with the efficacy data."},
	}}
	worker := &scriptedModel{replies: []contractx.Message{{
		Role:    contractx.RoleAssistant,
		Content: "Send the efficacy data Dr. Mehta asked for and book a short call.",
	}}}
	srv := newTestServer(store, &fakeModelSet{chat: chat, worker: worker})

	rec := doJSON(t, srv.Router(), http.MethodPost, "/agent/chat",
		`{"hcp_id":2,"message":"what should I do next with dr mehta?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Messages      []contractx.Message `json:"messages"`
		InteractionID *int64              `json:"interaction_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.InteractionID != nil {
		t.Fatalf("advisory flow must not surface an interaction id, got %v", *resp.InteractionID)
	}
	// user, assistant(tool call), tool, assistant
	if len(resp.Messages) != 4 {
		t.Fatalf("expected 4 transcript messages, got %d", len(resp.Messages))
	}
	if !strings.Contains(resp.Messages[2].Content, "efficacy data") {
		t.Fatalf("tool message must carry the recommendation: %q", resp.Messages[2].Content)
	}
	if resp.Messages[3].Content != "You should follow up with the efficacy data." {
		t.Fatalf("unexpected final answer: %q", resp.Messages[3].Content)
	}
}

func TestAgentChatRequiresMessage(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeStore(), &fakeModelSet{chat: &scriptedModel{}, worker: &scriptedModel{}})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/agent/chat", `{"message":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestAgentChatToolBudgetExceeded(t *testing.T) {
	t.Parallel()

	// Every reply requests another tool round; the budget of 4 runs out.
	loop := make([]contractx.Message, 5)
	for i := range loop {
		loop[i] = contractx.Message{
			Role: contractx.RoleAssistant,
			ToolCalls: []contractx.ToolCall{{
				ID:        "call",
				Name:      "fetch_hcp_profile",
				Arguments: `{"hcp_id":1}`,
			}},
		}
	}
	store := newFakeStore()
	store.hcps[1] = crmx.HCP{ID: 1, Name: "Dr. Anaya Iyer"}
	srv := newTestServer(store, &fakeModelSet{chat: &scriptedModel{replies: loop}, worker: &scriptedModel{}})

	rec := doJSON(t, srv.Router(), http.MethodPost, "/agent/chat", `{"hcp_id":1,"message":"loop"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["detail"] != "agent exceeded its tool budget" {
		t.Fatalf("unexpected detail: %q", body["detail"])
	}
}
