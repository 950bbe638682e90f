package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/assist"
	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
	"github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/orchestrator"
	toolx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/tool"
	crmx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/crm"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "hcp-crm",
	})
}

func (s *Server) handleListHCPs(w http.ResponseWriter, r *http.Request) {
	hcps, err := s.store.ListHCPs(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list hcps")
		respondError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	respondJSON(w, http.StatusOK, hcps)
}

type createHCPRequest struct {
	Name         string `json:"name"`
	Specialty    string `json:"specialty"`
	Organization string `json:"organization"`
	City         string `json:"city"`
	State        string `json:"state"`
	Tier         string `json:"tier"`
}

func (s *Server) handleCreateHCP(w http.ResponseWriter, r *http.Request) {
	var req createHCPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	hcp := &crmx.HCP{
		Name:         req.Name,
		Specialty:    req.Specialty,
		Organization: req.Organization,
		City:         req.City,
		State:        req.State,
		Tier:         req.Tier,
	}
	if err := s.store.CreateHCP(r.Context(), hcp); err != nil {
		log.Error().Err(err).Msg("create hcp")
		respondError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	respondJSON(w, http.StatusOK, hcp)
}

func (s *Server) handleSeedHCPs(w http.ResponseWriter, r *http.Request) {
	hcps, err := crmx.Seed(r.Context(), s.store)
	if err != nil {
		log.Error().Err(err).Msg("seed hcps")
		respondError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	respondJSON(w, http.StatusOK, hcps)
}

func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	var hcpID *int64
	if raw := r.URL.Query().Get("hcp_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "hcp_id must be an integer")
			return
		}
		hcpID = &id
	}

	interactions, err := s.store.ListInteractions(r.Context(), hcpID)
	if err != nil {
		log.Error().Err(err).Msg("list interactions")
		respondError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	respondJSON(w, http.StatusOK, interactions)
}

type createInteractionRequest struct {
	HCPID             *int64         `json:"hcp_id"`
	InteractionType   string         `json:"interaction_type"`
	Channel           string         `json:"channel"`
	InteractionDate   *time.Time     `json:"interaction_date"`
	Summary           string         `json:"summary"`
	Notes             string         `json:"notes"`
	RawNotes          string         `json:"raw_notes"`
	Attendees         string         `json:"attendees"`
	Outcomes          string         `json:"outcomes"`
	NextSteps         string         `json:"next_steps"`
	ProductsDiscussed []string       `json:"products_discussed"`
	Sentiment         string         `json:"sentiment"`
	ExtractedEntities map[string]any `json:"extracted_entities"`
	Source            string         `json:"source"`
}

func (s *Server) handleCreateInteraction(w http.ResponseWriter, r *http.Request) {
	var req createInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HCPID == nil {
		respondError(w, http.StatusBadRequest, "hcp_id is required")
		return
	}

	in := &crmx.Interaction{
		HCPID:             *req.HCPID,
		InteractionType:   req.InteractionType,
		Channel:           req.Channel,
		InteractionDate:   req.InteractionDate,
		Summary:           req.Summary,
		Notes:             req.Notes,
		Attendees:         req.Attendees,
		Outcomes:          req.Outcomes,
		NextSteps:         req.NextSteps,
		ProductsDiscussed: req.ProductsDiscussed,
		Sentiment:         req.Sentiment,
		ExtractedEntities: req.ExtractedEntities,
		Source:            req.Source,
	}
	if in.Notes == "" {
		in.Notes = req.RawNotes
	}

	// Form submissions without a summary get the same auto-extraction the
	// agent's logging tool performs.
	if strings.TrimSpace(req.RawNotes) != "" && strings.TrimSpace(req.Summary) == "" {
		extractor := assist.NewExtractor(s.models.Worker())
		entities, err := extractor.Extract(r.Context(), req.RawNotes)
		if err != nil {
			log.Error().Err(err).Msg("extract entities for form submission")
			respondError(w, http.StatusBadGateway, "entity extraction failed")
			return
		}
		in.Summary = entities.Summary
		in.ProductsDiscussed = entities.ProductsDiscussed
		in.Sentiment = entities.Sentiment
		in.Outcomes = entities.Outcomes
		in.NextSteps = entities.NextSteps
		in.Attendees = entities.Attendees
		in.ExtractedEntities = entities.Raw
	}

	if err := s.store.CreateInteraction(r.Context(), in); err != nil {
		log.Error().Err(err).Msg("create interaction")
		respondError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	respondJSON(w, http.StatusOK, in)
}

func (s *Server) handleUpdateInteraction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "interactionID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "interaction id must be an integer")
		return
	}

	var patch crmx.InteractionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.store.UpdateInteraction(r.Context(), id, patch)
	if errors.Is(err, crmx.ErrInteractionNotFound) {
		respondError(w, http.StatusNotFound, "Interaction not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("update interaction")
		respondError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

type agentChatRequest struct {
	HCPID   *int64 `json:"hcp_id"`
	Message string `json:"message"`
	Model   string `json:"model"`
}

type agentChatResponse struct {
	Messages      []contractx.Message `json:"messages"`
	InteractionID *int64              `json:"interaction_id,omitempty"`
}

func (s *Server) handleAgentChat(w http.ResponseWriter, r *http.Request) {
	var req agentChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	hcpContext, err := s.activeHCPContext(r, req.HCPID)
	if err != nil {
		log.Error().Err(err).Msg("resolve active hcp")
		respondError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	worker := s.models.Worker()
	deps := toolx.Deps{
		Store:        s.store,
		Extractor:    assist.NewExtractor(worker),
		Reviewer:     assist.NewReviewer(worker),
		Recommender:  assist.NewRecommender(worker),
		DefaultHCPID: req.HCPID,
	}

	orch, err := orchestrator.New(s.models.Chat(req.Model), deps, toolx.Schemas(), orchestrator.Config{
		SystemPrompt: s.prompts.Assistant,
		HCPContext:   hcpContext,
		MaxRounds:    s.cfg.AgentMaxRounds,
	})
	if err != nil {
		log.Error().Err(err).Msg("build orchestrator")
		respondError(w, http.StatusInternalServerError, "agent setup failed")
		return
	}

	result, err := orch.Run(r.Context(), req.Message)
	if errors.Is(err, contractx.ErrToolLoopExhausted) {
		respondError(w, http.StatusBadGateway, "agent exceeded its tool budget")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("agent run")
		respondError(w, http.StatusBadGateway, "agent failure")
		return
	}

	respondJSON(w, http.StatusOK, agentChatResponse{
		Messages:      result.Messages,
		InteractionID: result.InteractionID,
	})
}

// activeHCPContext builds the system-prompt hint for the conversation's
// default HCP. An unknown id yields no hint; the tools will answer "HCP not
// found" on their own.
func (s *Server) activeHCPContext(r *http.Request, hcpID *int64) (string, error) {
	if hcpID == nil {
		return "", nil
	}
	hcp, err := s.store.GetHCP(r.Context(), *hcpID)
	if errors.Is(err, crmx.ErrHCPNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Active HCP for this conversation: %s (id %d), specialty %s, organization %s, tier %s.",
		hcp.Name, hcp.ID, hcp.Specialty, hcp.Organization, hcp.Tier,
	), nil
}
