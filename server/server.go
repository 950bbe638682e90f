package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/contract"
	promptx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/agent/prompt"
	crmx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/crm"
)

// ModelSet selects chat models for a request. Chat resolves a per-request
// model override (blank means the default); Worker is the secondary model
// behind the extraction, compliance and recommendation sub-flows.
type ModelSet interface {
	Chat(model string) contractx.ChatModel
	Worker() contractx.ChatModel
}

type Config struct {
	// AgentMaxRounds bounds the reasoning/acting cycle per conversation.
	AgentMaxRounds int
}

type Server struct {
	store   crmx.Store
	models  ModelSet
	prompts promptx.PromptSet
	cfg     Config
}

func New(store crmx.Store, models ModelSet, cfg Config) *Server {
	return &Server{
		store:   store,
		models:  models,
		prompts: promptx.LoadPromptSet(),
		cfg:     cfg,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)

	r.Route("/hcps", func(r chi.Router) {
		r.Get("/", s.handleListHCPs)
		r.Post("/", s.handleCreateHCP)
		r.Post("/seed", s.handleSeedHCPs)
	})

	r.Route("/interactions", func(r chi.Router) {
		r.Get("/", s.handleListInteractions)
		r.Post("/", s.handleCreateInteraction)
		r.Put("/{interactionID}", s.handleUpdateInteraction)
	})

	r.Post("/agent/chat", s.handleAgentChat)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
