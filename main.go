package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	crmx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/crm"
	configx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/pkg/config"
	groqx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/pkg/groq"
	_ "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/pkg/logger/autoload"
	serverx "github.com/tanpawarit/Fieldmate-HCP-CRM-Agent/server"
)

type AppConfig struct {
	Addr            string        `envconfig:"ADDR" default:":8000"`
	DatabaseURL     string        `envconfig:"DATABASE_URL" required:"true"`
	SeedOnStartup   bool          `envconfig:"SEED_ON_STARTUP" default:"true"`
	AgentMaxRounds  int           `envconfig:"AGENT_MAX_ROUNDS" default:"8"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")
	groqCfg := configx.MustNew[groqx.Config]("GROQ")

	llm := groqx.MustNew(*groqCfg)

	db := crmx.MustOpen(appCfg.DatabaseURL)
	defer db.Close()
	store := crmx.NewPGStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.CreateTables(ctx); err != nil {
		log.Fatal().Err(err).Msg("bootstrap schema")
	}
	if appCfg.SeedOnStartup {
		hcps, err := crmx.Seed(ctx, store)
		if err != nil {
			log.Fatal().Err(err).Msg("seed hcps")
		}
		log.Info().Int("hcps", len(hcps)).Msg("seed check complete")
	}

	srv := serverx.New(store, llm, serverx.Config{
		AgentMaxRounds: appCfg.AgentMaxRounds,
	})

	httpServer := &http.Server{
		Addr:    appCfg.Addr,
		Handler: srv.Router(),
	}

	go func() {
		log.Info().Str("addr", appCfg.Addr).Msg("hcp-crm listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
