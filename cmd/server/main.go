package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/auditguard/auditguard/internal/api"
	"github.com/auditguard/auditguard/internal/assistant"
	"github.com/auditguard/auditguard/internal/config"
	"github.com/auditguard/auditguard/internal/ingestion"
	"github.com/auditguard/auditguard/internal/logger"
	"github.com/auditguard/auditguard/internal/repository"
	"github.com/auditguard/auditguard/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// setup wires the services behind the HTTP router. The returned cleanup
// closes the database when one was opened.
func setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (http.Handler, func(), error) {
	cleanup := func() {}
	deps := api.Deps{
		Sessions:        session.NewStore(cfg.SessionCapacity, cfg.SessionTTL),
		LiveModel:       cfg.GeminiLiveModel,
		LiveVoice:       cfg.GeminiVoice,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Production:      cfg.IsProduction(),
		Logger:          log,
	}
	ingOpts := ingestion.Options{
		Cutoff:    cfg.Cutoff(),
		CacheSize: cfg.AnalysisCacheSize,
		Logger:    log,
	}

	if cfg.DBPath != "" {
		log.Info().Str("path", cfg.DBPath).Msg("initializing upload log")
		db, err := repository.InitDB(cfg.DBPath)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = db.Close() }

		deps.Uploads = repository.NewUploadRepo(db)
		deps.Findings = repository.NewFindingRepo(db)
		ingOpts.Uploads = deps.Uploads
		ingOpts.Findings = deps.Findings
	} else {
		log.Info().Msg("DB_PATH is empty, upload history disabled")
	}

	var gen assistant.Generator
	if cfg.AssistantEnabled() {
		gemini, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, cleanup, err
		}
		gen = gemini
		deps.Live = gemini
	} else {
		log.Warn().Msg("GEMINI_API_KEY is not set, assistant endpoints will return 503")
	}
	deps.Insight = assistant.NewInsight(gen, log)

	svc, err := ingestion.NewService(deps.Sessions, ingOpts)
	if err != nil {
		return nil, cleanup, err
	}
	deps.Ingestion = svc

	return api.NewRouter(deps), cleanup, nil
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	handler, cleanup, err := setup(ctx, cfg, log)
	defer cleanup()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      handler,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	log.Info().
		Str("addr", cfg.AppAddr).
		Str("cutoff", cfg.AuditCutoffDate).
		Str("env", cfg.AppEnv).
		Msg("AuditGuard AR audit service listening")
	log.Info().Msg("Endpoints:")
	for _, ep := range []string{
		"POST   /api/v1/ledger/upload",
		"GET    /api/v1/sessions/{id}",
		"PUT    /api/v1/sessions/{id}/view",
		"DELETE /api/v1/sessions/{id}",
		"GET    /api/v1/sessions/{id}/{summary,entries,findings,dashboard,report,digest}",
		"GET    /api/v1/sessions/{id}/export.csv | export.xlsx",
		"POST   /api/v1/sessions/{id}/insight",
		"GET    /api/v1/sessions/{id}/live (websocket)",
		"GET    /api/v1/uploads",
		"GET    /api/v1/uploads/{id}/findings[/summary]",
	} {
		log.Info().Msg("  " + ep)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
