package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/okrasa/Parley/internal/adapters/http"
	"github.com/okrasa/Parley/internal/app"
	"github.com/okrasa/Parley/internal/config"
	"github.com/okrasa/Parley/internal/translate"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var translator translate.Translator
	if cfg.DeepLKey == "" {
		// Keyless local run: deterministic stub captions instead of DeepL.
		log.Warn().Msg("DEEPL_API_KEY not set, using stub translator")
		translator = translate.NewStub(translate.StubConfig{})
	} else {
		translator = translate.NewDeepL(cfg.DeepLURL, cfg.DeepLKey, cfg.TranslateTimeout)
	}

	reg := app.NewRegistry()
	orch := &app.Orchestrator{
		Registry: reg,
		Relay:    &app.Relay{Registry: reg},
		Captions: &app.TranscriptionRouter{
			Registry:   reg,
			Translator: translator,
			Timeout:    cfg.TranslateTimeout,
		},
	}

	r := router.SetupRouter(ctx, cfg, orch)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Parley server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
