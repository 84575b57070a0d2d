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

	router "github.com/Parth0603/backendServer/internal/adapters/http"
	sig "github.com/Parth0603/backendServer/internal/adapters/signal"
	"github.com/Parth0603/backendServer/internal/app"
	"github.com/Parth0603/backendServer/internal/config"
	"github.com/Parth0603/backendServer/internal/storage"
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

	engine := app.New(app.Options{
		PollDuration: cfg.PollDuration,
		QueueSize:    cfg.QueueSize,
	})
	go engine.Run(ctx)

	ctl := sig.NewController(engine, sig.Config{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.SendBuffer,
		MsgRate:    cfg.MsgRate,
		MsgWindow:  cfg.MsgRateWindow,
	})

	store, err := storage.NewStore(cfg.UploadsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare uploads dir")
	}

	r := router.SetupRouter(ctx, cfg, engine, ctl, store)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("session coordinator started")
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
