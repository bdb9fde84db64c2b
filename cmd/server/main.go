package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	transcripts "github.com/ticketwatch/transcripts"
	"github.com/ticketwatch/transcripts/internal/api"
	"github.com/ticketwatch/transcripts/internal/auth"
	"github.com/ticketwatch/transcripts/internal/config"
	"github.com/ticketwatch/transcripts/internal/core"
	"github.com/ticketwatch/transcripts/internal/discord"
	"github.com/ticketwatch/transcripts/internal/store"
	"github.com/ticketwatch/transcripts/internal/web"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log = log.Level(level)

	ctx := context.Background()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	migrationsFS, err := fs.Sub(transcripts.MigrationsFS, "migrations")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load embedded migrations")
	}
	if err := store.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	transcriptStore := store.NewTranscriptStore(pool)
	transcriptService := core.NewTranscriptService(transcriptStore, log.With().Str("component", "transcripts").Logger())

	sessions := auth.NewSessionManager(cfg.SessionSecret)
	oauthCfg := auth.NewDiscordOAuthConfig(cfg)
	discordClient := discord.NewClient(cfg.DiscordGuildID, cfg.DiscordAdminRoleID, log.With().Str("component", "discord").Logger())

	apiHandler := api.NewAPIHandler(transcriptService, sessions, oauthCfg, discordClient, cfg, log.With().Str("component", "api").Logger())
	pages, err := web.NewPageHandler(transcriptService, log.With().Str("component", "web").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse page templates")
	}

	router := api.NewRouter(apiHandler, pages, log)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited gracefully")
}
