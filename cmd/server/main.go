// Command server runs the WhatsApp assistant: the webhook endpoint the
// gateway calls, the retrieval-augmented answer pipeline behind it, and the
// admin panel for documents and settings.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/config"
	httpapi "github.com/cuneytkuscu/whatsapp-rag-bot/internal/http"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/ingest"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/llm"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/messaging"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/observability"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/repo"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/services"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/sysutil"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/vectorstore"
)

var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	if _, err := repo.SeedSetting(ctx, db, cfg.Groq.DefaultModel, cfg.TriggerWord); err != nil {
		log.Fatal().Err(err).Msg("settings seed failed")
	}

	settings, err := services.NewSettingsService(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("settings load failed")
	}

	embedder := vectorstore.NewEmbeddingsClient(cfg.Embeddings)
	store := vectorstore.NewSupabase(cfg.Supabase, embedder)
	groq := llm.NewGroqClient(cfg.Groq)
	gateway := messaging.NewEvolutionClient(cfg.Evolution)

	answers := &services.AnswerService{
		Store:    store,
		LLM:      groq,
		Settings: settings,
		TopK:     cfg.TopK,
	}
	pipeline := &services.WebhookService{
		Settings: settings,
		Answers:  answers,
		Gateway:  gateway,
	}
	ingestor := &ingest.Ingestor{
		Store:        store,
		DB:           db,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:       db,
		Pipeline: pipeline,
		Settings: settings,
		Ingestor: ingestor,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
}
