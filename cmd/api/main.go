package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tuneforge-backend/cmd"
	"tuneforge-backend/internal/api"
	"tuneforge-backend/internal/document"
	"tuneforge-backend/internal/finetune"
	"tuneforge-backend/internal/pipeline"
	"tuneforge-backend/internal/summarize"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tmc/langchaingo/textsplitter"
)

type APIConfig struct {
	SummarizerModel     string        `env:"SUMMARIZER_MODEL" envDefault:"gpt-4o-mini"`
	SummaryMaxTokens    int           `env:"SUMMARY_MAX_TOKENS" envDefault:"150"`
	SummaryMinTokens    int           `env:"SUMMARY_MIN_TOKENS" envDefault:"30"`
	SummaryInputLimit   int           `env:"SUMMARY_INPUT_TOKEN_LIMIT" envDefault:"3000"`
	SummaryConcurrency  int           `env:"SUMMARY_CONCURRENCY" envDefault:"1"`
	PollInitialInterval time.Duration `env:"POLL_INITIAL_INTERVAL" envDefault:"5s"`
	PollMaxInterval     time.Duration `env:"POLL_MAX_INTERVAL" envDefault:"1m"`
	PollMaxWait         time.Duration `env:"POLL_MAX_WAIT" envDefault:"2h"`
	MaxUploadBytes      int64         `env:"MAX_UPLOAD_BYTES" envDefault:"33554432"`
	APIPort             string        `env:"API_PORT" envDefault:"8001"`
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	counter, err := summarize.NewTokenCounter(cfg.SummarizerModel)
	if err != nil {
		log.Fatalf("Failed to load token encoding: %v", err)
	}
	splitter := textsplitter.NewTokenSplitter(
		textsplitter.WithChunkSize(cfg.SummaryInputLimit),
		textsplitter.WithChunkOverlap(0),
	)

	summarizer := summarize.New(
		summarize.NewOpenAI(cfg.SummarizerModel),
		summarize.WithBounds(summarize.Bounds{MaxTokens: cfg.SummaryMaxTokens, MinTokens: cfg.SummaryMinTokens}),
		summarize.WithInputLimit(cfg.SummaryInputLimit, counter, splitter),
		summarize.WithWorkers(cfg.SummaryConcurrency),
	)

	orchestrator := finetune.NewOrchestrator(finetune.NewOpenAIService(), finetune.PollConfig{
		InitialInterval: cfg.PollInitialInterval,
		MaxInterval:     cfg.PollMaxInterval,
		MaxWait:         cfg.PollMaxWait,
	})

	pipe := pipeline.New(document.ExtractTextFile, summarizer, orchestrator)

	// --- Chi Router Setup ---
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	apiHandler := api.NewBackendService(pipe, cfg.MaxUploadBytes)
	apiHandler.AddRoutes(r)

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}
