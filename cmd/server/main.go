package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"quill/internal/config"
	"quill/internal/handler"
	"quill/internal/middleware"
	"quill/internal/service/draft"
	"quill/internal/service/llm"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"provider", cfg.Provider,
	)

	// Setup the generator provider
	generator, err := llm.SetupGenerator(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup generator: %v", err)
	}

	// Create the session registry
	registry := draft.NewRegistry(generator, draft.Options{
		SuggestionDebounce: cfg.SuggestionDebounce,
		SnapshotInterval:   cfg.SnapshotInterval,
		GenerationTimeout:  cfg.GenerationTimeout,
	}, cfg.SessionTTL, logger)
	defer registry.Close()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(registry, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", sessionHandler.HealthCheck)

	// Session lifecycle
	mux.HandleFunc("POST /api/sessions", sessionHandler.CreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", sessionHandler.GetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", sessionHandler.DeleteSession)

	// Draft generation and manual editing
	mux.HandleFunc("POST /api/sessions/{id}/draft", sessionHandler.StartDraft)
	mux.HandleFunc("PUT /api/sessions/{id}/content", sessionHandler.UpdateContent)
	mux.HandleFunc("POST /api/sessions/{id}/undo", sessionHandler.Undo)
	mux.HandleFunc("POST /api/sessions/{id}/redo", sessionHandler.Redo)

	// Suggestions
	mux.HandleFunc("GET /api/sessions/{id}/suggestions", sessionHandler.GetSuggestions)
	mux.HandleFunc("POST /api/sessions/{id}/suggestions/{sid}/toggle", sessionHandler.ToggleSuggestion)
	mux.HandleFunc("POST /api/sessions/{id}/apply", sessionHandler.ApplySelected)

	// Build middleware chain (applied in reverse order, they wrap each other)
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server. Write timeout leaves room for the generation
	// timeout plus response encoding.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
