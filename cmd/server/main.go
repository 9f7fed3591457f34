package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ecolens/backend/config"
	httpDelivery "github.com/ecolens/backend/internal/delivery/http"
	"github.com/ecolens/backend/internal/infrastructure/cache"
	"github.com/ecolens/backend/internal/infrastructure/catalog"
	"github.com/ecolens/backend/internal/infrastructure/gemini"
	"github.com/ecolens/backend/internal/usecase"
)

func main() {
	// Load .env if present; real deployments use actual env vars
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting EcoLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Model: %s (fast: %s)", cfg.Gemini.Model, cfg.Gemini.FastModel)

	ctx := context.Background()

	// Missing credential is fatal here, before any request is served
	geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.FastModel)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.RateLimit.Catalog)
	if cfg.Server.Environment == "development" {
		catalogClient.SetDebug(true)
		log.Printf("Catalog client debug mode enabled")
	}
	log.Printf("Catalog API configured: %s", cfg.Catalog.BaseURL)

	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Usecase layer
	analyzer := usecase.NewAnalyzerService(geminiClient)
	resolver := usecase.NewResolverService(
		analyzer,
		catalogClient,
		nil, // randomized band estimator
		nil, // time-seeded demo catalog
		usecase.ResolverConfig{
			AITimeout:      cfg.Resolver.AITimeout,
			CatalogTimeout: cfg.Resolver.CatalogTimeout,
			MinConfidence:  cfg.Resolver.MinConfidence,
		},
	)

	log.Printf("Resolver: ai_timeout=%s, catalog_timeout=%s, min_confidence=%.2f",
		cfg.Resolver.AITimeout, cfg.Resolver.CatalogTimeout, cfg.Resolver.MinConfidence)

	handler := httpDelivery.NewHandler(resolver, analyzer, memoryCache, cfg.Cache.TTL)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
