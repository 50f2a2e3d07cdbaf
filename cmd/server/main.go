package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/travelperks/dealdedup/config"
	httpDelivery "github.com/travelperks/dealdedup/internal/delivery/http"
	"github.com/travelperks/dealdedup/internal/domain"
	"github.com/travelperks/dealdedup/internal/infrastructure/cache"
	"github.com/travelperks/dealdedup/internal/infrastructure/feed"
	"github.com/travelperks/dealdedup/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Deal Deduplicator v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// Initialize infrastructure dependencies
	resultCache, closeCache, err := newCache(cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer closeCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	var feedClient domain.DealFeedClient
	if cfg.Feed.URL != "" {
		client := feed.NewClient(cfg.Feed.URL, cfg.Feed.APIKey, cfg.Feed.Timeout, cfg.Feed.RequestsPerMinute)
		client.SetDebug(cfg.Feed.DebugLogging)
		feedClient = client
		log.Printf("Deal feed: %s (%d requests/minute)", cfg.Feed.URL, cfg.Feed.RequestsPerMinute)
	} else {
		log.Printf("Deal feed: disabled, jsonDeals required on every request")
	}

	// Initialize usecase layer
	dedupService := usecase.NewDedupService(
		resultCache,
		feedClient,
		usecase.DedupServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			MatchThreshold:     cfg.Matching.Threshold,
			DedupeHQ:           cfg.Matching.DedupeHQ,
			EnableDebugLogging: cfg.Matching.DebugLogging,
		},
	)

	log.Printf("Matching: threshold=%d, dedupe_hq=%v, debug=%v",
		cfg.Matching.Threshold,
		cfg.Matching.DedupeHQ,
		cfg.Matching.DebugLogging)
	log.Printf("Rate limit: %d requests/minute per IP", cfg.RateLimit.PerIP)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(dedupService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newCache builds the configured result cache and its cleanup function
func newCache(cfg config.CacheConfig) (domain.CacheRepository, func(), error) {
	if cfg.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL, "dealdedup:")
		if err != nil {
			return nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisCache.Ping(ctx); err != nil {
			redisCache.Close()
			return nil, nil, err
		}

		log.Printf("Redis cache connected")
		return redisCache, func() { redisCache.Close() }, nil
	}

	memoryCache := cache.NewMemoryCache(0)
	return memoryCache, func() { memoryCache.Close() }, nil
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
