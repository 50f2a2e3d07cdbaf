package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

var configEnvVars = []string{
	"DEALDEDUP_SERVER_PORT",
	"DEALDEDUP_SERVER_ENVIRONMENT",
	"DEALDEDUP_SERVER_ALLOWED_ORIGINS",
	"DEALDEDUP_MATCHING_THRESHOLD",
	"DEALDEDUP_MATCHING_DEDUPE_HQ",
	"DEALDEDUP_MATCHING_DEBUG_LOGGING",
	"DEALDEDUP_CACHE_TYPE",
	"DEALDEDUP_CACHE_REDIS_URL",
	"DEALDEDUP_CACHE_TTL",
	"DEALDEDUP_FEED_URL",
	"DEALDEDUP_FEED_API_KEY",
	"DEALDEDUP_FEED_TIMEOUT",
	"DEALDEDUP_FEED_REQUESTS_PER_MINUTE",
	"DEALDEDUP_RATELIMIT_PER_IP",
}

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		for _, key := range configEnvVars {
			os.Unsetenv(key)
		}
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Matching.Threshold != 120 {
			t.Errorf("Matching.Threshold = %d, want 120", cfg.Matching.Threshold)
		}
		if !cfg.Matching.DedupeHQ {
			t.Error("Matching.DedupeHQ = false, want true")
		}
		if cfg.Matching.DebugLogging {
			t.Error("Matching.DebugLogging = true, want false")
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.Feed.URL != "" {
			t.Errorf("Feed.URL = %s, want empty", cfg.Feed.URL)
		}
		if cfg.Feed.Timeout != 30*time.Second {
			t.Errorf("Feed.Timeout = %v, want 30s", cfg.Feed.Timeout)
		}
		if cfg.Feed.RequestsPerMinute != 60 {
			t.Errorf("Feed.RequestsPerMinute = %d, want 60", cfg.Feed.RequestsPerMinute)
		}
		if cfg.RateLimit.PerIP != 120 {
			t.Errorf("RateLimit.PerIP = %d, want 120", cfg.RateLimit.PerIP)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALDEDUP_SERVER_PORT", "9090")
		os.Setenv("DEALDEDUP_SERVER_ENVIRONMENT", "production")
		os.Setenv("DEALDEDUP_MATCHING_THRESHOLD", "150")
		os.Setenv("DEALDEDUP_MATCHING_DEDUPE_HQ", "false")
		os.Setenv("DEALDEDUP_MATCHING_DEBUG_LOGGING", "true")
		os.Setenv("DEALDEDUP_CACHE_TYPE", "redis")
		os.Setenv("DEALDEDUP_CACHE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("DEALDEDUP_CACHE_TTL", "1h")
		os.Setenv("DEALDEDUP_FEED_URL", "https://shop.example.com/deals.json")
		os.Setenv("DEALDEDUP_FEED_TIMEOUT", "5s")
		os.Setenv("DEALDEDUP_RATELIMIT_PER_IP", "200")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Matching.Threshold != 150 {
			t.Errorf("Matching.Threshold = %d, want 150", cfg.Matching.Threshold)
		}
		if cfg.Matching.DedupeHQ {
			t.Error("Matching.DedupeHQ = true, want false")
		}
		if !cfg.Matching.DebugLogging {
			t.Error("Matching.DebugLogging = false, want true")
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.Feed.URL != "https://shop.example.com/deals.json" {
			t.Errorf("Feed.URL = %s, want https://shop.example.com/deals.json", cfg.Feed.URL)
		}
		if cfg.Feed.Timeout != 5*time.Second {
			t.Errorf("Feed.Timeout = %v, want 5s", cfg.Feed.Timeout)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALDEDUP_CACHE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("DEALDEDUP_CACHE_TYPE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
		if err != nil && !strings.Contains(err.Error(), "DEALDEDUP_CACHE_REDIS_URL") {
			t.Errorf("Load() error = %v, want hint about DEALDEDUP_CACHE_REDIS_URL", err)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	// chdir into a temp dir holding the given .env content
	inTempDir := func(t *testing.T, envContent string) {
		t.Helper()
		originalDir, _ := os.Getwd()
		t.Cleanup(func() { os.Chdir(originalDir) })

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		if envContent != "" {
			if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
				t.Fatalf("Failed to create test .env file: %v", err)
			}
		}
	}

	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		inTempDir(t, "")

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("skips empty lines and comments", func(t *testing.T) {
		inTempDir(t, `
# This is a comment
   # This is also a comment

TEST_SKIP_1=value1
TEST_SKIP_2="quoted value"
# TEST_COMMENTED=should_not_load
`)
		os.Unsetenv("TEST_SKIP_1")
		os.Unsetenv("TEST_SKIP_2")
		os.Unsetenv("TEST_COMMENTED")
		defer os.Unsetenv("TEST_SKIP_1")
		defer os.Unsetenv("TEST_SKIP_2")

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_SKIP_1") != "value1" {
			t.Errorf("TEST_SKIP_1 = %q, want value1", os.Getenv("TEST_SKIP_1"))
		}
		if os.Getenv("TEST_SKIP_2") != "quoted value" {
			t.Errorf("TEST_SKIP_2 = %q, want quoted value", os.Getenv("TEST_SKIP_2"))
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("accepts export-prefixed lines", func(t *testing.T) {
		inTempDir(t, "export TEST_EXPORTED=from-export\n")
		os.Unsetenv("TEST_EXPORTED")
		defer os.Unsetenv("TEST_EXPORTED")

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_EXPORTED") != "from-export" {
			t.Errorf("TEST_EXPORTED = %q, want from-export", os.Getenv("TEST_EXPORTED"))
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		inTempDir(t, "TEST_OVERRIDE=new-value")
		os.Setenv("TEST_OVERRIDE", "existing-value")
		defer os.Unsetenv("TEST_OVERRIDE")

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})

	t.Run("Load picks up .env values", func(t *testing.T) {
		inTempDir(t, "DEALDEDUP_MATCHING_THRESHOLD=175\n")
		os.Unsetenv("DEALDEDUP_MATCHING_THRESHOLD")
		defer os.Unsetenv("DEALDEDUP_MATCHING_THRESHOLD")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Matching.Threshold != 175 {
			t.Errorf("Matching.Threshold = %d, want 175", cfg.Matching.Threshold)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Matching:  MatchingConfig{Threshold: 120},
			Cache:     CacheConfig{Type: "memory"},
			RateLimit: RateLimitConfig{PerIP: 120},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid memory config", func(c *Config) {}, false},
		{"valid redis config", func(c *Config) { c.Cache.Type = "redis"; c.Cache.RedisURL = "redis://localhost:6379" }, false},
		{"zero threshold", func(c *Config) { c.Matching.Threshold = 0 }, true},
		{"invalid cache type", func(c *Config) { c.Cache.Type = "invalid-type" }, true},
		{"redis without URL", func(c *Config) { c.Cache.Type = "redis" }, true},
		{"zero rate limit", func(c *Config) { c.RateLimit.PerIP = 0 }, true},
		{"feed with defaults", func(c *Config) {
			c.Feed = FeedConfig{URL: "https://shop.example.com/deals.json", Timeout: time.Second, RequestsPerMinute: 60}
		}, false},
		{"feed without timeout", func(c *Config) {
			c.Feed = FeedConfig{URL: "https://shop.example.com/deals.json", RequestsPerMinute: 60}
		}, true},
		{"feed without request budget", func(c *Config) {
			c.Feed = FeedConfig{URL: "https://shop.example.com/deals.json", Timeout: time.Second}
		}, true},
		{"feed settings ignored without URL", func(c *Config) { c.Feed.Timeout = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
