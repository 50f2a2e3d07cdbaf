package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/travelperks/dealdedup/internal/domain"
)

// DedupServiceConfig holds configuration for the deduplication service
type DedupServiceConfig struct {
	CacheTTL           time.Duration
	MatchThreshold     int
	DedupeHQ           bool
	EnableDebugLogging bool
	// Now is the service clock; defaults to time.Now
	Now func() time.Time
}

// DedupService runs full deduplication: parse, drop HQ repeats, match, cache
type DedupService struct {
	cache              domain.CacheRepository
	feed               domain.DealFeedClient
	parser             *DealParser
	matchingService    *MatchingService
	cacheTTL           time.Duration
	dedupeHQ           bool
	enableDebugLogging bool
	now                func() time.Time
}

// NewDedupService creates a new deduplication service with dependencies.
// A nil cache disables result caching. With a feed client, requests that omit
// the JSON deals are served from the remote feed.
func NewDedupService(cache domain.CacheRepository, feed domain.DealFeedClient, config DedupServiceConfig) *DedupService {
	now := config.Now
	if now == nil {
		now = time.Now
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &DedupService{
		cache: cache,
		feed:  feed,
		parser: NewDealParser(DealParserConfig{
			Now:                now,
			EnableDebugLogging: config.EnableDebugLogging,
		}),
		matchingService: NewMatchingService(MatchConfig{
			Threshold:          config.MatchThreshold,
			EnableDebugLogging: config.EnableDebugLogging,
		}),
		cacheTTL:           cacheTTL,
		dedupeHQ:           config.DedupeHQ,
		enableDebugLogging: config.EnableDebugLogging,
		now:                now,
	}
}

// Parser exposes the service's deal parser
func (s *DedupService) Parser() *DealParser {
	return s.parser
}

// Run executes a deduplication run.
// Flow: fetch feed if needed -> check cache -> parse both inputs -> drop HQ repeats -> match -> cache -> return
func (s *DedupService) Run(ctx context.Context, request *domain.MatchRequest) (*domain.MatchReport, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}
	if request.Threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must not be negative", domain.ErrInvalidRequest)
	}

	if len(request.JSONDeals) == 0 {
		body, err := s.fetchFeed(ctx)
		if err != nil {
			return nil, err
		}
		fetched := *request
		fetched.JSONDeals = body
		request = &fetched
	}

	matcher := s.matchingService
	if request.Threshold > 0 && request.Threshold != matcher.Threshold() {
		matcher = matcher.WithThreshold(request.Threshold)
	}

	cacheKey := s.generateCacheKey(request, matcher.Threshold())

	// Try cache first
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil && cached != nil {
		report := *cached
		report.Source = "Cache"
		return &report, nil
	}

	jsonDeals, err := s.parser.ParseJSONDeals(request.JSONDeals)
	if err != nil {
		return nil, err
	}
	hqDeals := s.parser.ParseHQDeals(request.HQText)

	duplicates := []domain.Duplicate{}
	if s.dedupeHQ {
		hqDeals, duplicates = DedupeHQDeals(hqDeals, s.enableDebugLogging)
	}

	outcome, err := matcher.MatchDeals(ctx, hqDeals, jsonDeals)
	if err != nil {
		return nil, err
	}

	report := &domain.MatchReport{
		RunID:       uuid.NewString(),
		Threshold:   matcher.Threshold(),
		HQCount:     len(hqDeals),
		JSONCount:   len(jsonDeals),
		Matched:     outcome.Matched,
		NeedsReview: outcome.NeedsReview,
		Duplicates:  duplicates,
		Source:      "Engine",
		GeneratedAt: s.now().UTC(),
	}

	log.Printf("[DEDUP] Run %s: %d HQ deals (%d duplicates dropped), %d JSON deals, %d matched, %d need review",
		report.RunID, report.HQCount, len(duplicates), report.JSONCount, len(report.Matched), len(report.NeedsReview))

	if err := s.setInCache(ctx, cacheKey, report); err != nil {
		log.Printf("[CACHE] Failed to store run %s: %v", report.RunID, err)
	}

	return report, nil
}

// fetchFeed pulls the JSON deals from the configured feed
func (s *DedupService) fetchFeed(ctx context.Context) ([]byte, error) {
	if s.feed == nil {
		return nil, fmt.Errorf("%w: jsonDeals is required", domain.ErrInvalidRequest)
	}
	body, err := s.feed.FetchDeals(ctx)
	if err != nil {
		log.Printf("[DEDUP] Feed fetch failed: %v", err)
		return nil, err
	}
	if s.enableDebugLogging {
		log.Printf("[DEDUP] Using %d bytes from deal feed", len(body))
	}
	return body, nil
}

// generateCacheKey hashes the run inputs.
// Format: "dedup:{xxhash of inputs}:{threshold}:{reference date}"
func (s *DedupService) generateCacheKey(request *domain.MatchRequest, threshold int) string {
	h := xxhash.New()
	_, _ = h.WriteString(normalizeLineEndings(request.HQText))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(request.JSONDeals)
	dedupe := "all"
	if s.dedupeHQ {
		dedupe = "unique"
	}
	// The reference date resolves year-less dates, so runs on different days differ
	return fmt.Sprintf("dedup:%016x:%d:%s:%s", h.Sum64(), threshold, dedupe, s.now().UTC().Format(ymdLayout))
}

func normalizeLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// getFromCache retrieves a report from cache. Cached values come back as
// generic JSON structures, so they are re-decoded into a report.
func (s *DedupService) getFromCache(ctx context.Context, key string) (*domain.MatchReport, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if report, ok := value.(*domain.MatchReport); ok {
		return report, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}
	var report domain.MatchReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}
	return &report, nil
}

// setInCache stores a report in cache
func (s *DedupService) setInCache(ctx context.Context, key string, report *domain.MatchReport) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, report, s.cacheTTL)
}
