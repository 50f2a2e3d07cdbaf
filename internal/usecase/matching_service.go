package usecase

import (
	"context"
	"log"

	"github.com/travelperks/dealdedup/internal/domain"
)

// DefaultMatchThreshold is the score at which a best candidate counts as matched
const DefaultMatchThreshold = 120

const (
	reasonStrictMatch = "Strict match: verified (vendor, expiry, amounts and title agree)"
	reasonNoCandidate = "No candidate with matching vendor found"
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	Threshold          int
	EnableDebugLogging bool
}

// MatchingService pairs each HQ deal with its best same-vendor JSON deal
type MatchingService struct {
	threshold          int
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}

	return &MatchingService{
		threshold:          threshold,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Threshold returns the configured match threshold
func (s *MatchingService) Threshold() int {
	return s.threshold
}

// WithThreshold returns a copy of the service using a different threshold
func (s *MatchingService) WithThreshold(threshold int) *MatchingService {
	return NewMatchingService(MatchConfig{
		Threshold:          threshold,
		EnableDebugLogging: s.enableDebugLogging,
	})
}

// MatchDeals matches every HQ deal, in input order, against the JSON deals of
// the same canonical vendor. The first strict match wins outright; otherwise
// the highest scoring candidate is kept (ties keep the earlier candidate) and
// is reported as matched when it reaches the threshold, else as needing review.
func (s *MatchingService) MatchDeals(
	ctx context.Context,
	hqDeals []domain.StructuredDeal,
	jsonDeals []domain.StructuredDeal,
) (domain.MatchOutcome, error) {
	outcome := domain.MatchOutcome{
		Matched:     []domain.MatchResult{},
		NeedsReview: []domain.MatchResult{},
	}
	byVendor := groupByVendor(jsonDeals)

	for _, hq := range hqDeals {
		select {
		case <-ctx.Done():
			return domain.MatchOutcome{}, ctx.Err()
		default:
		}

		result := s.matchOne(hq, byVendor[hq.Vendor])
		if result.Kind == domain.KindMatched {
			outcome.Matched = append(outcome.Matched, result)
		} else {
			outcome.NeedsReview = append(outcome.NeedsReview, result)
		}
	}

	if s.enableDebugLogging {
		log.Printf("[MATCH] %d HQ deals: %d matched, %d need review (threshold %d)",
			len(hqDeals), len(outcome.Matched), len(outcome.NeedsReview), s.threshold)
	}
	return outcome, nil
}

// matchOne reduces the candidates of one HQ deal to a single result
func (s *MatchingService) matchOne(hq domain.StructuredDeal, candidates []domain.StructuredDeal) domain.MatchResult {
	if len(candidates) == 0 {
		if s.enableDebugLogging {
			log.Printf("[MATCH] %q (%s): no same-vendor candidates", hq.Title, hq.Vendor)
		}
		return domain.MatchResult{
			Kind:    domain.KindNeedsReview,
			HQDeal:  hq,
			Reasons: []string{reasonNoCandidate},
		}
	}

	for i := range candidates {
		if IsStrictMatch(hq, candidates[i]) {
			js := candidates[i]
			if s.enableDebugLogging {
				log.Printf("[MATCH] %q: strict match with %q", hq.Title, js.Title)
			}
			return domain.MatchResult{
				Kind:        domain.KindMatched,
				HQDeal:      hq,
				Counterpart: &js,
				Score:       domain.StrictMatchScore,
				Strict:      true,
				Reasons:     []string{reasonStrictMatch},
				Flags: domain.MatchFlags{
					Vendor:        true,
					ExclusiveFlag: hq.Exclusive != js.Exclusive,
				},
			}
		}
	}

	bestIdx := -1
	var best ScoreResult
	for i := range candidates {
		res := ScoreDeal(hq, candidates[i])

		if s.enableDebugLogging {
			log.Printf("[MATCH] %q vs %q | Score: %d | Reasons: %v",
				hq.Title, candidates[i].Title, res.Score, res.Reasons)
		}

		if bestIdx < 0 || res.Score > best.Score {
			bestIdx, best = i, res
		}
	}

	js := candidates[bestIdx]
	kind := domain.KindNeedsReview
	if best.Score >= s.threshold {
		kind = domain.KindMatched
	}

	return domain.MatchResult{
		Kind:        kind,
		HQDeal:      hq,
		Counterpart: &js,
		Score:       best.Score,
		Reasons:     best.Reasons,
		Flags:       best.Flags,
	}
}

// groupByVendor buckets JSON deals by canonical vendor, preserving input order
func groupByVendor(deals []domain.StructuredDeal) map[string][]domain.StructuredDeal {
	groups := make(map[string][]domain.StructuredDeal)
	for _, d := range deals {
		if d.Vendor == "" {
			continue
		}
		groups[d.Vendor] = append(groups[d.Vendor], d)
	}
	return groups
}
