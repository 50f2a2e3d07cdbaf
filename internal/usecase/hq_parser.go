package usecase

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/travelperks/dealdedup/internal/domain"
)

// HQ line markers: "v Royal Caribbean", "vendor: NCL", "d Save $150 ...", "ed: ..."
var (
	vendorLineRegex = regexp.MustCompile(`(?i)^v(?:endor)?(?:\s*[:\-]\s*|\s+)(.+)$`)
	dealLineRegex   = regexp.MustCompile(`(?i)^(ed|d)(?:\s*[:\-]\s*|\s+)(.+)$`)
)

// DealParserConfig holds configuration for the deal parser
type DealParserConfig struct {
	// Now supplies the reference date for year-less dates; defaults to time.Now
	Now                func() time.Time
	EnableDebugLogging bool
}

// DealParser turns HQ text and JSON feeds into structured deals
type DealParser struct {
	now                func() time.Time
	enableDebugLogging bool
}

// NewDealParser creates a new deal parser
func NewDealParser(config DealParserConfig) *DealParser {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &DealParser{
		now:                now,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// ParseHQDeals parses line-oriented HQ notes. A vendor line sets the vendor for
// the deal lines that follow; deal lines seen before any vendor are skipped.
func (p *DealParser) ParseHQDeals(text string) []domain.StructuredDeal {
	ref := p.now()
	deals := []domain.StructuredDeal{}
	currentVendor := ""

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := vendorLineRegex.FindStringSubmatch(trimmed); m != nil {
			name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), ":"))
			currentVendor = Canonicalize(name)
			if p.enableDebugLogging {
				log.Printf("[PARSE] Line %d: vendor %q -> %q", i+1, name, currentVendor)
			}
			continue
		}

		m := dealLineRegex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		if currentVendor == "" {
			if p.enableDebugLogging {
				log.Printf("[PARSE] Line %d: deal without vendor skipped", i+1)
			}
			continue
		}

		dealText := strings.TrimSpace(m[2])
		deal := buildHQDeal(currentVendor, dealText, strings.EqualFold(m[1], "ed"), ref)
		deal.Line = i + 1
		deal.Original = trimmed
		deals = append(deals, deal)
	}

	if p.enableDebugLogging {
		log.Printf("[PARSE] HQ deals parsed: %d", len(deals))
	}
	return deals
}

// buildHQDeal runs the extractors over one deal line
func buildHQDeal(vendor, text string, exclusive bool, ref time.Time) domain.StructuredDeal {
	deal := domain.StructuredDeal{
		Vendor:      vendor,
		Title:       text,
		Exclusive:   exclusive,
		Ongoing:     DetectOngoing(text),
		MoneyValues: ExtractMoneyValues(text),
		Percents:    ExtractPercentageValues(text),
		Numbers:     ExtractSpecialNumericAll(text),
		Source:      domain.SourceHQ,
	}

	dates := ExtractAllDatesWithInfo(text, ref)
	if len(dates) > 0 {
		last := dates[len(dates)-1]
		deal.ExpiryDate = stringPtr(last.YMD)
		deal.ExpiryYearInferred = last.YearInferred

		if first := dates[0]; len(dates) > 1 && first.Date.Before(last.Date) {
			deal.StartDate = stringPtr(first.YMD)
			deal.StartYearInferred = first.YearInferred
		}
	}

	return deal
}

func stringPtr(s string) *string {
	return &s
}
