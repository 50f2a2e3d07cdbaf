package usecase

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/travelperks/dealdedup/internal/domain"
)

// Compiled regex patterns for deal text normalization
var (
	// Matches currency amounts like "$1,500", "150 usd", "€90"
	currencyAmountPattern = regexp.MustCompile(`(?i)\$\s*\d[\d,]*(?:\.\d+)?|\b\d[\d,]*(?:\.\d+)?\s*(?:usd|dollars?|euros?|eur)\b|€\s*\d[\d,]*(?:\.\d+)?|\d[\d,]*(?:\.\d+)?\s*€`)

	// Matches half-off phrasing in any of its spellings
	halfOffPattern = regexp.MustCompile(`(?i)\b50\s*(?:%|percent)\s*(?:off|reduced|discount)|\bhalf[\s\-]?off\b`)

	// Matches percentages
	percentPattern = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:%|percent\b)`)

	// Matches internal booking codes like "(PEM/OB7)" or "P3P"
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	bookingCodePattern   = regexp.MustCompile(`(?i)\b[a-z]{1,4}\d+[a-z0-9/]*\b`)

	// Matches 24/48 hour sale wording
	limitedTimePattern = regexp.MustCompile(`(?i)\b(?:(?:24|48)[\s\-]?(?:hour|hr)s?(?:\s+sale)?|limited[\s\-]?time(?:\s+(?:offer|only))?)\b`)

	// Multi-word synonyms folded before tokenizing
	onboardCreditPattern = regexp.MustCompile(`(?i)\b(?:on[\s\-]?board\s+credit|obc|dining\s+credit)\b`)
	prepaidGratPattern   = regexp.MustCompile(`(?i)\b(?:pre[\s\-]?paid\s+gratuities|free\s+grat(?:uities)?|ppg)\b`)
	freeSynonymPattern   = regexp.MustCompile(`(?i)\b(?:complimentary|complementary|compliment|gratis)\b`)
)

// dealCategoryPatterns tag the kind of perk a deal offers
var dealCategoryPatterns = []struct {
	tag     string
	pattern *regexp.Regexp
}{
	{"obc", regexp.MustCompile(`(?i)\b(?:on[\s\-]?board\s+credit|obc|dining\s+credit)\b`)},
	{"gratuities", regexp.MustCompile(`(?i)\b(?:gratuities|ppg|free\s+grat)\b`)},
	{"kids", regexp.MustCompile(`(?i)\b(?:kids?|child|children|(?:3rd|4th|third|fourth)\s+guests?)\b`)},
	{"half-off", halfOffPattern},
}

// fingerprintNoiseWords are dropped from keyword fingerprints
var fingerprintNoiseWords = map[string]bool{
	"exclusive": true,
	"upto":      true,
	"save":      true,
	"savings":   true,
	"receive":   true,
	"enjoy":     true,
	"bonus":     true,
	"amazing":   true,
	"great":     true,
	"best":      true,
	"huge":      true,
}

// DedupeHQDeals drops HQ deals that repeat an earlier deal of the same vendor.
// The first occurrence is kept; later ones are reported as duplicates of it.
func DedupeHQDeals(deals []domain.StructuredDeal, enableDebugLogging bool) ([]domain.StructuredDeal, []domain.Duplicate) {
	seen := make(map[string]int)
	unique := make([]domain.StructuredDeal, 0, len(deals))
	duplicates := []domain.Duplicate{}

	for _, d := range deals {
		fp := DealFingerprint(d)
		if idx, ok := seen[fp]; ok {
			duplicates = append(duplicates, domain.Duplicate{Original: d, DuplicateOf: unique[idx]})
			if enableDebugLogging {
				log.Printf("[DEDUP] Line %d duplicates line %d: %q", d.Line, unique[idx].Line, d.Title)
			}
			continue
		}
		seen[fp] = len(unique)
		unique = append(unique, d)
	}

	return unique, duplicates
}

// DealFingerprint builds a comparison key from the vendor, normalized
// keywords, numeric signals, perk categories and expiry of a deal.
func DealFingerprint(d domain.StructuredDeal) string {
	text := strings.TrimSpace(d.Title + " " + d.ShopListing)

	expiry := ""
	if d.ExpiryDate != nil {
		expiry = *d.ExpiryDate
	}

	return strings.Join([]string{
		strings.Join(vendorTokens(d.Vendor), " "),
		strings.Join(normalizedKeywords(text), "|"),
		formatNumbers(d.MoneyValues),
		formatNumbers(d.Percents),
		formatNumbers(d.Numbers),
		strings.Join(dealCategories(text), "|"),
		expiry,
	}, "||")
}

// normalizedKeywords returns the sorted, distinct keywords of deal text after
// removing amounts, codes and dates and folding common synonyms.
func normalizedKeywords(text string) []string {
	t := strings.ToLower(text)

	// Step 1: Fold synonyms into single tokens
	t = halfOffPattern.ReplaceAllString(t, " halfoff ")
	t = limitedTimePattern.ReplaceAllString(t, " limitedtime ")
	t = onboardCreditPattern.ReplaceAllString(t, " onboardcredit ")
	t = prepaidGratPattern.ReplaceAllString(t, " gratuities ")
	t = freeSynonymPattern.ReplaceAllString(t, "free")
	t = strings.ReplaceAll(t, "up to", "upto")

	// Step 2: Remove amounts, percentages, dates and internal codes
	t = currencyAmountPattern.ReplaceAllString(t, " ")
	t = percentPattern.ReplaceAllString(t, " ")
	t = isoDateRegex.ReplaceAllString(t, " ")
	t = usDateRegex.ReplaceAllString(t, " ")
	t = parentheticalPattern.ReplaceAllString(t, " ")
	t = bookingCodePattern.ReplaceAllString(t, " ")

	// Step 3: Tokenize and drop noise words
	seen := make(map[string]bool)
	var keywords []string
	for _, tok := range tokenize(t) {
		if fingerprintNoiseWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}

	sort.Strings(keywords)
	return keywords
}

// dealCategories returns the sorted perk tags found in text
func dealCategories(text string) []string {
	var tags []string
	for _, c := range dealCategoryPatterns {
		if c.pattern.MatchString(text) {
			tags = append(tags, c.tag)
		}
	}
	sort.Strings(tags)
	return tags
}
