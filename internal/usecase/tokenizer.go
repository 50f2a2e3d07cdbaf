package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// dealStopWords are generic travel/marketing words that carry no identity for a deal
var dealStopWords = map[string]bool{
	// Basic English stop words
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	"it": true, "as": true, "be": true, "are": true, "your": true,
	"you": true, "our": true, "all": true, "any": true, "this": true,
	"per": true, "plus": true, "up": true, "off": true, "when": true,
	// Validity wording
	"ends": true, "end": true, "ending": true, "through": true, "thru": true,
	"until": true, "till": true, "expires": true, "expiring": true, "valid": true,
	"now": true, "today": true, "only": true, "starting": true, "starts": true,
	// Marketing terms
	"deal": true, "deals": true, "offer": true, "offers": true, "promo": true,
	"promotion": true, "sale": true, "special": true, "specials": true,
	"limited": true, "time": true, "new": true, "exclusive": true, "book": true,
	"booking": true, "bookings": true, "booked": true, "select": true,
	"available": true, "get": true,
	// Generic travel terms
	"travel": true, "trip": true, "trips": true, "vacation": true, "vacations": true,
	"cruise": true, "cruises": true, "sailing": true, "sailings": true,
	"departure": true, "departures": true,
	// Months
	"jan": true, "feb": true, "mar": true, "apr": true, "may": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "sept": true, "oct": true, "nov": true,
	"dec": true, "january": true, "february": true, "march": true, "april": true,
	"june": true, "july": true, "august": true, "september": true, "october": true,
	"november": true, "december": true,
}

// tokenize splits a string into normalized lowercase tokens.
// Removes punctuation, stop words, single characters, and pure numeric tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len([]rune(word)) <= 1 {
			continue
		}
		if dealStopWords[word] {
			continue
		}
		if isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// tokenSimilarity is the Jaccard similarity of the token sets of two texts
func tokenSimilarity(a, b string) float64 {
	return jaccard(tokenize(a), tokenize(b))
}

// jaccard returns |A ∩ B| / |A ∪ B| over token sets; 0 when either side is empty
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matched, _ := findIntersection(a, b)
	return float64(matched) / float64(findUnion(a, b))
}

// findIntersection returns the count of common tokens and the list of matched tokens
func findIntersection(tokens1, tokens2 []string) (int, []string) {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, t := range tokens2 {
		if set[t] && !seen[t] {
			matched = append(matched, t)
			seen[t] = true
		}
	}

	return len(matched), matched
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}
