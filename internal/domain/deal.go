package domain

import "time"

// Deal sources
const (
	SourceHQ   = "hq"
	SourceJSON = "json"
)

// StructuredDeal is the normalized shape shared by HQ and JSON deals.
// Instances are built by the parsers and treated as read-only afterwards.
type StructuredDeal struct {
	Vendor      string    `json:"vendor"`
	Title       string    `json:"title"`
	ShopListing string    `json:"shopListing,omitempty"`
	Exclusive   bool      `json:"exclusive"`
	Ongoing     bool      `json:"ongoing"`
	StartDate   *string   `json:"startDate"`
	ExpiryDate  *string   `json:"expiryDate"`
	MoneyValues []float64 `json:"moneyValues"`
	Percents    []float64 `json:"percents"`
	Numbers     []float64 `json:"numbers"`

	// StartYearInferred and ExpiryYearInferred mark dates written without a year
	StartYearInferred  bool `json:"startYearInferred,omitempty"`
	ExpiryYearInferred bool `json:"expiryYearInferred,omitempty"`

	Source   string `json:"source"`
	Line     int    `json:"line,omitempty"`
	Original string `json:"original,omitempty"`
}

// MatchKind buckets a MatchResult
type MatchKind string

const (
	KindMatched     MatchKind = "matched"
	KindNeedsReview MatchKind = "needs_review"
)

// StrictMatchScore is the fixed score of a verified (strict) match
const StrictMatchScore = 999

// MatchFlags are the triage flags attached to a scored pair
type MatchFlags struct {
	Vendor        bool `json:"vendor"`
	NumberFlag    bool `json:"numberFlag"`
	DateFlag      bool `json:"dateFlag"`
	ExclusiveFlag bool `json:"exclusiveFlag"`
}

// MatchResult is the outcome of matching one HQ deal
type MatchResult struct {
	Kind        MatchKind       `json:"kind"`
	HQDeal      StructuredDeal  `json:"hqDeal"`
	Counterpart *StructuredDeal `json:"counterpart"`
	Score       int             `json:"score"`
	Strict      bool            `json:"strict"`
	Reasons     []string        `json:"reasons"`
	Flags       MatchFlags      `json:"flags"`
}

// MatchOutcome holds both result buckets in HQ input order
type MatchOutcome struct {
	Matched     []MatchResult `json:"matched"`
	NeedsReview []MatchResult `json:"needsReview"`
}

// Duplicate records an HQ deal dropped because it repeats an earlier one
type Duplicate struct {
	Original    StructuredDeal `json:"original"`
	DuplicateOf StructuredDeal `json:"duplicateOf"`
}

// MatchRequest is a full deduplication run request
type MatchRequest struct {
	HQText    string `json:"hqText"`
	JSONDeals []byte `json:"-"`
	// Threshold overrides the configured threshold when positive
	Threshold int `json:"threshold,omitempty"`
}

// MatchReport is the result of a deduplication run
type MatchReport struct {
	RunID       string        `json:"runId"`
	Threshold   int           `json:"threshold"`
	HQCount     int           `json:"hqCount"`
	JSONCount   int           `json:"jsonCount"`
	Matched     []MatchResult `json:"matched"`
	NeedsReview []MatchResult `json:"needsReview"`
	Duplicates  []Duplicate   `json:"duplicates"`
	Source      string        `json:"source"` // "Engine" or "Cache"
	GeneratedAt time.Time     `json:"generatedAt"`
}
