package usecase

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/travelperks/dealdedup/internal/domain"
)

// Strict match gate
const strictTitleSimilarity = 0.25

// Scoring weights
const (
	exclusiveBothBonus   = 35
	sharedMoneyBonus     = 25  // Per shared money value
	sharedPercentBonus   = 20  // Per shared percent value
	sharedNumberBonus    = 5   // Per shared generic number
	sharedNumberCap      = 30  // Cap on generic number bonus
	ongoingBothBonus     = 40
	endDateExactBonus    = 60
	endDateNearBonus     = 45
	startDateExactBonus  = 30
	startDateNearBonus   = 20
	dateToleranceDays    = 5
	titleKeywordWeight   = 1.5 // Applied to Jaccard × 100
	listingKeywordFactor = 0.6 // Listing overlap counts less than title overlap
)

// Hard reject toggles
const (
	rejectOnMoneyMismatch   = true
	rejectOnPercentMismatch = true
)

// ScoreResult is the additive score of one HQ/JSON pair
type ScoreResult struct {
	Score   int               `json:"score"`
	Reasons []string          `json:"reasons"`
	Flags   domain.MatchFlags `json:"flags"`
}

// IsStrictMatch reports whether a pair agrees closely enough to skip scoring:
// same vendor, equal expiry when both have one, intersecting money and
// percent sets when both have them, and title similarity of at least 0.25.
func IsStrictMatch(hq, js domain.StructuredDeal) bool {
	if hq.Vendor == "" || hq.Vendor != js.Vendor {
		return false
	}

	if hq.ExpiryDate != nil && js.ExpiryDate != nil {
		hqExp, jsExp, ok := comparableDates(hq.ExpiryDate, hq.ExpiryYearInferred, js.ExpiryDate, js.ExpiryYearInferred)
		if !ok || !hqExp.Equal(jsExp) {
			return false
		}
	}

	if len(hq.MoneyValues) > 0 && len(js.MoneyValues) > 0 && len(intersectValues(hq.MoneyValues, js.MoneyValues)) == 0 {
		return false
	}
	if len(hq.Percents) > 0 && len(js.Percents) > 0 && len(intersectValues(hq.Percents, js.Percents)) == 0 {
		return false
	}

	return tokenSimilarity(hq.Title, js.Title) >= strictTitleSimilarity
}

// ScoreDeal computes the additive compatibility score of an HQ deal against a
// JSON deal. A vendor mismatch returns 0 immediately. A money or percent
// conflict is a hard reject: the remaining checks still run so their reasons
// and flags are recorded, but the score is 0.
func ScoreDeal(hq, js domain.StructuredDeal) ScoreResult {
	var res ScoreResult

	if hq.Vendor == "" || hq.Vendor != js.Vendor {
		res.Reasons = []string{"Vendor mismatch"}
		return res
	}
	res.Flags.Vendor = true
	res.Reasons = append(res.Reasons, fmt.Sprintf("Vendor: %s (required)", hq.Vendor))

	score := 0
	add := func(points int, reason string) {
		score += points
		res.Reasons = append(res.Reasons, reason)
	}
	note := func(reason string) {
		res.Reasons = append(res.Reasons, reason)
	}

	// Exclusivity
	switch {
	case hq.Exclusive && js.Exclusive:
		add(exclusiveBothBonus, fmt.Sprintf("Both exclusive (+%d)", exclusiveBothBonus))
	case hq.Exclusive != js.Exclusive:
		res.Flags.ExclusiveFlag = true
		note(fmt.Sprintf("Exclusive on %s side only", exclusiveSide(hq.Exclusive)))
	}

	// Numeric gate
	rejected := false
	if len(hq.MoneyValues) > 0 && len(js.MoneyValues) > 0 {
		shared := intersectValues(hq.MoneyValues, js.MoneyValues)
		if len(shared) == 0 {
			res.Flags.NumberFlag = true
			note(fmt.Sprintf("Money mismatch: HQ %s vs JSON %s", formatMoney(hq.MoneyValues), formatMoney(js.MoneyValues)))
			rejected = rejected || rejectOnMoneyMismatch
		} else {
			points := sharedMoneyBonus * len(shared)
			add(points, fmt.Sprintf("Money match: %s (+%d)", formatMoney(shared), points))
		}
	}
	if len(hq.Percents) > 0 && len(js.Percents) > 0 {
		shared := intersectValues(hq.Percents, js.Percents)
		if len(shared) == 0 {
			res.Flags.NumberFlag = true
			note(fmt.Sprintf("Percentage mismatch: HQ %s vs JSON %s", formatPercents(hq.Percents), formatPercents(js.Percents)))
			rejected = rejected || rejectOnPercentMismatch
		} else {
			points := sharedPercentBonus * len(shared)
			add(points, fmt.Sprintf("Percentage match: %s (+%d)", formatPercents(shared), points))
		}
	}
	if shared := intersectValues(hq.Numbers, js.Numbers); len(shared) > 0 {
		points := sharedNumberBonus * len(shared)
		if points > sharedNumberCap {
			points = sharedNumberCap
		}
		add(points, fmt.Sprintf("Special numbers match: %s (+%d)", formatNumbers(shared), points))
	}

	// Dates
	if hq.Ongoing && js.Ongoing {
		add(ongoingBothBonus, fmt.Sprintf("Both ongoing (+%d)", ongoingBothBonus))
	}
	scoreDatePair(&res, add, note, "End date",
		hq.ExpiryDate, hq.ExpiryYearInferred, js.ExpiryDate, js.ExpiryYearInferred,
		endDateExactBonus, endDateNearBonus)
	scoreDatePair(&res, add, note, "Start date",
		hq.StartDate, hq.StartYearInferred, js.StartDate, js.StartYearInferred,
		startDateExactBonus, startDateNearBonus)

	// Keywords
	if sim := tokenSimilarity(hq.Title, js.Title); sim > 0 {
		points := int(math.Round(sim * 100 * titleKeywordWeight))
		add(points, fmt.Sprintf("Title keywords %.0f%% overlap (+%d)", sim*100, points))
	}
	if js.ShopListing != "" {
		hqListing := hq.ShopListing
		if hqListing == "" {
			hqListing = hq.Title
		}
		if sim := tokenSimilarity(hqListing, js.ShopListing); sim > 0 {
			points := int(math.Round(sim * 100 * titleKeywordWeight * listingKeywordFactor))
			add(points, fmt.Sprintf("Listing keywords %.0f%% overlap (+%d)", sim*100, points))
		}
	}

	if rejected {
		note("Rejected: conflicting amounts (score 0)")
		score = 0
	}
	res.Score = score
	return res
}

// scoreDatePair compares one pair of optional dates. Differences beyond the
// tolerance window set the date flag but never reject.
func scoreDatePair(
	res *ScoreResult,
	add func(int, string),
	note func(string),
	label string,
	hqDate *string, hqInferred bool,
	jsDate *string, jsInferred bool,
	exactBonus, nearBonus int,
) {
	switch {
	case hqDate == nil && jsDate == nil:
		return
	case hqDate == nil:
		note(fmt.Sprintf("%s only on JSON side (%s)", label, *jsDate))
		return
	case jsDate == nil:
		note(fmt.Sprintf("%s only on HQ side (%s)", label, *hqDate))
		return
	}

	hqT, jsT, ok := comparableDates(hqDate, hqInferred, jsDate, jsInferred)
	if !ok {
		note(fmt.Sprintf("%s unreadable", label))
		return
	}

	diff := absDays(hqT, jsT)
	switch {
	case diff == 0:
		add(exactBonus, fmt.Sprintf("%s exact match %s (+%d)", label, jsT.Format(ymdLayout), exactBonus))
	case diff <= dateToleranceDays:
		add(nearBonus, fmt.Sprintf("%s within %d days (%d apart) (+%d)", label, dateToleranceDays, diff, nearBonus))
	default:
		res.Flags.DateFlag = true
		note(fmt.Sprintf("%s mismatch: HQ %s vs JSON %s (%d days apart)",
			label, hqT.Format(ymdLayout), jsT.Format(ymdLayout), diff))
	}
}

// comparableDates parses both dates, re-anchoring a year-less side to the
// other side's year so results do not depend on the parse-time clock.
func comparableDates(a *string, aInferred bool, b *string, bInferred bool) (time.Time, time.Time, bool) {
	at, err := time.Parse(ymdLayout, *a)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	bt, err := time.Parse(ymdLayout, *b)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	switch {
	case aInferred && !bInferred:
		at = anchorToYear(at, bt)
	case bInferred && !aInferred:
		bt = anchorToYear(bt, at)
	}
	return at, bt, true
}

// intersectValues returns the values present in both ascending slices, ascending
func intersectValues(a, b []float64) []float64 {
	var out []float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

func exclusiveSide(hqExclusive bool) string {
	if hqExclusive {
		return "HQ"
	}
	return "JSON"
}

func formatMoney(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = "$" + formatNumber(v)
	}
	return strings.Join(parts, ", ")
}

func formatPercents(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatNumber(v) + "%"
	}
	return strings.Join(parts, ", ")
}

func formatNumbers(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, ", ")
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
