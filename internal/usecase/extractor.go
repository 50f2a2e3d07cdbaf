package usecase

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	ymdLayout     = "2006-01-02"
	displayLayout = "Jan 2, 2006"

	// twoDigitYearPivot splits two-digit years between centuries: >= pivot is 19xx
	twoDigitYearPivot = 70
)

// Money patterns. A bare number only counts when adjacent to a currency marker.
const moneyNumber = `(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?`

var (
	moneyPrefixRegex   = regexp.MustCompile(`\$\s*` + moneyNumber)
	moneySuffixRegex   = regexp.MustCompile(`(?i)` + moneyNumber + `\s*(?:usd|dollars?|euros?|eur)\b`)
	euroSuffixRegex    = regexp.MustCompile(moneyNumber + `\s*€`)
	euroPrefixRegex    = regexp.MustCompile(`€\s*` + moneyNumber)
	percentRegex       = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:%|percent\b)`)
	ordinalDigitRegex  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\s+` + partyNouns)
	ordinalWordRegex   = regexp.MustCompile(`(?i)\b(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth)\s+` + partyNouns)
	buyGetRegex        = regexp.MustCompile(`(?i)\bbuy\s+(\d+|` + countWords + `)\s+get\s+(\d+|` + countWords + `)\b`)
	xForYRegex         = regexp.MustCompile(`(?i)\b(\d+)\s*for\s*\$?\s*(\d+(?:\.\d+)?)\b`)
	isoDateRegex       = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	usDateRegex        = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
	monthNameDateRegex = regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
	ongoingRegex       = regexp.MustCompile(`(?i)\b(?:on-?going|no\s+(?:end|expiry|expiration)(?:\s+date)?|until\s+further\s+notice|call\s+for\s+details|year[-\s]round|open[-\s]ended|while\s+supplies\s+last)\b`)
	exclusiveRegex     = regexp.MustCompile(`(?i)\b(?:exclusives?|exclusively|members?[-\s]only)\b`)
)

const (
	partyNouns = `(?:guests?|passengers?|persons?|people|travell?ers?|adults?|child(?:ren)?|kids?|nights?|cabins?|staterooms?|rooms?)\b`
	countWords = `one|two|three|four|five|six|seven|eight|nine|ten`
	monthNames = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`
)

var wordNumbers = map[string]float64{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// DateInfo is a date found in deal text
type DateInfo struct {
	YMD     string    `json:"ymd"`
	Date    time.Time `json:"date"`
	Display string    `json:"display"`
	Raw     string    `json:"raw"`
	// YearInferred is set when the text gave no year and the reference year was used
	YearInferred bool `json:"yearInferred,omitempty"`
}

// ExtractMoneyValues returns the distinct currency amounts in text, ascending
func ExtractMoneyValues(text string) []float64 {
	var vals []float64
	for _, re := range []*regexp.Regexp{moneyPrefixRegex, moneySuffixRegex, euroSuffixRegex, euroPrefixRegex} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, ok := parseAmount(m[1] + m[2]); ok {
				vals = append(vals, v)
			}
		}
	}
	return sortedUnique(vals)
}

// ExtractPercentageValues returns the distinct percentages in text, ascending
func ExtractPercentageValues(text string) []float64 {
	var vals []float64
	for _, m := range percentRegex.FindAllStringSubmatch(text, -1) {
		if v, ok := parseAmount(m[1]); ok {
			vals = append(vals, v)
		}
	}
	return sortedUnique(vals)
}

// ExtractSpecialNumericAll returns ordinal party counts ("2nd guest"),
// "buy X get Y" pairs and "X for $Y" pairs, distinct and ascending.
func ExtractSpecialNumericAll(text string) []float64 {
	var vals []float64
	for _, m := range ordinalDigitRegex.FindAllStringSubmatch(text, -1) {
		if v, ok := parseAmount(m[1]); ok {
			vals = append(vals, v)
		}
	}
	for _, m := range ordinalWordRegex.FindAllStringSubmatch(text, -1) {
		vals = append(vals, wordNumbers[strings.ToLower(m[1])])
	}
	for _, m := range buyGetRegex.FindAllStringSubmatch(text, -1) {
		for _, g := range m[1:3] {
			if v, ok := parseCount(g); ok {
				vals = append(vals, v)
			}
		}
	}
	for _, m := range xForYRegex.FindAllStringSubmatch(text, -1) {
		for _, g := range m[1:3] {
			if v, ok := parseAmount(g); ok {
				vals = append(vals, v)
			}
		}
	}
	return sortedUnique(vals)
}

// dateCandidate is a raw date match before year resolution
type dateCandidate struct {
	start, end       int
	year, month, day int
	hasYear          bool
	raw              string
}

// ExtractAllDatesWithInfo returns the valid dates in text in order of appearance,
// deduplicated by normalized date. A date without a year borrows the year of the
// next dated mention in the text (a range like "12/1 - 1/15/2025"), otherwise
// the year of ref (zero ref means now).
func ExtractAllDatesWithInfo(text string, ref time.Time) []DateInfo {
	if ref.IsZero() {
		ref = time.Now()
	}

	var cands []dateCandidate
	overlaps := func(start, end int) bool {
		for _, c := range cands {
			if start < c.end && end > c.start {
				return true
			}
		}
		return false
	}

	for _, idx := range isoDateRegex.FindAllStringSubmatchIndex(text, -1) {
		cands = append(cands, dateCandidate{
			start: idx[0], end: idx[1],
			year:  atoi(text[idx[2]:idx[3]]), month: atoi(text[idx[4]:idx[5]]), day: atoi(text[idx[6]:idx[7]]),
			hasYear: true, raw: text[idx[0]:idx[1]],
		})
	}
	for _, idx := range monthNameDateRegex.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(idx[0], idx[1]) {
			continue
		}
		c := dateCandidate{
			start: idx[0], end: idx[1],
			month: monthFromName(text[idx[2]:idx[3]]), day: atoi(text[idx[4]:idx[5]]),
			raw: text[idx[0]:idx[1]],
		}
		if idx[6] >= 0 {
			c.year, c.hasYear = atoi(text[idx[6]:idx[7]]), true
		}
		cands = append(cands, c)
	}
	for _, idx := range usDateRegex.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(idx[0], idx[1]) {
			continue
		}
		c := dateCandidate{
			start: idx[0], end: idx[1],
			month: atoi(text[idx[2]:idx[3]]), day: atoi(text[idx[4]:idx[5]]),
			raw: text[idx[0]:idx[1]],
		}
		if idx[6] >= 0 {
			c.year, c.hasYear = expandYear(text[idx[6]:idx[7]]), true
		}
		cands = append(cands, c)
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].start < cands[j].start })

	var dates []DateInfo
	seen := make(map[string]bool)
	for i, c := range cands {
		year, inferred := c.year, false
		if !c.hasYear {
			year, inferred = ref.Year(), true
			for _, next := range cands[i+1:] {
				if !next.hasYear {
					continue
				}
				if d, ok := makeDate(next.year, next.month, next.day); ok {
					year, inferred = next.year, false
					if own, ok := makeDate(year, c.month, c.day); ok && own.After(d) {
						year--
					}
				}
				break
			}
		}
		d, ok := makeDate(year, c.month, c.day)
		if !ok {
			continue
		}
		ymd := d.Format(ymdLayout)
		if seen[ymd] {
			continue
		}
		seen[ymd] = true
		dates = append(dates, DateInfo{
			YMD:          ymd,
			Date:         d,
			Display:      d.Format(displayLayout),
			Raw:          c.raw,
			YearInferred: inferred,
		})
	}
	return dates
}

// ExtractNormalizedExpiry returns the last date in text by position, or nil.
// Deal text conventionally states the end date last ("... ends 12/31").
func ExtractNormalizedExpiry(text string, ref time.Time) *DateInfo {
	dates := ExtractAllDatesWithInfo(text, ref)
	if len(dates) == 0 {
		return nil
	}
	last := dates[len(dates)-1]
	return &last
}

// DetectOngoing reports whether text implies no fixed end date
func DetectOngoing(text string) bool {
	return ongoingRegex.MatchString(text)
}

// DetectExclusive reports whether text carries an exclusivity marker
func DetectExclusive(text string) bool {
	return exclusiveRegex.MatchString(text)
}

// normalizeDateField parses a feed-supplied date. A leading YYYY-MM-DD is taken
// as-is (timezone suffixes are ignored); otherwise the text date patterns apply.
func normalizeDateField(s string, ref time.Time) *DateInfo {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(s) >= 10 {
		if d, err := time.Parse(ymdLayout, s[:10]); err == nil {
			return &DateInfo{YMD: d.Format(ymdLayout), Date: d, Display: d.Format(displayLayout), Raw: s}
		}
	}
	return ExtractNormalizedExpiry(s, ref)
}

// anchorToYear moves a date whose year was inferred to whichever of the
// years around target puts it closest to target.
func anchorToYear(inferred, target time.Time) time.Time {
	best := inferred
	bestDiff := absDays(inferred, target)
	for _, y := range []int{target.Year() - 1, target.Year(), target.Year() + 1} {
		d, ok := makeDate(y, int(inferred.Month()), inferred.Day())
		if !ok {
			continue
		}
		if diff := absDays(d, target); diff < bestDiff {
			best, bestDiff = d, diff
		}
	}
	return best
}

// absDays returns the whole number of days between two dates
func absDays(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

// makeDate builds a UTC date, rejecting overflowed values like 2/30
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func expandYear(s string) int {
	y := atoi(s)
	if len(s) == 2 {
		if y >= twoDigitYearPivot {
			return 1900 + y
		}
		return 2000 + y
	}
	return y
}

func monthFromName(name string) int {
	name = strings.ToLower(name)
	if len(name) > 3 {
		name = name[:3]
	}
	return monthNumbers[name]
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseCount(s string) (float64, bool) {
	if v, ok := wordNumbers[strings.ToLower(s)]; ok {
		return v, true
	}
	return parseAmount(s)
}

// sortedUnique sorts ascending and drops duplicates; never returns nil
func sortedUnique(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	sort.Float64s(vals)
	for i, v := range vals {
		if i > 0 && v == vals[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
