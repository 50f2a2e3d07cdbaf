package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Vendor snapping thresholds
const (
	vendorSnapThreshold   = 0.72 // Minimum similarity to snap to a known supplier
	vendorJaccardShortcut = 0.66 // Token overlap good enough to skip edit distance
)

var (
	vendorNonAlnumRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	vendorNoiseRegex    = regexp.MustCompile(`\b(cruises?|cruise\s*lines?|lines?|vacations?|resorts?|hotels?|group|collection|yachts?|international|the|by|and|com)\b`)
)

// knownSuppliers are the canonical display names of suppliers seen in the deal feed
var knownSuppliers = []string{
	"Abercrombie & Kent", "Adventures by Disney", "African Travel", "Ama Waterways",
	"American Airline Vacations", "American Cruise Line", "Aulani, A Disney Resort & Spa",
	"Avalon Waterways", "Azamara", "Beaches", "BlueSky Tours", "Breathless", "Carnival",
	"Celebrity Cruises", "CIE Tours", "Club Med", "Collette", "CroisiEurope",
	"Crystal Cruises", "Cunard", "Delta Vacations", "Disney Cruise Line", "Disneyland",
	"DisneyWorld", "Dreams", "El Dorado Spa Resorts & Hotels", "Emerald Cruises",
	"Excellence Resorts", "Explora Journeys", "Four Seasons Yachts", "Funjet",
	"G Adventures", "Globus Journeys", "Great Safaris", "Hard Rock Hotels",
	"Holland America Line", "Hurtigruten", "Iberostar Hotels & Resorts",
	"Karisma Hotels & Resorts", "Lindblad Expeditions & National Geographic",
	"MSC Cruises", "Norwegian", "Oceania Cruises", "Outrigger Hotels & Resorts",
	"Palace Resorts", "Paul Gauguin Cruises", "Ponant", "Princess", "Project Expedition",
	"Regent Seven Seas Cruises", "Ritz-Carlton Yacht Collection", "RIU Hotels & Resorts",
	"Riverside Cruises", "Riviera River Cruises", "Rocky Mountaineer", "Royal Caribbean",
	"Sandals", "Scenic Eclipse Ocean Voyages", "Scenic River", "Seabourn", "Secrets",
	"Shore Excursions Group", "Silversea", "Southwest Vacations", "Star Clippers",
	"Tauck Cruises", "Tauck Tours", "TourSales.com", "Trafalgar", "UnCruise Adventures",
	"Uniworld", "United Vacations", "Viking Ocean", "Viking River", "Viator",
	"Virgin Voyages", "Villas of Distinction", "Windstar", "Zoëtry Wellness & Spa Resorts",
	"Atlas Ocean Voyages",
}

// vendorAliases maps lowercase abbreviations and variants to canonical names
var vendorAliases = map[string]string{
	"american airlines vacations": "American Airline Vacations",
	"american airline vacations":  "American Airline Vacations",
	"american airlines vacation":  "American Airline Vacations",
	"aa vacations":                "American Airline Vacations",
	"american cruise lines":       "American Cruise Line",

	"royal":                        "Royal Caribbean",
	"rci":                          "Royal Caribbean",
	"rccl":                         "Royal Caribbean",
	"rcc":                          "Royal Caribbean",
	"royal caribbean international": "Royal Caribbean",

	"norwegian cruise":      "Norwegian",
	"norwegian cruise line": "Norwegian",
	"ncl":                   "Norwegian",

	"disney cruise":  "Disney Cruise Line",
	"disney cruises": "Disney Cruise Line",
	"dcl":            "Disney Cruise Line",

	"celebrity":             "Celebrity Cruises",
	"celebrity cruise line": "Celebrity Cruises",

	"virgin":        "Virgin Voyages",
	"virgin cruise": "Virgin Voyages",

	"holland":          "Holland America Line",
	"holland america":  "Holland America Line",
	"hal":              "Holland America Line",
	"princess cruises": "Princess",
	"carnival cruise":  "Carnival",
	"carnival cruises": "Carnival",
	"ccl":              "Carnival",

	"msc":            "MSC Cruises",
	"viking":         "Viking Ocean",
	"viking cruises": "Viking Ocean",

	"atlas":       "Atlas Ocean Voyages",
	"atlas ocean": "Atlas Ocean Voyages",

	"crystal":              "Crystal Cruises",
	"cunard cruises":       "Cunard",
	"emerald":              "Emerald Cruises",
	"explora":              "Explora Journeys",
	"four seasons":         "Four Seasons Yachts",
	"four seasons yacht":   "Four Seasons Yachts",
	"fun jet":              "Funjet",
	"oceania":              "Oceania Cruises",
	"paul gauguin":         "Paul Gauguin Cruises",
	"ponant cruises":       "Ponant",
	"regent":               "Regent Seven Seas Cruises",
	"regent seven seas":    "Regent Seven Seas Cruises",
	"seven seas":           "Regent Seven Seas Cruises",
	"rssc":                 "Regent Seven Seas Cruises",
	"ritz-carlton":         "Ritz-Carlton Yacht Collection",
	"ritz carlton":         "Ritz-Carlton Yacht Collection",
	"ritz-carlton yacht":   "Ritz-Carlton Yacht Collection",
	"seabourn cruises":     "Seabourn",
	"silversea cruises":    "Silversea",
	"star clipper":         "Star Clippers",
	"tauck":                "Tauck Cruises",
	"viking river cruises": "Viking River",
	"avalon":               "Avalon Waterways",
	"ama":                  "Ama Waterways",
	"amawaterways":         "Ama Waterways",
	"croisi europe":        "CroisiEurope",
	"croisi-europe":        "CroisiEurope",
	"riverside":            "Riverside Cruises",
	"riviera":              "Riviera River Cruises",
	"riviera river":        "Riviera River Cruises",
	"tauck tour":           "Tauck Tours",
	"uniworld cruises":     "Uniworld",
	"lindblad":             "Lindblad Expeditions & National Geographic",
	"lindblad expeditions": "Lindblad Expeditions & National Geographic",
	"national geographic":  "Lindblad Expeditions & National Geographic",
	"hurtigruten cruises":  "Hurtigruten",
	"disney land":          "Disneyland",
	"disney world":         "DisneyWorld",
	"aulani":               "Aulani, A Disney Resort & Spa",
	"a disney resort":      "Aulani, A Disney Resort & Spa",
	"clubmed":              "Club Med",
	"el dorado":            "El Dorado Spa Resorts & Hotels",
	"el dorado spa":        "El Dorado Spa Resorts & Hotels",
	"dreams resorts":       "Dreams",
	"excellence":           "Excellence Resorts",
	"hard rock":            "Hard Rock Hotels",
	"iberostar":            "Iberostar Hotels & Resorts",
	"iberostar hotels":     "Iberostar Hotels & Resorts",
	"karisma":              "Karisma Hotels & Resorts",
	"outrigger":            "Outrigger Hotels & Resorts",
	"outrigger hotels":     "Outrigger Hotels & Resorts",
	"palace":               "Palace Resorts",
	"riu":                  "RIU Hotels & Resorts",
	"riu hotels":           "RIU Hotels & Resorts",
	"delta":                "Delta Vacations",
	"southwest":            "Southwest Vacations",
	"united":               "United Vacations",
	"villas":               "Villas of Distinction",
	"zoetry":               "Zoëtry Wellness & Spa Resorts",
	"zoëtry":               "Zoëtry Wellness & Spa Resorts",
	"bluesky":              "BlueSky Tours",
	"blue sky tours":       "BlueSky Tours",
	"cie":                  "CIE Tours",
	"project expeditions":  "Project Expedition",
	"shore excursions":     "Shore Excursions Group",
	"toursales":            "TourSales.com",
	"tour sales":           "TourSales.com",
}

// vendorCandidates is the de-duplicated set of snapping targets
var vendorCandidates = buildVendorCandidates()

func buildVendorCandidates() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range knownSuppliers {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	// Alias targets not in the supplier list still need to be reachable
	var extra []string
	for _, s := range vendorAliases {
		if !seen[s] {
			seen[s] = true
			extra = append(extra, s)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Canonicalize normalizes a free-form vendor name to its canonical display name.
// Lookup order: alias table, known supplier list, fuzzy snap to a known supplier,
// then title-casing of each token. Empty input yields an empty string.
func Canonicalize(raw string) string {
	collapsed := strings.Join(strings.Fields(raw), " ")
	if collapsed == "" {
		return ""
	}
	lower := strings.ToLower(collapsed)

	if canonical, ok := vendorAliases[lower]; ok {
		return canonical
	}

	for _, supplier := range knownSuppliers {
		if strings.ToLower(supplier) == lower {
			return supplier
		}
	}

	best, bestScore := "", 0.0
	for _, candidate := range vendorCandidates {
		if sim := VendorSimilarity(collapsed, candidate); sim > bestScore {
			best, bestScore = candidate, sim
		}
	}
	if bestScore >= vendorSnapThreshold {
		return best
	}

	// cases.Caser is stateful, so build one per call
	return cases.Title(language.English).String(collapsed)
}

// SameVendor reports whether two raw vendor names canonicalize identically
func SameVendor(a, b string) bool {
	return Canonicalize(a) == Canonicalize(b)
}

// VendorSimilarity scores two vendor names in [0,1] using token overlap,
// falling back to a Levenshtein ratio on the collapsed tokens.
func VendorSimilarity(a, b string) float64 {
	at := vendorTokens(a)
	bt := vendorTokens(b)
	if len(at) == 0 || len(bt) == 0 {
		return 0
	}

	j := jaccard(at, bt)
	if j >= vendorJaccardShortcut {
		return j
	}

	as, bs := strings.Join(at, ""), strings.Join(bt, "")
	maxLen := len([]rune(as))
	if l := len([]rune(bs)); l > maxLen {
		maxLen = l
	}
	ratio := 1 - float64(levenshtein.ComputeDistance(as, bs))/float64(maxLen)
	if ratio > j {
		return ratio
	}
	return j
}

// vendorTokens lowercases a vendor name and strips corporate noise words
func vendorTokens(v string) []string {
	s := strings.ToLower(v)
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "ë", "e")
	s = vendorNonAlnumRegex.ReplaceAllString(s, " ")
	s = vendorNoiseRegex.ReplaceAllString(s, " ")
	return strings.Fields(s)
}
