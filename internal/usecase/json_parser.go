package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/travelperks/dealdedup/internal/domain"
)

// jsonDealInput is one element of the JSON deal feed. Alternate field names
// (listing, expiry, shopOverline) are accepted for older feed exports.
type jsonDealInput struct {
	Vendor       string
	ShopOverline string
	Title        string
	ShopListing  string
	Listing      string
	ExpiryDate   string
	Expiry       string
	StartDate    string
	Exclusive    bool
	Ongoing      bool
}

// decodeDealInput reads one feed element field by field. A field of the wrong
// type is left empty and reported in skipped; only a non-object element fails.
func decodeDealInput(raw json.RawMessage) (in jsonDealInput, skipped []string, err error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return in, nil, err
	}
	if fields == nil {
		return in, nil, errors.New("element is null")
	}

	text := func(key string) string {
		var v string
		if data, ok := fields[key]; ok {
			if err := json.Unmarshal(data, &v); err != nil {
				skipped = append(skipped, key)
			}
		}
		return v
	}
	flag := func(key string) bool {
		var v bool
		if data, ok := fields[key]; ok {
			if err := json.Unmarshal(data, &v); err != nil {
				skipped = append(skipped, key)
			}
		}
		return v
	}

	in = jsonDealInput{
		Vendor:       text("vendor"),
		ShopOverline: text("shopOverline"),
		Title:        text("title"),
		ShopListing:  text("shopListing"),
		Listing:      text("listing"),
		ExpiryDate:   text("expiryDate"),
		Expiry:       text("expiry"),
		StartDate:    text("startDate"),
		Exclusive:    flag("exclusive"),
		Ongoing:      flag("ongoing"),
	}
	return in, skipped, nil
}

// ParseJSONDeals decodes a JSON array of feed deals. Anything other than an
// array yields domain.ErrInvalidJSON. Elements that are not objects or have no
// vendor are dropped.
func (p *DealParser) ParseJSONDeals(data []byte) ([]domain.StructuredDeal, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidJSON, err)
	}
	if elements == nil {
		// a literal null decodes without error
		return nil, fmt.Errorf("%w: expected an array of deals", domain.ErrInvalidJSON)
	}

	ref := p.now()
	deals := make([]domain.StructuredDeal, 0, len(elements))
	for i, raw := range elements {
		in, skipped, err := decodeDealInput(raw)
		if err != nil {
			if p.enableDebugLogging {
				log.Printf("[PARSE] JSON element %d skipped: %v", i, err)
			}
			continue
		}
		if len(skipped) > 0 && p.enableDebugLogging {
			log.Printf("[PARSE] JSON element %d: ignored mistyped fields %v", i, skipped)
		}

		vendor := in.Vendor
		if strings.TrimSpace(vendor) == "" {
			vendor = in.ShopOverline
		}
		vendor = Canonicalize(vendor)
		if vendor == "" {
			if p.enableDebugLogging {
				log.Printf("[PARSE] JSON element %d skipped: no vendor", i)
			}
			continue
		}

		deal := buildJSONDeal(vendor, in, ref)
		deal.Line = i + 1
		deals = append(deals, deal)
	}

	if p.enableDebugLogging {
		log.Printf("[PARSE] JSON deals parsed: %d of %d", len(deals), len(elements))
	}
	return deals, nil
}

// buildJSONDeal maps one feed element. Numeric signals are extracted from the
// title and listing so both sides of a comparison carry them.
func buildJSONDeal(vendor string, in jsonDealInput, ref time.Time) domain.StructuredDeal {
	title := strings.TrimSpace(in.Title)
	listing := strings.TrimSpace(firstNonEmpty(in.ShopListing, in.Listing))
	allText := strings.TrimSpace(title + " " + listing)

	deal := domain.StructuredDeal{
		Vendor:      vendor,
		Title:       title,
		ShopListing: listing,
		Exclusive:   in.Exclusive || DetectExclusive(allText),
		Ongoing:     in.Ongoing || DetectOngoing(allText),
		MoneyValues: ExtractMoneyValues(allText),
		Percents:    ExtractPercentageValues(allText),
		Numbers:     ExtractSpecialNumericAll(allText),
		Source:      domain.SourceJSON,
	}

	if exp := normalizeDateField(firstNonEmpty(in.ExpiryDate, in.Expiry), ref); exp != nil {
		deal.ExpiryDate = stringPtr(exp.YMD)
		deal.ExpiryYearInferred = exp.YearInferred
	}
	if start := normalizeDateField(in.StartDate, ref); start != nil {
		deal.StartDate = stringPtr(start.YMD)
		deal.StartYearInferred = start.YearInferred
	}

	return deal
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
