package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelperks/dealdedup/internal/domain"
)

func TestParseJSONDeals(t *testing.T) {
	parser := newTestParser(refDate)

	data := []byte(`[
		{"vendor": "RCI", "title": "Save $150 per cabin", "shopListing": "Royal Caribbean sailings", "expiryDate": "2024-12-31"},
		{"vendor": "Celebrity", "title": "Up to 30% off", "startDate": "2024-07-01", "expiryDate": "2024-09-30T00:00:00Z", "exclusive": true}
	]`)

	deals, err := parser.ParseJSONDeals(data)
	require.NoError(t, err)
	require.Len(t, deals, 2)

	first := deals[0]
	assert.Equal(t, "Royal Caribbean", first.Vendor)
	assert.Equal(t, "Save $150 per cabin", first.Title)
	assert.Equal(t, "Royal Caribbean sailings", first.ShopListing)
	assert.Equal(t, []float64{150}, first.MoneyValues)
	require.NotNil(t, first.ExpiryDate)
	assert.Equal(t, "2024-12-31", *first.ExpiryDate)
	assert.False(t, first.ExpiryYearInferred)
	assert.Nil(t, first.StartDate)
	assert.Equal(t, domain.SourceJSON, first.Source)
	assert.Equal(t, 1, first.Line)

	second := deals[1]
	assert.Equal(t, "Celebrity Cruises", second.Vendor)
	assert.True(t, second.Exclusive)
	assert.Equal(t, []float64{30}, second.Percents)
	require.NotNil(t, second.StartDate)
	assert.Equal(t, "2024-07-01", *second.StartDate)
	assert.Equal(t, "2024-09-30", *second.ExpiryDate)
}

func TestParseJSONDeals_AlternateFields(t *testing.T) {
	parser := newTestParser(refDate)

	data := []byte(`[
		1,
		{"title": "No vendor anywhere"},
		{"shopOverline": "NCL", "title": "Exclusive: 2nd guest free", "listing": "Free at sea", "expiry": "Dec 31, 2024", "ongoing": true}
	]`)

	deals, err := parser.ParseJSONDeals(data)
	require.NoError(t, err)
	require.Len(t, deals, 1)

	d := deals[0]
	assert.Equal(t, "Norwegian", d.Vendor)
	assert.Equal(t, "Free at sea", d.ShopListing)
	assert.True(t, d.Exclusive, "exclusivity detected from text")
	assert.True(t, d.Ongoing)
	assert.Equal(t, []float64{2}, d.Numbers)
	require.NotNil(t, d.ExpiryDate)
	assert.Equal(t, "2024-12-31", *d.ExpiryDate)
	assert.Equal(t, 3, d.Line)
}

func TestParseJSONDeals_InvalidInput(t *testing.T) {
	parser := newTestParser(refDate)

	tests := []struct {
		name  string
		input string
	}{
		{"not json", "not json"},
		{"object instead of array", `{"vendor": "RCI"}`},
		{"null", "null"},
		{"empty body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deals, err := parser.ParseJSONDeals([]byte(tt.input))
			if !errors.Is(err, domain.ErrInvalidJSON) {
				t.Errorf("error = %v, want ErrInvalidJSON", err)
			}
			if deals != nil {
				t.Errorf("deals = %v, want nil", deals)
			}
		})
	}
}

func TestParseJSONDeals_EmptyArray(t *testing.T) {
	parser := newTestParser(refDate)

	deals, err := parser.ParseJSONDeals([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, deals)
	assert.Empty(t, deals)
}

func TestParseJSONDeals_MistypedFields(t *testing.T) {
	parser := newTestParser(refDate)

	data := []byte(`[
		{"vendor": "RCI", "title": "Save $150 per cabin", "exclusive": "yes", "expiryDate": 20241231},
		{"vendor": "NCL", "title": "Free wifi", "ongoing": true},
		null
	]`)

	deals, err := parser.ParseJSONDeals(data)
	require.NoError(t, err)
	require.Len(t, deals, 2)

	first := deals[0]
	assert.Equal(t, "Royal Caribbean", first.Vendor)
	assert.Equal(t, "Save $150 per cabin", first.Title)
	assert.Equal(t, []float64{150}, first.MoneyValues)
	assert.False(t, first.Exclusive)
	assert.Nil(t, first.ExpiryDate)

	assert.Equal(t, "Norwegian", deals[1].Vendor)
	assert.True(t, deals[1].Ongoing)
}

func TestDecodeDealInput(t *testing.T) {
	t.Run("reports mistyped fields", func(t *testing.T) {
		in, skipped, err := decodeDealInput([]byte(`{"vendor": "RCI", "title": 7, "exclusive": "yes", "ongoing": null}`))
		require.NoError(t, err)
		assert.Equal(t, "RCI", in.Vendor)
		assert.Empty(t, in.Title)
		assert.False(t, in.Exclusive)
		assert.False(t, in.Ongoing)
		assert.ElementsMatch(t, []string{"title", "exclusive"}, skipped)
	})

	t.Run("rejects non-objects", func(t *testing.T) {
		for _, raw := range []string{`1`, `"RCI"`, `[]`, `null`} {
			_, _, err := decodeDealInput([]byte(raw))
			assert.Error(t, err, raw)
		}
	})
}
