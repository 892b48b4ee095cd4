package core

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(s string) []decimal.Decimal {
	return []decimal.Decimal{decimal.RequireFromString(s)}
}

func testReference() *Reference {
	return &Reference{
		Countries: []Country{
			{ID: 1, Code: "fr", Name: "France", Names: map[string]string{"en_US": "France", "fr_FR": "France"}},
			{ID: 2, Code: "US", Name: "United States", Names: map[string]string{"fr_FR": "États-Unis"}},
			{ID: 3, Code: "DE", Name: "Germany", Names: map[string]string{"fr_FR": "Allemagne", "de_DE": "Deutschland"}},
		},
		EUCountryCodes: []string{"FR", "DE", "XX"},
		Banks:          []Bank{{ID: 21, BIC: "bnpafrpp", Name: "BNP Paribas"}},
		Titles:         map[string]int64{"mister": 11, "king": 99},
		FiscalClassifications: []FiscalClassification{
			{ID: 31, Name: "TVA 20%", PurchaseRates: pct("20"), SaleRates: pct("20.000")},
			{ID: 32, Name: "TVA 5.5%", PurchaseRates: pct("5.5"), SaleRates: pct("5.5")},
			{ID: 33, Name: "Exempt"},
			{ID: 34, Name: "Mixed", PurchaseRates: []decimal.Decimal{decimal.NewFromInt(20), decimal.NewFromInt(10)}, SaleRates: pct("20")},
		},
		Currencies:        map[string]int64{"eur": 1},
		Categories:        map[string]int64{"All": 5},
		Products:          []ProductRef{{ID: 101, DisplayName: "Widget", Barcode: "4006381333931", DefaultCode: "A1"}},
		Accounts:          map[string]int64{"411": 1},
		Routes:            map[string]int64{"buy": 41},
		DefaultLocationID: 8,
	}
}

func TestBuildCache(t *testing.T) {
	store := &fakeReference{ref: testReference()}

	c, err := BuildCache(context.Background(), store, &fakeResolver{}, "fr")
	require.NoError(t, err)

	assert.Equal(t, "FR", c.HomeCountryCode)
	assert.Equal(t, int64(1), c.HomeCountryID)
	assert.Equal(t, map[int64]bool{1: true, 3: true}, c.EUCountryIDs)

	assert.Equal(t, "US", c.CountryNameToCode["usa"])
	assert.Equal(t, "US", c.CountryNameToCode["etatsunis"])
	assert.Equal(t, "DE", c.CountryNameToCode["allemagne"])
	assert.Equal(t, "DE", c.CountryNameToCode["deutschland"])
	assert.Equal(t, int64(1), c.CountryCodeToID["FR"])
	assert.Equal(t, "FR", c.CountryIDToCode[1])
	assert.Equal(t, "Germany", c.CountryCodeToName["DE"])

	assert.Equal(t, int64(21), c.BankBICToID["BNPAFRPP"])
	assert.Equal(t, map[string]int64{"mister": 11}, c.TitleCodeToID)
	assert.Equal(t, map[int]int64{200: 31, 55: 32, 0: 33}, c.VATRateToFiscalID)
	assert.Equal(t, int64(1), c.CurrencyToID["EUR"])
	assert.Equal(t, "Widget (ID 101)", c.ProductCodes["A1"])
	assert.Equal(t, "Widget (ID 101)", c.ProductBarcodes["4006381333931"])
	assert.Empty(t, c.POSCategoryToID)
	assert.Equal(t, int64(8), c.DefaultLocationID)
	assert.Zero(t, c.TokensUsed)
	assert.Empty(t, c.Logs)
}

func TestBuildCache_MissingCredential(t *testing.T) {
	store := &fakeReference{ref: testReference()}

	_, err := BuildCache(context.Background(), store, nil, "FR")

	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestBuildCache_FiscalRateMismatch(t *testing.T) {
	ref := testReference()
	ref.FiscalClassifications = append(ref.FiscalClassifications, FiscalClassification{
		ID: 35, Name: "Broken", PurchaseRates: pct("20"), SaleRates: pct("10"),
	})

	_, err := BuildCache(context.Background(), &fakeReference{ref: ref}, &fakeResolver{}, "FR")

	require.ErrorIs(t, err, ErrFiscalClassification)
	assert.Contains(t, err.Error(), "Broken (ID 35)")
}
