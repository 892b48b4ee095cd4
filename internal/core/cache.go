package core

// cache.go builds the per-batch lookup cache.
//
// The cache is a snapshot of the reference store taken at batch start plus
// the records created during the batch. It is owned by a single batch and has
// no locking: rows are processed one at a time and later rows depend on the
// uniqueness indexes updated by earlier ones.

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// TitleCodes is the closed set of accepted title codes.
var TitleCodes = []string{"madam", "miss", "mister", "doctor", "prof"}

// Cache holds the lookup tables and the log of one batch.
type Cache struct {
	HomeCountryCode string
	HomeCountryID   int64
	EUCountryIDs    map[int64]bool

	CountryNameToCode map[string]string // Normalized name -> ISO code
	CountryCodeToID   map[string]int64
	CountryIDToCode   map[int64]string
	CountryCodeToName map[string]string

	BankBICToID   map[string]int64
	BankBICToName map[string]string
	TitleCodeToID map[string]int64

	VATRateToFiscalID map[int]int64 // Rate x10, 200 = 20%
	CurrencyToID      map[string]int64
	CategoryToID      map[string]int64
	POSCategoryToID   map[string]int64
	ProductBarcodes   map[string]string // Barcode -> "Name (ID n)"
	ProductCodes      map[string]string // Internal reference -> "Name (ID n)"
	AccountCodeToID   map[string]int64
	RouteCodeToID     map[string]int64
	DefaultLocationID int64

	TokensUsed int
	Logs       []LogEntry

	labels      ReferenceStore
	fieldLabels map[string]string
	accountKeys []string
}

// NewCache returns an empty cache for the given home country.
// Tests and BuildCache fill the maps.
func NewCache(homeCountry string) *Cache {
	return &Cache{
		HomeCountryCode:   strings.ToUpper(homeCountry),
		EUCountryIDs:      make(map[int64]bool),
		CountryNameToCode: map[string]string{"usa": "US", "etatsunis": "US"},
		CountryCodeToID:   make(map[string]int64),
		CountryIDToCode:   make(map[int64]string),
		CountryCodeToName: make(map[string]string),
		BankBICToID:       make(map[string]int64),
		BankBICToName:     make(map[string]string),
		TitleCodeToID:     make(map[string]int64),
		VATRateToFiscalID: make(map[int]int64),
		CurrencyToID:      make(map[string]int64),
		CategoryToID:      make(map[string]int64),
		POSCategoryToID:   make(map[string]int64),
		ProductBarcodes:   make(map[string]string),
		ProductCodes:      make(map[string]string),
		AccountCodeToID:   make(map[string]int64),
		RouteCodeToID:     make(map[string]int64),
		fieldLabels:       make(map[string]string),
	}
}

// BuildCache loads the reference data of a batch in one pass.
//
// A nil resolver means the resolver credential is not configured, which is
// fatal. Missing optional reference data (point of sale categories, routes,
// warehouse) leaves the matching map empty.
func BuildCache(ctx context.Context, store ReferenceStore, resolver CountryResolver, homeCountry string) (*Cache, error) {
	if resolver == nil {
		return nil, ErrMissingCredential
	}

	ref, err := store.LoadReference(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	c := NewCache(homeCountry)
	c.labels = store

	for _, country := range ref.Countries {
		code := strings.ToUpper(country.Code)
		c.AddCountry(country.ID, code, country.Name)
		for _, name := range country.Names {
			if key := NormalizeCountryName(name); key != "" {
				c.CountryNameToCode[key] = code
			}
		}
	}
	c.HomeCountryID = c.CountryCodeToID[c.HomeCountryCode]
	for _, code := range ref.EUCountryCodes {
		if id, ok := c.CountryCodeToID[strings.ToUpper(code)]; ok {
			c.EUCountryIDs[id] = true
		}
	}

	for _, bank := range ref.Banks {
		bic := strings.ToUpper(bank.BIC)
		c.BankBICToID[bic] = bank.ID
		c.BankBICToName[bic] = bank.Name
	}
	for _, code := range TitleCodes {
		if id, ok := ref.Titles[code]; ok {
			c.TitleCodeToID[code] = id
		}
	}

	if err := c.loadFiscalClassifications(ref.FiscalClassifications); err != nil {
		return nil, err
	}

	for name, id := range ref.Currencies {
		c.CurrencyToID[strings.ToUpper(name)] = id
	}
	for name, id := range ref.Categories {
		c.CategoryToID[name] = id
	}
	for name, id := range ref.POSCategories {
		c.POSCategoryToID[name] = id
	}
	for _, p := range ref.Products {
		c.IndexProduct(p)
	}
	for code, id := range ref.Accounts {
		c.AccountCodeToID[code] = id
	}
	for code, id := range ref.Routes {
		c.RouteCodeToID[code] = id
	}
	c.DefaultLocationID = ref.DefaultLocationID

	slog.Debug("lookup cache built",
		"countries", len(c.CountryCodeToID),
		"country_names", len(c.CountryNameToCode),
		"banks", len(c.BankBICToID),
		"fiscal_classifications", len(c.VATRateToFiscalID),
		"products", len(c.ProductCodes)+len(c.ProductBarcodes),
		"accounts", len(c.AccountCodeToID),
	)
	return c, nil
}

// AddCountry registers a country under its id, code and display name.
func (c *Cache) AddCountry(id int64, code, name string) {
	c.CountryCodeToID[code] = id
	c.CountryIDToCode[id] = code
	c.CountryCodeToName[code] = name
	if key := NormalizeCountryName(name); key != "" {
		c.CountryNameToCode[key] = code
	}
}

// IndexProduct adds a product to the barcode and internal reference indexes.
func (c *Cache) IndexProduct(p ProductRef) {
	label := fmt.Sprintf("%s (ID %d)", p.DisplayName, p.ID)
	if p.Barcode != "" {
		c.ProductBarcodes[p.Barcode] = label
	}
	if p.DefaultCode != "" {
		c.ProductCodes[p.DefaultCode] = label
	}
}

// AddBank records a bank created during the batch.
func (c *Cache) AddBank(bic string, created Created) {
	c.BankBICToID[bic] = created.ID
	c.BankBICToName[bic] = created.DisplayName
}

// Log appends an entry to the batch log.
func (c *Cache) Log(row Row, field string, value any, msg string, reset bool) {
	c.Logs = append(c.Logs, LogEntry{
		Message: msg,
		Value:   stringValue(value),
		Row:     row,
		Field:   field,
		Reset:   reset,
	})
}

func (c *Cache) loadFiscalClassifications(fcs []FiscalClassification) error {
	for _, fc := range fcs {
		switch {
		case len(fc.PurchaseRates) == 1 && len(fc.SaleRates) == 1:
			purchase := rateKey(fc.PurchaseRates[0])
			sale := rateKey(fc.SaleRates[0])
			if purchase != sale {
				return fmt.Errorf("%w: on %s (ID %d), the purchase tax rate (%d) is different from the sale tax rate (%d)",
					ErrFiscalClassification, fc.Name, fc.ID, purchase, sale)
			}
			c.VATRateToFiscalID[sale] = fc.ID
		case len(fc.PurchaseRates) == 0 && len(fc.SaleRates) == 0:
			c.VATRateToFiscalID[0] = fc.ID
		default:
			slog.Warn("ignoring fiscal classification", "name", fc.Name, "id", fc.ID)
		}
	}
	slog.Info("fiscal classification map loaded", "rates", c.knownRates())
	return nil
}

// rateKey converts a tax amount in percent to the integer rate x10.
func rateKey(amount decimal.Decimal) int {
	return int(amount.Shift(1).Round(0).IntPart())
}

func (c *Cache) knownRates() []int {
	rates := make([]int, 0, len(c.VATRateToFiscalID))
	for r := range c.VATRateToFiscalID {
		rates = append(rates, r)
	}
	sort.Ints(rates)
	return rates
}

// accountCodes returns the known account codes in ascending order.
// The slice is rebuilt when the account map grew since the last call.
func (c *Cache) accountCodes() []string {
	if len(c.accountKeys) != len(c.AccountCodeToID) {
		c.accountKeys = make([]string, 0, len(c.AccountCodeToID))
		for code := range c.AccountCodeToID {
			c.accountKeys = append(c.accountKeys, code)
		}
		sort.Strings(c.accountKeys)
	}
	return c.accountKeys
}
