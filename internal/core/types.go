package core

// types.go defines the row, log and collaborator types of the pipeline.

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one line of import input: field name to raw value.
//
// Values are string, int, int64, float64, bool or nil. The "line" key is
// mandatory and only used to correlate logs; it never reaches the record store.
// A nil value means the field is absent or was cleared by a validator.
type Row map[string]any

// Line returns the source line reference of the row.
func (r Row) Line() string {
	v, ok := r["line"]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Str returns the string form of a field, or "" when absent.
func (r Row) Str(key string) string {
	return stringValue(r[key])
}

// Has reports whether a field carries a value that is not empty, false or zero.
func (r Row) Has(key string) bool {
	return truthy(r[key])
}

// clone returns a shallow copy of the row.
func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// LogEntry records one anomaly found while preparing a row.
// Entries are never modified once appended to the cache.
type LogEntry struct {
	Message string // What was wrong
	Value   string // The offending raw value
	Row     Row    // The source row, used for line and created-record lookup
	Field   string // "<entity>,<field>", e.g. "partner,vat"
	Reset   bool   // True if the value was discarded instead of imported
}

// Line returns the source line of the row the entry belongs to.
func (e LogEntry) Line() string {
	if e.Row == nil {
		return ""
	}
	return e.Row.Line()
}

// Outcome is the result of preparing one row.
type Outcome struct {
	Vals     Row  // Persistence-ready values (nil when Rejected)
	Rejected bool // The whole row is skipped

	// Pending holds creations staged while Options.DeferCreations is set.
	Pending []PendingCreation
}

// Options are the per-batch flags of an import.
type Options struct {
	EmailCheckDeliverability bool
	CreateBank               bool
	Inventory                bool
	LocationID               int64 // 0 falls back to the default warehouse location

	// DeferCreations stages bank and category creations until the row is
	// accepted instead of creating them while validating.
	DeferCreations bool
}

// DefaultOptions returns the options used when a caller sets none.
func DefaultOptions() Options {
	return Options{
		EmailCheckDeliverability: true,
		CreateBank:               true,
		Inventory:                true,
	}
}

// OptionOverrides change some Options of a batch. Nil fields keep the
// base value. Job files and API requests decode into it.
type OptionOverrides struct {
	EmailCheckDeliverability *bool  `json:"email_check_deliverability,omitempty" yaml:"email_check_deliverability"`
	CreateBank               *bool  `json:"create_bank,omitempty" yaml:"create_bank"`
	Inventory                *bool  `json:"inventory,omitempty" yaml:"inventory"`
	LocationID               *int64 `json:"location_id,omitempty" yaml:"location_id"`
	DeferCreations           *bool  `json:"defer_creations,omitempty" yaml:"defer_creations"`
}

// Apply returns base with the overrides set in o.
func (o OptionOverrides) Apply(base Options) Options {
	if o.EmailCheckDeliverability != nil {
		base.EmailCheckDeliverability = *o.EmailCheckDeliverability
	}
	if o.CreateBank != nil {
		base.CreateBank = *o.CreateBank
	}
	if o.Inventory != nil {
		base.Inventory = *o.Inventory
	}
	if o.LocationID != nil {
		base.LocationID = *o.LocationID
	}
	if o.DeferCreations != nil {
		base.DeferCreations = *o.DeferCreations
	}
	return base
}

// Capabilities describe which optional fields the target records support.
// They are resolved once per batch.
type Capabilities struct {
	SupportsSiren bool
	SupportsSiret bool
	SupportsPOS   bool
}

// Created is what the record store returns for a new record.
type Created struct {
	ID          int64
	DisplayName string
	Type        string // Product type ("product", "consu", "service"); empty for other records
}

// BankAccount is the bank relation attached to a partner.
type BankAccount struct {
	AccNumber string
	BankID    int64  // 0 when no bank is linked
	BIC       string // Set while the bank creation is still pending
}

// SupplierInfo is the supplier price relation attached to a product.
type SupplierInfo struct {
	PartnerID   int64
	Price       decimal.NullDecimal
	CurrencyID  int64
	ProductCode string
	ProductName string
	Delay       int
}

// Orderpoint is the replenishment rule attached to a product.
type Orderpoint struct {
	MinQty     decimal.Decimal
	MaxQty     decimal.Decimal
	LocationID int64
}

// Country is a country as seen by the reference store.
type Country struct {
	ID    int64
	Code  string
	Name  string            // Display name in the default language
	Names map[string]string // Name per configured language
}

// Bank is a bank known by BIC.
type Bank struct {
	ID   int64
	BIC  string
	Name string
}

// FiscalClassification groups the purchase and sale taxes of a VAT rate.
type FiscalClassification struct {
	ID            int64
	Name          string
	PurchaseRates []decimal.Decimal // Tax amounts in percent
	SaleRates     []decimal.Decimal
}

// ProductRef identifies an existing product for uniqueness checks.
type ProductRef struct {
	ID          int64
	DisplayName string
	Barcode     string
	DefaultCode string
}

// Reference is a snapshot of the reference data read at batch start.
type Reference struct {
	Countries      []Country
	EUCountryCodes []string
	Banks          []Bank
	Titles         map[string]int64

	FiscalClassifications []FiscalClassification
	Currencies            map[string]int64
	Categories            map[string]int64
	POSCategories         map[string]int64 // nil when point of sale is not installed
	Products              []ProductRef
	Accounts              map[string]int64
	Routes                map[string]int64
	DefaultLocationID     int64
}

// ReferenceStore reads reference data. It is consulted in bulk when the
// cache is built and lazily for field labels.
type ReferenceStore interface {
	LoadReference(ctx context.Context) (*Reference, error)
	FieldLabel(ctx context.Context, entity, field string) (string, bool, error)
}

// RecordStore creates records. Each call returns the new identifier and
// display name, which are fed back into the cache.
type RecordStore interface {
	CreateBank(ctx context.Context, bic, name string) (Created, error)
	CreateCategory(ctx context.Context, name string, pos bool) (Created, error)
	CreatePartner(ctx context.Context, vals Row) (Created, error)
	CreateProduct(ctx context.Context, vals Row) (Created, error)
	SetProductCreateDate(ctx context.Context, productID int64, at time.Time) error
	SetStockLevel(ctx context.Context, productID, locationID int64, qty decimal.Decimal) error
}

// CountryResolver guesses the ISO code of a free-text country name.
// tokens is the usage reported by the service, counted even on odd answers.
type CountryResolver interface {
	ResolveCountry(ctx context.Context, name string) (answer string, tokens int, err error)
}

// VATRegistry checks a VAT number against the remote registry.
type VATRegistry interface {
	CheckVAT(ctx context.Context, vat string) (bool, error)
}

// EmailValidator checks e-mail syntax and, optionally, deliverability.
// The returned error text is shown to users verbatim.
type EmailValidator interface {
	Validate(ctx context.Context, address string, checkDeliverability bool) error
}

// Externals bundles the external services consulted while validating.
type Externals struct {
	Resolver CountryResolver
	Registry VATRegistry
	Email    EmailValidator
}
