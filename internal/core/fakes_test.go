package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type fakeResolver struct {
	answer string
	tokens int
	err    error
	calls  []string
}

func (r *fakeResolver) ResolveCountry(_ context.Context, name string) (string, int, error) {
	r.calls = append(r.calls, name)
	return r.answer, r.tokens, r.err
}

type fakeRegistry struct {
	valid bool
	err   error
	calls int
}

func (r *fakeRegistry) CheckVAT(context.Context, string) (bool, error) {
	r.calls++
	return r.valid, r.err
}

type fakeEmail struct{}

func (fakeEmail) Validate(_ context.Context, addr string, _ bool) error {
	if strings.HasSuffix(addr, "@timeout.test") {
		return fmt.Errorf("%w: MX lookup for timeout.test: i/o timeout", ErrDeliverabilityUnknown)
	}
	for _, r := range addr {
		if r == '@' {
			return nil
		}
	}
	return errors.New("the email address is not valid. It must have exactly one @-sign")
}

type stockCall struct {
	productID, locationID int64
	qty                   decimal.Decimal
}

type fakeRecords struct {
	nextID      int64
	productType string
	banks       []string
	categories  []string
	partners    []Row
	products    []Row
	createDates map[int64]time.Time
	stock       []stockCall
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{nextID: 100, productType: "product", createDates: make(map[int64]time.Time)}
}

func (f *fakeRecords) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRecords) CreateBank(_ context.Context, bic, name string) (Created, error) {
	f.banks = append(f.banks, bic)
	return Created{ID: f.id(), DisplayName: name}, nil
}

func (f *fakeRecords) CreateCategory(_ context.Context, name string, _ bool) (Created, error) {
	f.categories = append(f.categories, name)
	return Created{ID: f.id(), DisplayName: name}, nil
}

func (f *fakeRecords) CreatePartner(_ context.Context, vals Row) (Created, error) {
	f.partners = append(f.partners, vals)
	return Created{ID: f.id(), DisplayName: vals.Str("name")}, nil
}

func (f *fakeRecords) CreateProduct(_ context.Context, vals Row) (Created, error) {
	f.products = append(f.products, vals)
	return Created{ID: f.id(), DisplayName: fmt.Sprintf("[%s] %s", vals.Str("default_code"), vals.Str("name")), Type: f.productType}, nil
}

func (f *fakeRecords) SetProductCreateDate(_ context.Context, id int64, at time.Time) error {
	f.createDates[id] = at
	return nil
}

func (f *fakeRecords) SetStockLevel(_ context.Context, productID, locationID int64, qty decimal.Decimal) error {
	f.stock = append(f.stock, stockCall{productID, locationID, qty})
	return nil
}

type fakeReference struct {
	ref    *Reference
	labels map[string]string
	lookup int
}

func (f *fakeReference) LoadReference(context.Context) (*Reference, error) {
	return f.ref, nil
}

func (f *fakeReference) FieldLabel(_ context.Context, entity, field string) (string, bool, error) {
	f.lookup++
	label, ok := f.labels[entity+","+field]
	return label, ok, nil
}

const (
	idFR int64 = 1
	idUS int64 = 2
	idDE int64 = 3
	idGR int64 = 4
	idCH int64 = 5
)

// newTestCache returns a French home cache with a few countries.
func newTestCache() *Cache {
	c := NewCache("FR")
	c.AddCountry(idFR, "FR", "France")
	c.AddCountry(idUS, "US", "United States")
	c.AddCountry(idDE, "DE", "Germany")
	c.AddCountry(idGR, "GR", "Greece")
	c.AddCountry(idCH, "CH", "Switzerland")
	c.HomeCountryID = idFR
	c.EUCountryIDs = map[int64]bool{idFR: true, idDE: true, idGR: true}
	c.TitleCodeToID = map[string]int64{"mister": 11, "madam": 12}
	c.BankBICToID["BNPAFRPP"] = 21
	c.BankBICToName["BNPAFRPP"] = "BNP Paribas"
	return c
}

type testEnv struct {
	cache    *Cache
	records  *fakeRecords
	resolver *fakeResolver
	registry *fakeRegistry
	im       *Importer
}

func newTestEnv(opts Options, caps Capabilities) *testEnv {
	env := &testEnv{
		cache:    newTestCache(),
		records:  newFakeRecords(),
		resolver: &fakeResolver{},
		registry: &fakeRegistry{valid: true},
	}
	ext := Externals{Resolver: env.resolver, Registry: env.registry, Email: fakeEmail{}}
	env.im = NewImporter(env.cache, env.records, ext, opts, caps, nil)
	return env
}

func allCaps() Capabilities {
	return Capabilities{SupportsSiren: true, SupportsSiret: true, SupportsPOS: true}
}

// resets returns the reset entries of the log.
func resets(c *Cache) []LogEntry {
	var out []LogEntry
	for _, e := range c.Logs {
		if e.Reset {
			out = append(out, e)
		}
	}
	return out
}

func logsFor(c *Cache, field string) []LogEntry {
	var out []LogEntry
	for _, e := range c.Logs {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}
