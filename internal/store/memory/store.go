// Package memory provides an in-memory reference and record store.
//
// It backs dry runs, where records are validated and "created" without
// touching the database, and end-to-end tests of the pipeline.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/erpimport/internal/core"
)

// Record is a record created through the store.
type Record struct {
	ID          int64
	DisplayName string
	Vals        core.Row
}

// Store implements core.ReferenceStore and core.RecordStore.
type Store struct {
	mu     sync.Mutex
	ref    core.Reference
	labels map[string]string
	nextID int64

	partners    []Record
	products    []Record
	createDates map[int64]time.Time
	stock       map[int64]map[int64]decimal.Decimal
}

// New creates a store serving a copy of ref. A nil ref starts empty.
func New(ref *core.Reference) *Store {
	s := &Store{
		labels:      make(map[string]string),
		nextID:      1000,
		createDates: make(map[int64]time.Time),
		stock:       make(map[int64]map[int64]decimal.Decimal),
	}
	if ref != nil {
		s.ref = *ref
	}
	s.ref.Banks = append([]core.Bank(nil), s.ref.Banks...)
	s.ref.Products = append([]core.ProductRef(nil), s.ref.Products...)
	s.ref.Categories = copyMap(s.ref.Categories)
	if s.ref.POSCategories != nil {
		s.ref.POSCategories = copyMap(s.ref.POSCategories)
	}
	return s
}

// SetLabel registers the display label of an "<entity>,<field>" key.
func (s *Store) SetLabel(field, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels[field] = label
}

// LoadReference returns the current reference data. Banks, categories and
// products created through the store are included.
func (s *Store) LoadReference(ctx context.Context) (*core.Reference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := s.ref
	ref.Banks = append([]core.Bank(nil), s.ref.Banks...)
	ref.Products = append([]core.ProductRef(nil), s.ref.Products...)
	ref.Categories = copyMap(s.ref.Categories)
	if s.ref.POSCategories != nil {
		ref.POSCategories = copyMap(s.ref.POSCategories)
	}
	return &ref, nil
}

// FieldLabel returns a label registered with SetLabel.
func (s *Store) FieldLabel(_ context.Context, entity, field string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	label, ok := s.labels[entity+","+field]
	return label, ok, nil
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// CreateBank records a bank.
func (s *Store) CreateBank(_ context.Context, bic, name string) (core.Created, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.ref.Banks = append(s.ref.Banks, core.Bank{ID: id, BIC: bic, Name: name})
	return core.Created{ID: id, DisplayName: name}, nil
}

// CreateCategory records a product or point of sale category.
func (s *Store) CreateCategory(_ context.Context, name string, pos bool) (core.Created, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	if pos {
		if s.ref.POSCategories == nil {
			s.ref.POSCategories = make(map[string]int64)
		}
		s.ref.POSCategories[name] = id
	} else {
		if s.ref.Categories == nil {
			s.ref.Categories = make(map[string]int64)
		}
		s.ref.Categories[name] = id
	}
	return core.Created{ID: id, DisplayName: name}, nil
}

// CreatePartner records a partner.
func (s *Store) CreatePartner(_ context.Context, vals core.Row) (core.Created, error) {
	name := vals.Str("name")
	if name == "" {
		return core.Created{}, fmt.Errorf("partner: name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.partners = append(s.partners, Record{ID: id, DisplayName: name, Vals: vals})
	return core.Created{ID: id, DisplayName: name}, nil
}

// CreateProduct records a product. Type defaults to "consu".
func (s *Store) CreateProduct(_ context.Context, vals core.Row) (core.Created, error) {
	name := vals.Str("name")
	if name == "" {
		return core.Created{}, fmt.Errorf("product: name is required")
	}
	typ := vals.Str("type")
	if typ == "" {
		typ = "consu"
	}
	display := name
	if code := vals.Str("default_code"); code != "" {
		display = fmt.Sprintf("[%s] %s", code, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id()
	s.products = append(s.products, Record{ID: id, DisplayName: display, Vals: vals})
	s.ref.Products = append(s.ref.Products, core.ProductRef{
		ID:          id,
		DisplayName: display,
		Barcode:     vals.Str("barcode"),
		DefaultCode: vals.Str("default_code"),
	})
	return core.Created{ID: id, DisplayName: display, Type: typ}, nil
}

// SetProductCreateDate overrides the creation date of a product.
func (s *Store) SetProductCreateDate(_ context.Context, productID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createDates[productID] = at
	return nil
}

// SetStockLevel sets the on-hand quantity of a product at a location.
func (s *Store) SetStockLevel(_ context.Context, productID, locationID int64, qty decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stock[productID] == nil {
		s.stock[productID] = make(map[int64]decimal.Decimal)
	}
	s.stock[productID][locationID] = qty
	return nil
}

// Partners returns the partners created so far.
func (s *Store) Partners() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.partners...)
}

// Products returns the products created so far.
func (s *Store) Products() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.products...)
}

// Banks returns all banks, seeded and created, sorted by BIC.
func (s *Store) Banks() []core.Bank {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]core.Bank(nil), s.ref.Banks...)
	sort.Slice(out, func(i, j int) bool { return out[i].BIC < out[j].BIC })
	return out
}

// CreateDate returns the overridden creation date of a product.
func (s *Store) CreateDate(productID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.createDates[productID]
	return at, ok
}

// StockLevel returns the quantity set for a product at a location.
func (s *Store) StockLevel(productID, locationID int64) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qty, ok := s.stock[productID][locationID]
	return qty, ok
}

func copyMap(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var (
	_ core.ReferenceStore = (*Store)(nil)
	_ core.RecordStore    = (*Store)(nil)
)

var (
	_ core.ReferenceStore = (*Store)(nil)
	_ core.RecordStore    = (*Store)(nil)
)
