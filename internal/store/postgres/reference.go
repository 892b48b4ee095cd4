package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/erpimport/internal/core"
)

// LoadReference reads all reference data. The independent lookups run in
// parallel on the pool; each one fills its own part of the result.
func (s *Store) LoadReference(ctx context.Context) (*core.Reference, error) {
	hasPOS, err := s.tableExists(ctx, "pos_category")
	if err != nil {
		return nil, err
	}

	ref := &core.Reference{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		ref.Countries, err = s.countries(gctx)
		return err
	})
	g.Go(func() (err error) {
		ref.EUCountryCodes, err = collectStrings(gctx, s.db, sqlEUCountries)
		return err
	})
	g.Go(func() (err error) {
		ref.Banks, err = s.banks(gctx)
		return err
	})
	g.Go(func() (err error) {
		ref.Titles, err = collectIDs(gctx, s.db, sqlTitles)
		return err
	})
	g.Go(func() (err error) {
		ref.FiscalClassifications, err = s.fiscalClassifications(gctx)
		return err
	})
	g.Go(func() (err error) {
		ref.Currencies, err = collectIDs(gctx, s.db, sqlCurrencies)
		return err
	})
	g.Go(func() (err error) {
		ref.Categories, err = collectIDs(gctx, s.db, sqlCategories)
		return err
	})
	if hasPOS {
		g.Go(func() (err error) {
			ref.POSCategories, err = collectIDs(gctx, s.db, sqlPOSCategories)
			return err
		})
	}
	g.Go(func() (err error) {
		ref.Products, err = s.products(gctx)
		return err
	})
	g.Go(func() (err error) {
		ref.Accounts, err = collectIDs(gctx, s.db, sqlAccounts, s.companyID)
		return err
	})
	g.Go(func() error {
		byXMLID, err := collectIDs(gctx, s.db, sqlRoutes)
		if err != nil {
			return err
		}
		ref.Routes = make(map[string]int64, len(byXMLID))
		for xmlid, id := range byXMLID {
			ref.Routes[routeCodes[xmlid]] = id
		}
		return nil
	})
	g.Go(func() error {
		err := s.db.QueryRow(gctx, sqlDefaultLocation, s.companyID).Scan(&ref.DefaultLocationID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("default location: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ref, nil
}

// FieldLabel returns the label of a field in the store language.
func (s *Store) FieldLabel(ctx context.Context, entity, field string) (string, bool, error) {
	model, ok := entityModels[entity]
	if !ok {
		return "", false, nil
	}
	var label *string
	err := s.db.QueryRow(ctx, sqlFieldLabel, model, field, s.lang).Scan(&label)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("field label %s.%s: %w", model, field, err)
	}
	if label == nil || *label == "" {
		return "", false, nil
	}
	return *label, true, nil
}

func (s *Store) countries(ctx context.Context) ([]core.Country, error) {
	rows, err := s.db.Query(ctx, sqlCountries)
	if err != nil {
		return nil, fmt.Errorf("countries: %w", err)
	}
	countries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Country, error) {
		var c core.Country
		err := row.Scan(&c.ID, &c.Code, &c.Names)
		c.Name = displayName(c.Names, s.lang)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("countries: %w", err)
	}
	return countries, nil
}

func (s *Store) banks(ctx context.Context) ([]core.Bank, error) {
	rows, err := s.db.Query(ctx, sqlBanks)
	if err != nil {
		return nil, fmt.Errorf("banks: %w", err)
	}
	banks, err := pgx.CollectRows(rows, pgx.RowToStructByPos[core.Bank])
	if err != nil {
		return nil, fmt.Errorf("banks: %w", err)
	}
	return banks, nil
}

func (s *Store) products(ctx context.Context) ([]core.ProductRef, error) {
	rows, err := s.db.Query(ctx, sqlProducts)
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByPos[core.ProductRef])
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	return products, nil
}

// fiscalClassifications groups the tax rows of each classification.
func (s *Store) fiscalClassifications(ctx context.Context) ([]core.FiscalClassification, error) {
	rows, err := s.db.Query(ctx, sqlFiscalClassifications)
	if err != nil {
		return nil, fmt.Errorf("fiscal classifications: %w", err)
	}
	defer rows.Close()

	var out []core.FiscalClassification
	index := make(map[int64]int)
	for rows.Next() {
		var (
			id           int64
			name         string
			kind, amount *string
		)
		if err := rows.Scan(&id, &name, &kind, &amount); err != nil {
			return nil, fmt.Errorf("fiscal classifications: %w", err)
		}
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, core.FiscalClassification{ID: id, Name: name})
		}
		if kind == nil || amount == nil {
			continue
		}
		rate, err := decimal.NewFromString(*amount)
		if err != nil {
			slog.Warn("skipping tax with unreadable amount", "classification", name, "amount", *amount)
			continue
		}
		if *kind == "purchase" {
			out[i].PurchaseRates = append(out[i].PurchaseRates, rate)
		} else {
			out[i].SaleRates = append(out[i].SaleRates, rate)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fiscal classifications: %w", err)
	}
	return out, nil
}

// collectIDs reads (key, id) rows into a map.
func collectIDs(ctx context.Context, db DBTX, sql string, args ...any) (map[string]int64, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var key string
		var id int64
		if err := rows.Scan(&key, &id); err != nil {
			return nil, err
		}
		out[key] = id
	}
	return out, rows.Err()
}

func collectStrings(ctx context.Context, db DBTX, sql string, args ...any) ([]string, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// displayName picks the name of a translated value in lang, then English,
// then the lowest language key so the result is stable across loads.
func displayName(names map[string]string, lang string) string {
	if n, ok := names[lang]; ok && lang != "" {
		return n
	}
	if n, ok := names["en_US"]; ok {
		return n
	}
	if len(names) == 0 {
		return ""
	}
	return names[slices.Min(slices.Collect(maps.Keys(names)))]
}
