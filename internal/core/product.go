package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// productBookkeeping lists the row keys consumed by the product path.
// Keys starting with supplier_ or orderpoint_ are removed as well.
var productBookkeeping = []string{
	"line", "create_date", "vat_rate", "categ_name", "pos_categ_name", "stock_qty",
	"route_codes", "income_account_code", "expense_account_code",
}

// createDateLayouts are the accepted create_date formats.
var createDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// locationID returns the stock location of the batch, or 0.
func (im *Importer) locationID() int64 {
	if im.opts.LocationID != 0 {
		return im.opts.LocationID
	}
	return im.cache.DefaultLocationID
}

// PrepareProduct validates and normalizes a product row.
//
// A duplicate internal reference or barcode rejects the whole row. Supplier,
// replenishment and route columns become relations on the returned Vals.
// create_date and stock_qty stay on the row for FinishProduct.
func (im *Importer) PrepareProduct(ctx context.Context, row Row) (Outcome, error) {
	var out Outcome
	CleanRow(row)

	if !im.checkUnique(row) {
		im.logger.Warn("product skipped", "line", row.Line())
		return Outcome{Rejected: true}, nil
	}
	im.checkBarcode(row)
	im.checkVATRate(row)

	if err := im.matchCategories(ctx, row, &out); err != nil {
		return Outcome{}, err
	}
	im.buildSupplier(row)
	if err := im.buildOrderpoint(row, im.locationID()); err != nil {
		return Outcome{}, err
	}
	im.matchRoutes(row)
	for _, accType := range []string{"income", "expense"} {
		im.matchAccountField(row, accType)
	}

	if !row.Has("responsible_id") {
		row["responsible_id"] = nil
	}

	vals := row.clone()
	for _, key := range productBookkeeping {
		delete(vals, key)
	}
	for key := range vals {
		if key == "orderpoint_ids" {
			continue
		}
		if strings.HasPrefix(key, "supplier_") || strings.HasPrefix(key, "orderpoint_") {
			delete(vals, key)
		}
	}
	out.Vals = vals
	return out, nil
}

// FinishProduct runs the steps that need the created product: uniqueness
// index update, historical create date and initial stock level.
func (im *Importer) FinishProduct(ctx context.Context, row Row, created Created) error {
	c := im.cache
	c.IndexProduct(ProductRef{
		ID:          created.ID,
		DisplayName: created.DisplayName,
		Barcode:     row.Str("barcode"),
		DefaultCode: row.Str("default_code"),
	})

	if row.Has("create_date") {
		at, ok := parseCreateDate(row["create_date"])
		if !ok {
			c.Log(row, FieldProductCreateDate, row["create_date"], "Cannot parse create_date, the import date is kept", true)
		} else if err := im.records.SetProductCreateDate(ctx, created.ID, at); err != nil {
			return fmt.Errorf("set create date of product %d: %w", created.ID, err)
		}
	}

	if !im.opts.Inventory || !row.Has("stock_qty") {
		return nil
	}
	qty, err := decimalValue(row["stock_qty"])
	if err != nil {
		c.Log(row, FieldProductStock, row["stock_qty"], "stock_qty is not a number", true)
		return nil
	}
	if qty.IsZero() {
		return nil
	}
	if created.Type != "product" {
		c.Log(row, FieldProductStock, row["stock_qty"],
			fmt.Sprintf("Cannot set stock_qty=%s on product with type=%s", qty, created.Type), true)
		return nil
	}
	location := im.locationID()
	if location == 0 {
		return ErrMissingLocation
	}
	if err := im.records.SetStockLevel(ctx, created.ID, location, qty); err != nil {
		return fmt.Errorf("set stock level of product %d: %w", created.ID, err)
	}
	im.logger.Info("stock level set", "product", created.DisplayName, "qty", qty.String(), "location_id", location)
	return nil
}

func parseCreateDate(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	s := stringValue(v)
	for _, layout := range createDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
