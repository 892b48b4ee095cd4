package core

// product_fields.go holds the per-field validators of the product path.

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/erpimport/internal/stdnum"
)

// checkUnique rejects rows whose internal reference or barcode is already
// used. It returns false when the row must be skipped.
func (im *Importer) checkUnique(row Row) bool {
	c := im.cache
	if row.Has("default_code") {
		code := row.Str("default_code")
		row["default_code"] = code
		if other, ok := c.ProductCodes[code]; ok {
			c.Log(row, FieldProductDefaultCode, code,
				fmt.Sprintf("PRODUCT NOT IMPORTED: internal reference '%s' used on another product '%s'", code, other), true)
			return false
		}
	}
	if row.Has("barcode") {
		barcode := row.Str("barcode")
		row["barcode"] = barcode
		if other, ok := c.ProductBarcodes[barcode]; ok {
			c.Log(row, FieldProductBarcode, barcode,
				fmt.Sprintf("PRODUCT NOT IMPORTED: barcode '%s' used on another product '%s'", barcode, other), true)
			return false
		}
	}
	return true
}

// checkBarcode flags barcodes that are not valid EAN codes. The barcode is kept.
func (im *Importer) checkBarcode(row Row) {
	if !row.Has("barcode") {
		return
	}
	barcode := row.Str("barcode")
	switch len(barcode) {
	case 8, 13, 14:
		if !stdnum.EAN(barcode) {
			im.cache.Log(row, FieldProductBarcode, barcode,
				fmt.Sprintf("Barcode %s has an invalid checksum", barcode), false)
		}
	default:
		im.cache.Log(row, FieldProductBarcode, barcode,
			fmt.Sprintf("Barcode %s has %d characters (should be 8, 13 or 14 for an EAN barcode)", barcode, len(barcode)), false)
	}
}

// checkVATRate maps vat_rate (rate x10) to a fiscal classification.
func (im *Importer) checkVATRate(row Row) {
	raw, present := row["vat_rate"]
	if !present || raw == nil {
		return
	}
	c := im.cache
	rate, ok := integerValue(raw)
	if !ok {
		c.Log(row, FieldProductFiscal, raw, fmt.Sprintf("vat_rate key must be an integer, not %T", raw), true)
		return
	}
	id, ok := c.VATRateToFiscalID[rate]
	if !ok {
		known := make([]string, 0, len(c.VATRateToFiscalID))
		for _, r := range c.knownRates() {
			known = append(known, fmt.Sprint(r))
		}
		c.Log(row, FieldProductFiscal, raw,
			fmt.Sprintf("%d is not a known VAT rate (%s)", rate, strings.Join(known, ", ")), true)
		return
	}
	row["fiscal_classification_id"] = id
}

// matchCategories substitutes categ_name and pos_categ_name with category
// relations, creating unknown categories.
func (im *Importer) matchCategories(ctx context.Context, row Row, out *Outcome) error {
	if row.Has("categ_name") {
		if err := im.matchCategory(ctx, row, out, "categ_name", "categ_id", false); err != nil {
			return err
		}
	}
	if im.caps.SupportsPOS && row.Has("pos_categ_name") {
		if err := im.matchCategory(ctx, row, out, "pos_categ_name", "pos_categ_id", true); err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) matchCategory(ctx context.Context, row Row, out *Outcome, key, target string, pos bool) error {
	name := row.Str(key)
	index := im.cache.CategoryToID
	kind := PendingCategory
	if pos {
		index = im.cache.POSCategoryToID
		kind = PendingPOSCategory
	}

	if id, ok := index[name]; ok {
		row[target] = id
		return nil
	}
	if im.opts.DeferCreations {
		out.Pending = append(out.Pending, PendingCreation{Kind: kind, Key: name, Name: name})
		return nil
	}
	id, err := im.ensureCategory(ctx, name, pos)
	if err != nil {
		return err
	}
	row[target] = id
	return nil
}

// buildSupplier turns the supplier_* columns into a supplier price relation.
func (im *Importer) buildSupplier(row Row) {
	if !row.Has("supplier_id") {
		return
	}
	c := im.cache
	info := SupplierInfo{
		PartnerID:   idValue(row["supplier_id"]),
		ProductCode: row.Str("supplier_product_code"),
		ProductName: row.Str("supplier_product_name"),
	}
	if row.Has("supplier_price") {
		price, err := decimalValue(row["supplier_price"])
		if err != nil {
			c.Log(row, FieldSupplierPrice, row["supplier_price"], "Supplier price is not a number", true)
		} else {
			info.Price = decimal.NewNullDecimal(price)
		}
	}
	if row.Has("supplier_delay") {
		delay, ok := integerValue(row["supplier_delay"])
		if ok {
			info.Delay = delay
		} else {
			c.Log(row, FieldSupplierDelay, row["supplier_delay"], "Supplier delay must be a whole number of days", true)
		}
	}

	switch cur := row["supplier_currency"].(type) {
	case nil:
	case int, int64:
		info.CurrencyID = idValue(cur)
	default:
		code := strings.ToUpper(strings.TrimSpace(stringValue(cur)))
		if id, ok := c.CurrencyToID[code]; ok {
			info.CurrencyID = id
		} else {
			c.Log(row, FieldSupplierCurrency, code, fmt.Sprintf("%s is not a known currency ISO code", code), true)
		}
	}
	row["seller_ids"] = []SupplierInfo{info}
}

// buildOrderpoint turns the orderpoint_* columns into a replenishment rule.
func (im *Importer) buildOrderpoint(row Row, locationID int64) error {
	if !row.Has("orderpoint_min_qty") {
		return nil
	}
	if locationID == 0 {
		return ErrMissingLocation
	}
	c := im.cache
	minQty, err := decimalValue(row["orderpoint_min_qty"])
	if err != nil {
		c.Log(row, FieldOrderpointQty, row["orderpoint_min_qty"], "Minimum quantity is not a number", true)
		return nil
	}
	maxQty := minQty
	if row.Has("orderpoint_max_qty") {
		if v, err := decimalValue(row["orderpoint_max_qty"]); err == nil {
			maxQty = v
		} else {
			c.Log(row, FieldOrderpointQty, row["orderpoint_max_qty"], "Maximum quantity is not a number, using the minimum", false)
		}
	}
	if row.Has("orderpoint_trigger") {
		row["trigger"] = row.Str("orderpoint_trigger")
	}
	row["orderpoint_ids"] = []Orderpoint{{MinQty: minQty, MaxQty: maxQty, LocationID: locationID}}
	return nil
}

// matchRoutes substitutes route_codes (a string, comma separated, or a list)
// with route relations. Unknown codes are dropped.
func (im *Importer) matchRoutes(row Row) {
	raw, present := row["route_codes"]
	if !present {
		return
	}
	var codes []string
	switch v := raw.(type) {
	case nil:
	case []string:
		codes = v
	case []any:
		for _, x := range v {
			codes = append(codes, stringValue(x))
		}
	default:
		for _, code := range strings.Split(stringValue(v), ",") {
			codes = append(codes, strings.TrimSpace(code))
		}
	}

	ids := []int64{}
	for _, code := range codes {
		if code == "" {
			continue
		}
		id, ok := im.cache.RouteCodeToID[code]
		if !ok {
			im.cache.Log(row, FieldProductRoutes, code, fmt.Sprintf("Unknown route code '%s'", code), true)
			continue
		}
		ids = append(ids, id)
	}
	row["route_ids"] = ids
}
