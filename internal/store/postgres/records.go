package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/erpimport/internal/core"
)

type colKind int

const (
	colText colKind = iota
	colInt
	colBool
	colNumeric
	colTranslated // jsonb keyed by language
)

type column struct {
	key  string // Row key
	name string // Database column
	kind colKind
}

// Writable columns per table. Row keys outside these lists are ignored.
var (
	partnerColumns = []column{
		{"name", "name", colText},
		{"is_company", "is_company", colBool},
		{"street", "street", colText},
		{"street2", "street2", colText},
		{"zip", "zip", colText},
		{"city", "city", colText},
		{"country_id", "country_id", colInt},
		{"title", "title", colInt},
		{"email", "email", colText},
		{"phone", "phone", colText},
		{"mobile", "mobile", colText},
		{"website", "website", colText},
		{"vat", "vat", colText},
		{"siren", "siren", colText},
		{"siret", "siret", colText},
		{"nic", "nic", colText},
		{"ref", "ref", colText},
		{"comment", "comment", colText},
		{"parent_id", "parent_id", colInt},
	}

	templateColumns = []column{
		{"name", "name", colTranslated},
		{"type", "type", colText},
		{"default_code", "default_code", colText},
		{"list_price", "list_price", colNumeric},
		{"description", "description", colText},
		{"sale_ok", "sale_ok", colBool},
		{"purchase_ok", "purchase_ok", colBool},
		{"categ_id", "categ_id", colInt},
		{"pos_categ_id", "pos_categ_id", colInt},
		{"fiscal_classification_id", "fiscal_classification_id", colInt},
		{"responsible_id", "responsible_id", colInt},
		{"property_account_income_id", "property_account_income_id", colInt},
		{"property_account_expense_id", "property_account_expense_id", colInt},
		{"weight", "weight", colNumeric},
		{"volume", "volume", colNumeric},
	}

	variantColumns = []column{
		{"default_code", "default_code", colText},
		{"barcode", "barcode", colText},
		{"standard_price", "standard_price", colNumeric},
	}
)

// partnerRelations and productRelations are row keys handled outside the
// column lists.
var (
	partnerRelations = map[string]bool{"bank_ids": true}
	productRelations = map[string]bool{"seller_ids": true, "orderpoint_ids": true, "route_ids": true, "trigger": true}
)

// buildInsert returns an INSERT for the columns present in vals, in column
// order, returning the new id. Present keys with nil values insert NULL.
func buildInsert(table string, cols []column, vals core.Row, extra ...string) (string, []any) {
	names := make([]string, 0, len(cols)+len(extra)/2)
	holders := make([]string, 0, cap(names))
	args := make([]any, 0, cap(names))

	for _, c := range cols {
		v, ok := vals[c.key]
		if !ok {
			continue
		}
		args = append(args, convert(c.kind, v))
		names = append(names, c.name)
		holders = append(holders, fmt.Sprintf("$%d", len(args)))
	}
	// extra holds (column, SQL expression) pairs.
	for i := 0; i+1 < len(extra); i += 2 {
		names = append(names, extra[i])
		holders = append(holders, extra[i+1])
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(names, ", "), strings.Join(holders, ", "))
	return sql, args
}

func convert(kind colKind, v any) any {
	switch kind {
	case colInt:
		return toInt8(v)
	case colBool:
		return toBool(v)
	case colNumeric:
		return toNumeric(v)
	case colTranslated:
		if t := toText(v); t.Valid {
			return map[string]string{"en_US": t.String}
		}
		return nil
	default:
		return toText(v)
	}
}

// unknownKeys returns the keys of vals no column or relation consumes.
func unknownKeys(vals core.Row, relations map[string]bool, lists ...[]column) []string {
	known := make(map[string]bool)
	for _, cols := range lists {
		for _, c := range cols {
			known[c.key] = true
		}
	}
	var out []string
	for k := range vals {
		if !known[k] && !relations[k] {
			out = append(out, k)
		}
	}
	return out
}

// CreateBank inserts a bank.
func (s *Store) CreateBank(ctx context.Context, bic, name string) (core.Created, error) {
	var id int64
	if err := s.db.QueryRow(ctx, sqlInsertBank, bic, name).Scan(&id); err != nil {
		return core.Created{}, fmt.Errorf("insert bank: %w", err)
	}
	return core.Created{ID: id, DisplayName: name}, nil
}

// CreateCategory inserts a product or point of sale category.
func (s *Store) CreateCategory(ctx context.Context, name string, pos bool) (core.Created, error) {
	query := sqlInsertCategory
	if pos {
		query = sqlInsertPOSCategory
	}
	var id int64
	if err := s.db.QueryRow(ctx, query, name).Scan(&id); err != nil {
		return core.Created{}, fmt.Errorf("insert category: %w", err)
	}
	return core.Created{ID: id, DisplayName: name}, nil
}

// CreatePartner inserts a partner and its bank accounts in one transaction.
func (s *Store) CreatePartner(ctx context.Context, vals core.Row) (core.Created, error) {
	if keys := unknownKeys(vals, partnerRelations, partnerColumns); len(keys) > 0 {
		slog.Debug("ignoring partner keys", "keys", keys)
	}

	var id int64
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		query, args := buildInsert("res_partner", partnerColumns, vals,
			"active", "true", "create_date", "now()")
		if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			return fmt.Errorf("insert partner: %w", err)
		}

		accounts, _ := vals["bank_ids"].([]core.BankAccount)
		for _, acc := range accounts {
			if _, err := tx.Exec(ctx, sqlInsertPartnerBank, id, acc.AccNumber, toInt8(acc.BankID)); err != nil {
				return fmt.Errorf("insert bank account: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return core.Created{}, err
	}
	return core.Created{ID: id, DisplayName: vals.Str("name")}, nil
}

// CreateProduct inserts a product template, its variant and the supplier,
// replenishment and route relations in one transaction.
func (s *Store) CreateProduct(ctx context.Context, vals core.Row) (core.Created, error) {
	if keys := unknownKeys(vals, productRelations, templateColumns, variantColumns); len(keys) > 0 {
		slog.Debug("ignoring product keys", "keys", keys)
	}

	typ := vals.Str("type")
	if typ == "" {
		typ = "consu"
		vals["type"] = typ
	}

	var productID int64
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var tmplID int64
		query, args := buildInsert("product_template", templateColumns, vals,
			"active", "true", "create_date", "now()")
		if err := tx.QueryRow(ctx, query, args...).Scan(&tmplID); err != nil {
			return fmt.Errorf("insert product template: %w", err)
		}

		variant := core.Row{"product_tmpl_id": tmplID}
		for _, c := range variantColumns {
			if v, ok := vals[c.key]; ok {
				variant[c.key] = v
			}
		}
		query, args = buildInsert("product_product",
			append([]column{{"product_tmpl_id", "product_tmpl_id", colInt}}, variantColumns...),
			variant, "active", "true", "create_date", "now()")
		if err := tx.QueryRow(ctx, query, args...).Scan(&productID); err != nil {
			return fmt.Errorf("insert product variant: %w", err)
		}

		return insertProductRelations(ctx, tx, vals, tmplID, productID)
	})
	if err != nil {
		return core.Created{}, err
	}

	display := vals.Str("name")
	if code := vals.Str("default_code"); code != "" {
		display = fmt.Sprintf("[%s] %s", code, display)
	}
	return core.Created{ID: productID, DisplayName: display, Type: typ}, nil
}

func insertProductRelations(ctx context.Context, tx DBTX, vals core.Row, tmplID, productID int64) error {
	sellers, _ := vals["seller_ids"].([]core.SupplierInfo)
	for _, si := range sellers {
		_, err := tx.Exec(ctx, sqlInsertSupplierInfo, tmplID, si.PartnerID, toNumeric(si.Price),
			toInt8(si.CurrencyID), toText(si.ProductCode), toText(si.ProductName), si.Delay)
		if err != nil {
			return fmt.Errorf("insert supplier info: %w", err)
		}
	}

	orderpoints, _ := vals["orderpoint_ids"].([]core.Orderpoint)
	trigger := toText(vals["trigger"])
	if !trigger.Valid {
		trigger = pgtype.Text{String: "auto", Valid: true}
	}
	for _, op := range orderpoints {
		_, err := tx.Exec(ctx, sqlInsertOrderpoint, productID, op.LocationID,
			toNumeric(op.MinQty), toNumeric(op.MaxQty), trigger)
		if err != nil {
			return fmt.Errorf("insert orderpoint: %w", err)
		}
	}

	routes, _ := vals["route_ids"].([]int64)
	for _, routeID := range routes {
		if _, err := tx.Exec(ctx, sqlInsertProductRoute, tmplID, routeID); err != nil {
			return fmt.Errorf("insert product route: %w", err)
		}
	}
	return nil
}

// SetProductCreateDate backdates a product and its template.
func (s *Store) SetProductCreateDate(ctx context.Context, productID int64, at time.Time) error {
	ts := toTimestamp(at)
	if _, err := s.db.Exec(ctx, sqlSetProductCreateDate, ts, productID); err != nil {
		return fmt.Errorf("set product create date: %w", err)
	}
	if _, err := s.db.Exec(ctx, sqlSetTemplateCreateDate, ts, productID); err != nil {
		return fmt.Errorf("set template create date: %w", err)
	}
	return nil
}

// SetStockLevel sets the on-hand quantity of a product at a location.
func (s *Store) SetStockLevel(ctx context.Context, productID, locationID int64, qty decimal.Decimal) error {
	tag, err := s.db.Exec(ctx, sqlUpdateQuant, productID, locationID, toNumeric(qty))
	if err != nil {
		return fmt.Errorf("update stock quant: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := s.db.Exec(ctx, sqlInsertQuant, productID, locationID, toNumeric(qty)); err != nil {
		return fmt.Errorf("insert stock quant: %w", err)
	}
	return nil
}
