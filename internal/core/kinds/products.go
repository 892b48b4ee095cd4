package kinds

import (
	"context"

	"github.com/JonMunkholm/erpimport/internal/core"
)

func init() {
	registerProducts()
}

func registerProducts() {
	core.Register(core.ImportKind{
		Info: core.KindInfo{
			Key:         "products",
			Label:       "Products",
			Description: "Products with barcode, taxes, categories, supplier prices, replenishment and stock",
			Fields: []string{
				"line", "name", "default_code", "barcode", "type", "list_price",
				"standard_price", "vat_rate", "categ_name", "pos_categ_name",
				"supplier_id", "supplier_price", "supplier_currency",
				"supplier_product_code", "supplier_product_name", "supplier_delay",
				"orderpoint_min_qty", "orderpoint_max_qty", "orderpoint_trigger",
				"route_codes", "income_account_code", "expense_account_code",
				"responsible_id", "stock_qty", "create_date",
			},
		},
		Prepare: func(ctx context.Context, im *core.Importer, row core.Row) (core.Outcome, error) {
			return im.PrepareProduct(ctx, row)
		},
		Create: func(ctx context.Context, im *core.Importer, row, vals core.Row) (core.Created, error) {
			created, err := im.Records().CreateProduct(ctx, vals)
			if err != nil {
				return core.Created{}, err
			}
			return created, im.FinishProduct(ctx, row, created)
		},
	})
}
