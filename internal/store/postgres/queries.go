package postgres

// queries.go holds the SQL run against the ERP database.
//
// The store reads and writes an Odoo-compatible schema. Translatable names are
// jsonb objects keyed by language; reference lookups resolve well-known
// records through ir_model_data external ids.

const (
	sqlCountries = `
		SELECT id, code, name
		FROM res_country
		ORDER BY id`

	sqlEUCountries = `
		SELECT c.code
		FROM res_country c
		JOIN res_country_res_country_group_rel rel ON rel.res_country_id = c.id
		JOIN ir_model_data d ON d.res_id = rel.res_country_group_id
		WHERE d.module = 'base' AND d.name = 'europe' AND d.model = 'res.country.group'`

	sqlBanks = `
		SELECT id, COALESCE(bic, ''), COALESCE(name, '')
		FROM res_bank
		WHERE active AND bic IS NOT NULL`

	sqlTitles = `
		SELECT substr(name, length('res_partner_title_') + 1), res_id
		FROM ir_model_data
		WHERE module = 'base' AND model = 'res.partner.title'
		  AND name LIKE 'res_partner_title_%'`

	// One row per tax of a classification; classifications without any
	// tax come back once with NULL kind and amount.
	sqlFiscalClassifications = `
		SELECT fc.id, fc.name, t.kind, t.amount::text
		FROM account_product_fiscal_classification fc
		LEFT JOIN (
			SELECT r.fiscal_classification_id, 'purchase' AS kind, tax.amount
			FROM fiscal_classification_purchase_tax_rel r
			JOIN account_tax tax ON tax.id = r.tax_id
			UNION ALL
			SELECT r.fiscal_classification_id, 'sale' AS kind, tax.amount
			FROM fiscal_classification_sale_tax_rel r
			JOIN account_tax tax ON tax.id = r.tax_id
		) t ON t.fiscal_classification_id = fc.id
		WHERE fc.active
		ORDER BY fc.id`

	sqlCurrencies = `
		SELECT name, id
		FROM res_currency
		WHERE active`

	sqlCategories = `
		SELECT name, id
		FROM product_category`

	sqlPOSCategories = `
		SELECT name, id
		FROM pos_category`

	sqlProducts = `
		SELECT p.id, COALESCE(t.name->>'en_US', ''), COALESCE(p.barcode, ''), COALESCE(p.default_code, '')
		FROM product_product p
		JOIN product_template t ON t.id = p.product_tmpl_id
		WHERE p.default_code IS NOT NULL OR p.barcode IS NOT NULL`

	sqlAccounts = `
		SELECT code, id
		FROM account_account
		WHERE company_id = $1 AND NOT deprecated`

	sqlRoutes = `
		SELECT d.module || '.' || d.name, d.res_id
		FROM ir_model_data d
		WHERE (d.module, d.name) IN (
			('purchase_stock', 'route_warehouse0_buy'),
			('mrp', 'route_warehouse0_manufacture'),
			('stock', 'route_warehouse0_mto'))`

	sqlDefaultLocation = `
		SELECT lot_stock_id
		FROM stock_warehouse
		WHERE company_id = $1
		ORDER BY id
		LIMIT 1`

	sqlFieldLabel = `
		SELECT COALESCE(field_description->>$3, field_description->>'en_US')
		FROM ir_model_fields
		WHERE model = $1 AND name = $2`

	sqlTableExists = `SELECT to_regclass($1) IS NOT NULL`

	sqlColumnExists = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = $1 AND column_name = $2)`

	sqlInsertBank = `
		INSERT INTO res_bank (bic, name, active, create_date)
		VALUES ($1, $2, true, now())
		RETURNING id`

	sqlInsertCategory = `
		INSERT INTO product_category (name, create_date)
		VALUES ($1, now())
		RETURNING id`

	sqlInsertPOSCategory = `
		INSERT INTO pos_category (name, create_date)
		VALUES ($1, now())
		RETURNING id`

	sqlInsertPartnerBank = `
		INSERT INTO res_partner_bank (partner_id, acc_number, bank_id, active, create_date)
		VALUES ($1, $2, $3, true, now())`

	sqlInsertSupplierInfo = `
		INSERT INTO product_supplierinfo (product_tmpl_id, partner_id, price, currency_id, product_code, product_name, delay, create_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`

	sqlInsertOrderpoint = `
		INSERT INTO stock_warehouse_orderpoint (product_id, location_id, product_min_qty, product_max_qty, trigger, create_date)
		VALUES ($1, $2, $3, $4, $5, now())`

	sqlInsertProductRoute = `
		INSERT INTO stock_route_product (product_id, route_id)
		VALUES ($1, $2)`

	sqlSetTemplateCreateDate = `UPDATE product_template SET create_date = $1 WHERE id = (SELECT product_tmpl_id FROM product_product WHERE id = $2)`
	sqlSetProductCreateDate  = `UPDATE product_product SET create_date = $1 WHERE id = $2`

	sqlUpdateQuant = `
		UPDATE stock_quant SET quantity = $3, write_date = now()
		WHERE product_id = $1 AND location_id = $2`

	sqlInsertQuant = `
		INSERT INTO stock_quant (product_id, location_id, quantity, create_date)
		VALUES ($1, $2, $3, now())`
)

// routeCodes maps route external ids to the codes accepted in route_codes.
var routeCodes = map[string]string{
	"purchase_stock.route_warehouse0_buy": "buy",
	"mrp.route_warehouse0_manufacture":    "manufacture",
	"stock.route_warehouse0_mto":          "mto",
}

// entityModels maps log entities to ERP model names for field labels.
var entityModels = map[string]string{
	"partner":      "res.partner",
	"partner_bank": "res.partner.bank",
	"bank":         "res.bank",
	"product":      "product.product",
	"supplierinfo": "product.supplierinfo",
	"orderpoint":   "stock.warehouse.orderpoint",
}
