package core

// Log field keys, formatted "<entity>,<field>".
const (
	FieldPartnerCountry   = "partner,country_id"
	FieldPartnerTitle     = "partner,title"
	FieldPartnerEmail     = "partner,email"
	FieldPartnerZip       = "partner,zip"
	FieldPartnerIsCompany = "partner,is_company"
	FieldPartnerVAT       = "partner,vat"
	FieldPartnerSiren     = "partner,siren"
	FieldPartnerSiret     = "partner,siret"
	FieldBankAccNumber    = "partner_bank,acc_number"
	FieldBankBIC          = "bank,bic"

	FieldProductDefaultCode = "product,default_code"
	FieldProductBarcode     = "product,barcode"
	FieldProductFiscal      = "product,fiscal_classification_id"
	FieldProductRoutes      = "product,route_ids"
	FieldProductStock       = "product,qty_available"
	FieldProductCreateDate  = "product,create_date"
	FieldSupplierCurrency   = "supplierinfo,currency_id"
	FieldSupplierPrice      = "supplierinfo,price"
	FieldSupplierDelay      = "supplierinfo,delay"
	FieldOrderpointQty      = "orderpoint,product_min_qty"
)

// accountField returns the log key of the income or expense account relation.
func accountField(accType string) string {
	return "product,property_account_" + accType + "_id"
}
