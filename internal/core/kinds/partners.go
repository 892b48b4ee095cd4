package kinds

import (
	"context"

	"github.com/JonMunkholm/erpimport/internal/core"
)

func init() {
	registerPartners()
}

func registerPartners() {
	core.Register(core.ImportKind{
		Info: core.KindInfo{
			Key:         "partners",
			Label:       "Partners",
			Description: "Customers and suppliers with address, VAT, SIREN/SIRET and bank account",
			Fields: []string{
				"line", "name", "is_company", "street", "street2", "zip", "city",
				"country_name", "country_id", "title_code", "email", "phone",
				"vat", "siren", "siret", "iban", "bic", "bank_name", "ref",
			},
		},
		Prepare: func(ctx context.Context, im *core.Importer, row core.Row) (core.Outcome, error) {
			return im.PreparePartner(ctx, row)
		},
		Create: func(ctx context.Context, im *core.Importer, row, vals core.Row) (core.Created, error) {
			return im.Records().CreatePartner(ctx, vals)
		},
	})
}
