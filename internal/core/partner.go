package core

import (
	"context"
)

// partnerBookkeeping lists the row keys consumed by the partner path.
var partnerBookkeeping = []string{"line", "country_name", "title_code", "iban", "bic", "bank_name"}

// PreparePartner validates and normalizes a partner row.
//
// The row is repaired in place so the report can show what was imported.
// The returned Vals are a copy without bookkeeping keys, with country_id,
// title and bank_ids relations substituted. The only error is a caller
// contract violation (ErrConflictingBankFields) or a failed bank creation.
func (im *Importer) PreparePartner(ctx context.Context, row Row) (Outcome, error) {
	var out Outcome
	CleanRow(row)

	promoteStreet(row)

	countryID := idValue(row["country_id"])
	if row.Has("country_name") && countryID == 0 {
		countryID = im.matchCountry(ctx, row)
		if countryID != 0 {
			row["country_id"] = countryID
		} else {
			row["country_id"] = nil
		}
	}

	if !row.Has("is_company") && row.Has("title_code") && !row.Has("title") {
		row["title"] = im.matchTitle(row)
	}

	im.checkEmail(ctx, row)
	im.checkZip(row, countryID)
	im.checkCompanyFlag(row)

	vat := im.checkVAT(ctx, row, countryID)

	iban, err := im.checkBank(ctx, row, &out)
	if err != nil {
		return Outcome{}, err
	}

	if im.caps.SupportsSiren {
		siren := im.checkSiren(row)
		im.checkSirenVAT(row, siren, vat)
	}
	if im.caps.SupportsSiret {
		siret := im.checkSiret(row)
		im.checkSiretVAT(row, siret, vat)
	}
	if im.caps.SupportsSiren && im.caps.SupportsSiret {
		im.checkSirenSiret(row)
	}

	im.checkCountryPrefixes(row, countryID, vat, iban)

	vals := row.clone()
	for _, key := range partnerBookkeeping {
		delete(vals, key)
	}
	if !im.caps.SupportsSiren {
		delete(vals, "siren")
	}
	if !im.caps.SupportsSiret {
		delete(vals, "siret")
	}
	out.Vals = vals
	return out, nil
}
