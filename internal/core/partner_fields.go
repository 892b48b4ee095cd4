package core

// partner_fields.go holds the per-field validators of the partner path.
// Each validator reads and repairs one field family on the row and records
// every anomaly in the cache log.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/erpimport/internal/stdnum"
)

// promoteStreet moves street2 into an empty street.
func promoteStreet(row Row) {
	if row.Has("street2") && !row.Has("street") {
		row["street"] = row["street2"]
		row["street2"] = nil
	}
}

func (im *Importer) matchTitle(row Row) any {
	code := row.Str("title_code")
	if id, ok := im.cache.TitleCodeToID[code]; ok {
		return id
	}
	im.cache.Log(row, FieldPartnerTitle, code, "Could not find a title corresponding to code", true)
	return nil
}

func (im *Importer) checkEmail(ctx context.Context, row Row) {
	if !row.Has("email") || im.ext.Email == nil {
		return
	}
	email := row.Str("email")
	err := im.ext.Email.Validate(ctx, email, im.opts.EmailCheckDeliverability)
	switch {
	case err == nil:
	case errors.Is(err, ErrDeliverabilityUnknown):
		im.logger.Warn("could not check e-mail deliverability", "email", email, "error", err)
		im.cache.Log(row, FieldPartnerEmail, email, fmt.Sprintf("Could not check e-mail deliverability: %v", err), false)
	default:
		im.cache.Log(row, FieldPartnerEmail, email, fmt.Sprintf("Invalid e-mail: %v", err), true)
		row["email"] = nil
	}
}

// checkZip applies the home country zip format: exactly 5 digits.
// Both findings are advisory; the stripped value is kept.
func (im *Importer) checkZip(row Row, countryID int64) {
	c := im.cache
	if countryID == 0 || countryID != c.HomeCountryID || !row.Has("zip") {
		return
	}
	zip := strings.ReplaceAll(row.Str("zip"), " ", "")
	row["zip"] = zip

	country := c.CountryCodeToName[c.HomeCountryCode]
	if len(zip) != 5 {
		c.Log(row, FieldPartnerZip, zip,
			fmt.Sprintf("Zip code has %d chars. In %s, they have 5 chars.", len(zip), country), false)
	}
	if !stdnum.IsDigits(zip) {
		c.Log(row, FieldPartnerZip, zip,
			fmt.Sprintf("In %s, ZIP codes only contain digits.", country), false)
	}
}

// checkCompanyFlag flags individuals that carry a company identifier.
func (im *Importer) checkCompanyFlag(row Row) {
	if row.Has("is_company") {
		return
	}
	var msg string
	switch {
	case row.Has("vat"):
		msg = "Has a VAT number, but is not marked as a company"
	case row.Has("siren"):
		msg = "Has a SIREN, but is not marked as a company"
	case row.Has("siret"):
		msg = "Has a SIRET, but is not marked as a company"
	default:
		return
	}
	im.cache.Log(row, FieldPartnerIsCompany, "Individual", msg, false)
}

// cleanVAT uppercases a VAT number and keeps only A-Z and 0-9.
func cleanVAT(s string) string {
	s = strings.ToUpper(s)
	var b strings.Builder
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// checkVAT validates the VAT number of partners without a country or in the
// EU. It returns the kept VAT number, or "" when it was discarded or skipped.
func (im *Importer) checkVAT(ctx context.Context, row Row, countryID int64) string {
	c := im.cache
	if !row.Has("vat") || (countryID != 0 && !c.EUCountryIDs[countryID]) {
		return ""
	}

	vat := cleanVAT(row.Str("vat"))
	if !stdnum.VAT(vat) {
		c.Log(row, FieldPartnerVAT, vat, "VAT is not valid", true)
		row["vat"] = nil
		return ""
	}

	if im.ext.Registry != nil {
		im.logger.Info("checking VAT on VIES", "vat", vat)
		valid, err := im.ext.Registry.CheckVAT(ctx, vat)
		switch {
		case err != nil:
			im.logger.Warn("could not perform VIES validation", "vat", vat, "error", err)
			c.Log(row, FieldPartnerVAT, vat, "Could not perform VIES validation", false)
		case !valid:
			im.logger.Warn("VIES said VAT is not valid", "vat", vat)
			c.Log(row, FieldPartnerVAT, vat, "VIES said that VAT is not valid", true)
			row["vat"] = nil
			return ""
		}
	}

	row["vat"] = vat
	return vat
}

// checkSiren validates the 9 digit SIREN. It returns the kept value or "".
func (im *Importer) checkSiren(row Row) string {
	return im.checkFrenchID(row, "siren", FieldPartnerSiren, "SIREN", 9, stdnum.SIREN)
}

// checkSiret validates the 14 digit SIRET. It returns the kept value or "".
func (im *Importer) checkSiret(row Row) string {
	return im.checkFrenchID(row, "siret", FieldPartnerSiret, "SIRET", 14, stdnum.SIRET)
}

// checkFrenchID runs the length check and, only when it passes, the checksum.
func (im *Importer) checkFrenchID(row Row, key, field, label string, length int, valid func(string) bool) string {
	if !row.Has(key) {
		return ""
	}
	id := digitsOnly(row.Str(key))
	if len(id) != length {
		im.cache.Log(row, field, id, fmt.Sprintf("%s has a length of %d instead of %d", label, len(id), length), true)
		row[key] = nil
		return ""
	}
	if !valid(id) {
		im.cache.Log(row, field, id, fmt.Sprintf("%s is not valid (wrong checksum)", label), true)
		row[key] = nil
		return ""
	}
	row[key] = id
	return id
}
