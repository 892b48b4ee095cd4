package core

// crosscheck.go compares fields that were validated on their own.
// Apart from SIREN/SIRET consistency, findings are advisory and both values
// are kept for human review.

import (
	"fmt"
	"strings"
)

// vatPrefixCountry maps VAT prefixes that differ from the ISO country code.
var vatPrefixCountry = map[string]string{
	"EL": "GR",
	"XI": "GB",
}

// checkSirenVAT requires the VAT number of a SIREN holder to be the home
// country VAT built on that SIREN.
func (im *Importer) checkSirenVAT(row Row, siren, vat string) {
	if siren == "" || vat == "" {
		return
	}
	c := im.cache
	if !strings.HasPrefix(vat, c.HomeCountryCode) {
		c.Log(row, FieldPartnerVAT, vat,
			fmt.Sprintf("Partner has SIREN '%s', so its VAT number should start with %s", siren, c.HomeCountryCode), false)
	}
	if lastDigits(vat, 9) != siren {
		c.Log(row, FieldPartnerVAT, vat,
			fmt.Sprintf("Partner has SIREN '%s', so it must compose the 9 last digits of its VAT number", siren), false)
	}
}

// checkSiretVAT is checkSirenVAT for the SIREN part of a SIRET.
func (im *Importer) checkSiretVAT(row Row, siret, vat string) {
	if siret == "" || vat == "" {
		return
	}
	c := im.cache
	if !strings.HasPrefix(vat, c.HomeCountryCode) {
		c.Log(row, FieldPartnerVAT, vat,
			fmt.Sprintf("Partner has SIRET '%s', so its VAT number should start with %s", siret, c.HomeCountryCode), false)
	}
	if lastDigits(vat, 9) != siret[:9] {
		c.Log(row, FieldPartnerVAT, vat,
			fmt.Sprintf("Partner has SIRET '%s', so the 9 first digits of the SIRET must compose the 9 last digits of its VAT number", siret), false)
	}
}

// checkSirenSiret clears both identifiers when the SIRET does not extend the
// SIREN. When they agree, the SIREN is dropped since the SIRET carries it.
func (im *Importer) checkSirenSiret(row Row) {
	if !row.Has("siren") || !row.Has("siret") {
		return
	}
	siren, siret := row.Str("siren"), row.Str("siret")
	if !strings.HasPrefix(siret, siren) {
		im.cache.Log(row, FieldPartnerSiret, siret,
			fmt.Sprintf("Partner has both a SIREN and a SIRET, so its SIRET should start with its SIREN (%s)", siren), true)
		row["siren"] = nil
		row["siret"] = nil
		return
	}
	delete(row, "siren")
}

// checkCountryPrefixes compares the country of the partner with the prefixes
// of its VAT number and IBAN.
func (im *Importer) checkCountryPrefixes(row Row, countryID int64, vat, iban string) {
	c := im.cache
	if countryID == 0 {
		return
	}
	code := c.CountryIDToCode[countryID]

	if vat != "" && c.EUCountryIDs[countryID] {
		prefix := vat[:2]
		if mapped, ok := vatPrefixCountry[prefix]; ok {
			prefix = mapped
		}
		if prefix != code {
			c.Log(row, FieldPartnerVAT, vat,
				fmt.Sprintf("The country prefix of the VAT number doesn't match the country code '%s'", code), false)
		}
	}
	if iban != "" && !strings.HasPrefix(iban, code) {
		c.Log(row, FieldBankAccNumber, iban,
			fmt.Sprintf("The country prefix of the IBAN doesn't match the country code '%s'", code), false)
	}
}

func lastDigits(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[len(s)-n:]
}
