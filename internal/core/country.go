package core

// country.go resolves free-text country input to a country id.
//
// Resolution order: two-letter ISO code, normalized name lookup, then the
// external resolver. Resolver answers are memoized under the normalized name
// so a batch asks at most once per spelling.

import (
	"context"
	"fmt"
	"strings"
)

// ResolverPrompt is the question sent to the country resolver.
func ResolverPrompt(name string) string {
	return fmt.Sprintf("ISO country code of %q, nothing else", name)
}

// matchCountry returns the id of the country named on the row, or 0.
func (im *Importer) matchCountry(ctx context.Context, row Row) int64 {
	c := im.cache
	name := row.Str("country_name")

	if len(name) == 2 {
		code := strings.ToUpper(name)
		if id, ok := c.CountryCodeToID[code]; ok {
			im.logger.Info("country name is an ISO code", "value", name, "country", c.CountryCodeToName[code])
			return id
		}
	}

	key := NormalizeCountryName(name)
	if code, ok := c.CountryNameToCode[key]; ok {
		if id, ok := c.CountryCodeToID[code]; ok {
			im.logger.Info("country matched", "value", name, "country", c.CountryCodeToName[code], "code", code)
			return id
		}
	}

	if im.ext.Resolver == nil {
		c.Log(row, FieldPartnerCountry, name, "Country name could not be found locally and no resolver is configured", true)
		return 0
	}

	im.logger.Info("no direct match for country, asking resolver", "value", name)
	answer, tokens, err := im.ext.Resolver.ResolveCountry(ctx, name)
	c.TokensUsed += tokens
	if err != nil {
		im.logger.Warn("country resolver failed", "value", name, "error", err)
		c.Log(row, FieldPartnerCountry, name, fmt.Sprintf("Country resolver failed: %v", err), true)
		return 0
	}
	im.logger.Debug("country resolver answered", "value", name, "answer", answer, "tokens", tokens)

	answer = strings.TrimSpace(answer)
	switch {
	case answer == "":
		im.logger.Warn("no answer from country resolver", "value", name)
		c.Log(row, FieldPartnerCountry, name, "No answer from country resolver", true)
		return 0
	case len(answer) != 2:
		c.Log(row, FieldPartnerCountry, name,
			fmt.Sprintf("Country resolver didn't answer a 2 letter country code but '%s'", answer), true)
		return 0
	}

	code := strings.ToUpper(answer)
	id, ok := c.CountryCodeToID[code]
	if !ok {
		c.Log(row, FieldPartnerCountry, name,
			fmt.Sprintf("Country name could not be found locally. Resolver said ISO code was '%s', which didn't match any country", code), true)
		return 0
	}

	im.logger.Info("resolver matched country", "value", name, "country", c.CountryCodeToName[code], "code", code)
	c.Log(row, FieldPartnerCountry, name,
		fmt.Sprintf("Country name could not be found locally. Resolver said ISO code was '%s', which matched to '%s'", code, c.CountryCodeToName[code]), false)
	if key != "" {
		c.CountryNameToCode[key] = code
	}
	return id
}
