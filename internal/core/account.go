package core

import (
	"fmt"
	"strings"
)

// AccountMatch describes how an account code was resolved.
type AccountMatch struct {
	ID          int64
	Code        string // Code of the matched account
	Approximate bool   // Matched on a longer reference code
}

// MatchAccount resolves an account code against the chart of accounts.
//
// Strategies, first hit wins:
//  1. exact code
//  2. code with trailing zeros stripped one at a time ("411000" -> "411")
//  3. first reference code, in ascending order, that starts with the code
//
// Only the third strategy is approximate.
func (c *Cache) MatchAccount(code string) (AccountMatch, bool) {
	if code == "" {
		return AccountMatch{}, false
	}
	if id, ok := c.AccountCodeToID[code]; ok {
		return AccountMatch{ID: id, Code: code}, true
	}

	for tmp := code; strings.HasSuffix(tmp, "0"); {
		tmp = tmp[:len(tmp)-1]
		if id, ok := c.AccountCodeToID[tmp]; ok && tmp != "" {
			return AccountMatch{ID: id, Code: tmp}, true
		}
	}

	for _, ref := range c.accountCodes() {
		if strings.HasPrefix(ref, code) {
			return AccountMatch{ID: c.AccountCodeToID[ref], Code: ref, Approximate: true}, true
		}
	}
	return AccountMatch{}, false
}

// matchAccountField substitutes <type>_account_code with the account relation.
func (im *Importer) matchAccountField(row Row, accType string) {
	key := accType + "_account_code"
	if !row.Has(key) {
		return
	}
	code := row.Str(key)
	field := accountField(accType)
	target := "property_account_" + accType + "_id"

	m, ok := im.cache.MatchAccount(code)
	if !ok {
		im.cache.Log(row, field, code, fmt.Sprintf("No match: account %s not in chart of accounts", code), true)
		return
	}
	if m.Approximate {
		im.cache.Log(row, field, code, fmt.Sprintf("Approximate match: account %s has been matched with account %s", code, m.Code), false)
	}
	row[target] = m.ID
}
