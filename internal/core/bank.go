package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/erpimport/internal/stdnum"
)

// checkBank turns the iban and bic columns into a bank account relation.
// It returns the kept IBAN, or "" when there was none or it was invalid.
func (im *Importer) checkBank(ctx context.Context, row Row, out *Outcome) (string, error) {
	c := im.cache
	if !row.Has("iban") {
		return "", nil
	}
	iban := strings.ToUpper(strings.ReplaceAll(row.Str("iban"), " ", ""))
	delete(row, "iban")

	if !stdnum.IBAN(iban) {
		c.Log(row, FieldBankAccNumber, iban, "IBAN is not valid", true)
		return "", nil
	}
	if row.Has("bank_ids") {
		return "", ErrConflictingBankFields
	}

	account := BankAccount{AccNumber: iban}
	if row.Has("bic") {
		bic := strings.ToUpper(row.Str("bic"))
		delete(row, "bic")

		if len(bic) != 8 && len(bic) != 11 {
			c.Log(row, FieldBankBIC, bic, fmt.Sprintf("Wrong BIC: length is %d, should be 8 or 11", len(bic)), true)
			bic = ""
		}

		switch id, known := c.BankBICToID[bic]; {
		case bic == "":
		case known:
			account.BankID = id
		case !im.opts.CreateBank:
			c.Log(row, FieldBankBIC, bic, "BIC not found.", false)
		case im.opts.DeferCreations:
			out.Pending = append(out.Pending, PendingCreation{Kind: PendingBank, Key: bic, Name: bankName(row, bic)})
			account.BIC = bic
		default:
			id, err := im.ensureBank(ctx, row, bic, bankName(row, bic))
			if err != nil {
				return "", err
			}
			account.BankID = id
		}
	}

	row["bank_ids"] = []BankAccount{account}
	return iban, nil
}

func bankName(row Row, bic string) string {
	if name := row.Str("bank_name"); name != "" {
		return name
	}
	return bic
}
