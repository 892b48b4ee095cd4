package postgres

import (
	"sort"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/erpimport/internal/core"
)

func TestBuildInsert(t *testing.T) {
	vals := core.Row{
		"email":      "a@example.com",
		"name":       "Acme",
		"country_id": int64(3),
		"is_company": true,
		"vat":        nil,
		"unknown":    "ignored",
	}

	sql, args := buildInsert("res_partner", partnerColumns, vals, "active", "true")

	assert.Equal(t,
		"INSERT INTO res_partner (name, is_company, country_id, email, vat, active) VALUES ($1, $2, $3, $4, $5, true) RETURNING id",
		sql)
	require.Len(t, args, 5)
	assert.Equal(t, pgtype.Text{String: "Acme", Valid: true}, args[0])
	assert.Equal(t, pgtype.Bool{Bool: true, Valid: true}, args[1])
	assert.Equal(t, pgtype.Int8{Int64: 3, Valid: true}, args[2])
	assert.Equal(t, pgtype.Text{}, args[4])
}

func TestBuildInsert_TranslatedName(t *testing.T) {
	_, args := buildInsert("product_template", templateColumns, core.Row{"name": "Coffee"})

	require.Len(t, args, 1)
	assert.Equal(t, map[string]string{"en_US": "Coffee"}, args[0])
}

func TestUnknownKeys(t *testing.T) {
	vals := core.Row{
		"name":       "Coffee",
		"barcode":    "3017620422003",
		"seller_ids": nil,
		"trigger":    "manual",
		"colour":     "brown",
	}

	got := unknownKeys(vals, productRelations, templateColumns, variantColumns)
	sort.Strings(got)

	assert.Equal(t, []string{"colour"}, got)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Germany", displayName(map[string]string{"fr_FR": "Allemagne", "en_US": "Germany"}, ""))
	assert.Equal(t, "Allemagne", displayName(map[string]string{"fr_FR": "Allemagne", "en_US": "Germany"}, "fr_FR"))
	assert.Equal(t, "Germany", displayName(map[string]string{"fr_FR": "Allemagne", "en_US": "Germany"}, "nl_NL"))
	assert.Equal(t, "Allemagne", displayName(map[string]string{"fr_FR": "Allemagne"}, ""))
	assert.Empty(t, displayName(nil, "fr_FR"))

	// Without the store language or English, the lowest key wins on every call.
	names := map[string]string{"nl_NL": "Duitsland", "de_DE": "Deutschland", "fr_FR": "Allemagne", "it_IT": "Germania"}
	for range 20 {
		assert.Equal(t, "Deutschland", displayName(names, "es_ES"))
	}
}
