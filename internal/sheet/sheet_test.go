package sheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/JonMunkholm/erpimport/internal/core"
)

func TestRead_CSV(t *testing.T) {
	data := "\ufeffName;Is Company;Country;VAT Rate\n" +
		"Acme;1;France;200\n" +
		";;;\n" +
		`="00123";non;  Allemagne  ;abc` + "\n"

	rows, err := Read(strings.NewReader(data), "partners.csv", Options{
		Columns: map[string]string{"country": "country_name"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, core.Row{
		"line":         2,
		"name":         "Acme",
		"is_company":   true,
		"country_name": "France",
		"vat_rate":     200,
	}, rows[0])

	assert.Equal(t, 4, rows[1]["line"])
	assert.Equal(t, "00123", rows[1]["name"])
	assert.Equal(t, false, rows[1]["is_company"])
	assert.Equal(t, "Allemagne", rows[1]["country_name"])
	assert.Equal(t, "abc", rows[1]["vat_rate"])
}

func TestRead_CSVWindows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("name,city\nCafé,Orléans\n")
	require.NoError(t, err)

	rows, err := Read(strings.NewReader(encoded), "legacy.csv", Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Café", rows[0]["name"])
	assert.Equal(t, "Orléans", rows[0]["city"])
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"default_code", "name", "stock_qty", "supplier_delay"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"COF", "Coffee", 12.5, 3}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"TEA", "Tea"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Read(bytes.NewReader(buf.Bytes()), "products.xlsx", Options{
		Types: map[string]Type{"stock_qty": Float},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0]["line"])
	assert.Equal(t, "COF", rows[0]["default_code"])
	assert.Equal(t, 12.5, rows[0]["stock_qty"])
	assert.Equal(t, 3, rows[0]["supplier_delay"])
	assert.Equal(t, 4, rows[1]["line"])
	assert.NotContains(t, rows[1], "stock_qty")
}

func TestRead_XLSXMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = Read(bytes.NewReader(buf.Bytes()), "products.xlsx", Options{Sheet: "Products"})

	assert.ErrorIs(t, err, core.ErrInvalidSheet)
	assert.True(t, IsUserError(err))
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		opts Options
		want error
	}{
		{"empty", "  \n", Options{}, core.ErrEmptyFile},
		{"header only", "name,email\n", Options{}, core.ErrEmptyFile},
		{"too large", "name\nAcme\n", Options{MaxSize: 4}, core.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.data), "in.csv", tt.opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		header string
		want   rune
	}{
		{"a,b,c\n1;2", ','},
		{"a;b;c", ';'},
		{"a\tb\tc", '\t'},
		{"a|b", '|'},
		{"single", ','},
	}

	for _, tt := range tests {
		if got := sniffDelimiter([]byte(tt.header)); got != tt.want {
			t.Errorf("sniffDelimiter(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
