// Package sheet reads import rows from CSV and XLSX spreadsheets.
//
// The first row holds the headers. Every following non-blank row becomes a
// core.Row whose "line" is the 1-based spreadsheet row number, so logs point
// at the row the user sees in their spreadsheet application.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/erpimport/internal/core"
)

// Type is the type a column value is converted to.
type Type string

const (
	String Type = "string"
	Bool   Type = "bool"
	Int    Type = "int"
	Float  Type = "float"
)

// DefaultTypes are applied to fields without an explicit type.
var DefaultTypes = map[string]Type{
	"is_company":     Bool,
	"vat_rate":       Int,
	"supplier_delay": Int,
}

// DefaultMaxSize is the largest accepted file (50MB).
const DefaultMaxSize = 50 << 20

// Options control how a spreadsheet is read.
type Options struct {
	Sheet     string            // XLSX sheet name; the first sheet when empty
	Delimiter rune              // CSV delimiter; sniffed from the header when 0
	Columns   map[string]string // Header -> field; unmapped headers are normalized
	Types     map[string]Type   // Field -> type, on top of DefaultTypes
	MaxSize   int64             // 0 means DefaultMaxSize
}

var xlsxMagic = []byte("PK\x03\x04")

// Read reads all rows of r. name is only used for messages.
func Read(r io.Reader, name string, opts Options) ([]core.Row, error) {
	limit := opts.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", core.ErrFileTooLarge, name, limit)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyFile, name)
	}

	var records [][]string
	if bytes.HasPrefix(data, xlsxMagic) {
		records, err = readXLSX(data, opts.Sheet)
	} else {
		records, err = readCSV(data, opts.Delimiter)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrInvalidSheet, name, err)
	}

	rows := toRows(records, opts)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no data rows", core.ErrEmptyFile, name)
	}
	return rows, nil
}

func readXLSX(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}
	return f.GetRows(sheet)
}

// readCSV strips a byte order mark and decodes non UTF-8 files as
// Windows-1252, the usual export encoding of spreadsheet tools.
func readCSV(data []byte, delimiter rune) ([][]string, error) {
	data, _, err := transform.Bytes(xunicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		if data, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), data); err != nil {
			return nil, err
		}
	}

	if delimiter == 0 {
		delimiter = sniffDelimiter(data)
	}
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// sniffDelimiter picks the most frequent of , ; tab and | in the header line.
func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	best, count := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(header, []byte(string(d))); n > count {
			best, count = d, n
		}
	}
	return best
}

func toRows(records [][]string, opts Options) []core.Row {
	if len(records) == 0 {
		return nil
	}
	fields := make([]string, len(records[0]))
	for i, h := range records[0] {
		fields[i] = fieldName(h, opts.Columns)
	}

	var rows []core.Row
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := core.Row{"line": i + 2}
		for j, cell := range rec {
			if j >= len(fields) || fields[j] == "" {
				continue
			}
			row[fields[j]] = typed(cleanCell(cell), typeOf(fields[j], opts.Types))
		}
		rows = append(rows, row)
	}
	return rows
}

// fieldName maps a header to a field. Explicit mappings match the header
// case-insensitively; other headers are lowercased with spaces as underscores.
func fieldName(header string, columns map[string]string) string {
	h := cleanCell(header)
	for from, to := range columns {
		if strings.EqualFold(strings.TrimSpace(from), h) {
			return to
		}
	}
	return strings.ReplaceAll(strings.ToLower(h), " ", "_")
}

func typeOf(field string, types map[string]Type) Type {
	if t, ok := types[field]; ok {
		return t
	}
	if t, ok := DefaultTypes[field]; ok {
		return t
	}
	return String
}

// typed converts a cell. Values that do not parse stay strings so the
// pipeline reports them.
func typed(s string, t Type) any {
	if s == "" {
		return nil
	}
	switch t {
	case Bool:
		switch strings.ToLower(s) {
		case "1", "true", "t", "yes", "y", "x", "oui", "vrai":
			return true
		case "0", "false", "f", "no", "n", "non", "faux":
			return false
		}
	case Int:
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	case Float:
		if f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
			return f
		}
	}
	return s
}

// cleanCell removes common spreadsheet export artifacts: surrounding
// whitespace and Excel's ="..." text prefix.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// IsUserError reports whether err comes from the file content rather than
// from reading it.
func IsUserError(err error) bool {
	return errors.Is(err, core.ErrInvalidSheet) ||
		errors.Is(err, core.ErrEmptyFile) ||
		errors.Is(err, core.ErrFileTooLarge)
}
