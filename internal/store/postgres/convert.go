package postgres

// convert.go converts loosely typed row values to pgtype parameters.
//
// Rows come from spreadsheets and arrive as strings, integers, floats and
// booleans. All to* functions return values with Valid=false for nil, empty
// or unparsable input so the database stores NULL.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

func toText(v any) pgtype.Text {
	var s string
	switch x := v.(type) {
	case nil:
		return pgtype.Text{}
	case string:
		s = x
	case float64:
		if x == math.Trunc(x) {
			s = strconv.FormatInt(int64(x), 10)
		} else {
			s = strconv.FormatFloat(x, 'f', -1, 64)
		}
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// toInt8 accepts ids as int, int64, integral float64 or digit strings.
// Zero is treated as "no relation".
func toInt8(v any) pgtype.Int8 {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case float64:
		if x != math.Trunc(x) {
			return pgtype.Int8{}
		}
		n = int64(x)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return pgtype.Int8{}
		}
		n = i
	default:
		return pgtype.Int8{}
	}
	if n == 0 {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: n, Valid: true}
}

// toBool accepts booleans, 0/1 and the usual yes/no spellings.
func toBool(v any) pgtype.Bool {
	switch x := v.(type) {
	case bool:
		return pgtype.Bool{Bool: x, Valid: true}
	case int:
		return pgtype.Bool{Bool: x != 0, Valid: true}
	case float64:
		return pgtype.Bool{Bool: x != 0, Valid: true}
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "t", "yes", "y", "1":
			return pgtype.Bool{Bool: true, Valid: true}
		case "false", "f", "no", "n", "0":
			return pgtype.Bool{Bool: false, Valid: true}
		}
	}
	return pgtype.Bool{}
}

// toNumeric handles decimals, numbers and strings carrying currency symbols,
// thousands separators or the accounting format for negatives "(123.45)".
func toNumeric(v any) pgtype.Numeric {
	var s string
	switch x := v.(type) {
	case nil:
		return pgtype.Numeric{}
	case decimal.Decimal:
		s = x.String()
	case decimal.NullDecimal:
		if !x.Valid {
			return pgtype.Numeric{}
		}
		s = x.Decimal.String()
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		s = cleanNumber(x)
	default:
		return pgtype.Numeric{}
	}

	if !numericRegex.MatchString(s) {
		return pgtype.Numeric{}
	}
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{}
	}
	return n
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.NewReplacer("$", "", "\u20ac", "", "\u00a3", "", " ", "", "\u00a0", "").Replace(s)
	// "1.234,5" and "12,5" are European notation; "1,234.5" is not.
	if strings.Contains(s, ",") {
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	if negative {
		s = "-" + s
	}
	return s
}

func toTimestamp(t time.Time) pgtype.Timestamp {
	if t.IsZero() {
		return pgtype.Timestamp{}
	}
	return pgtype.Timestamp{Time: t.UTC(), Valid: true}
}
