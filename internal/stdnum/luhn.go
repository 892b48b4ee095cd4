// Package stdnum provides checksum validation for the identifiers that show up
// in partner and product imports: EU VAT numbers, IBANs, French SIREN/SIRET
// company numbers and EAN barcodes.
//
// All functions expect an already compacted value (no spaces or separators).
// Callers normalize first; validation here never mutates its input.
package stdnum

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Luhn reports whether s passes the Luhn (mod 10) check.
func Luhn(s string) bool {
	if !IsDigits(s) {
		return false
	}
	sum := 0
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		d := int(s[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// DigitsOnly strips everything but ASCII digits from s.
func DigitsOnly(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b = append(b, s[i])
		}
	}
	return string(b)
}
