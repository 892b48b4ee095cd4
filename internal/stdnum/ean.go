package stdnum

// EAN reports whether s is a GTIN/EAN barcode (8, 12, 13 or 14 digits) with a
// correct check digit.
func EAN(s string) bool {
	switch len(s) {
	case 8, 12, 13, 14:
	default:
		return false
	}
	if !IsDigits(s) {
		return false
	}
	return eanCheckDigit(s[:len(s)-1]) == s[len(s)-1]
}

// eanCheckDigit computes the GS1 check digit for the payload digits.
func eanCheckDigit(payload string) byte {
	sum := 0
	weight := 3
	for i := len(payload) - 1; i >= 0; i-- {
		sum += int(payload[i]-'0') * weight
		if weight == 3 {
			weight = 1
		} else {
			weight = 3
		}
	}
	return byte('0' + (10-sum%10)%10)
}
