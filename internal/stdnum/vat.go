package stdnum

import (
	"regexp"
	"strconv"
	"strings"
)

// vatFormats holds the national part of each EU VAT number, keyed by the VAT
// prefix. Greece uses EL and Northern Ireland XI.
var vatFormats = map[string]*regexp.Regexp{
	"AT": regexp.MustCompile(`^U\d{8}$`),
	"BE": regexp.MustCompile(`^[01]?\d{9}$`),
	"BG": regexp.MustCompile(`^\d{9,10}$`),
	"CY": regexp.MustCompile(`^\d{8}[A-Z]$`),
	"CZ": regexp.MustCompile(`^\d{8,10}$`),
	"DE": regexp.MustCompile(`^[1-9]\d{8}$`),
	"DK": regexp.MustCompile(`^\d{8}$`),
	"EE": regexp.MustCompile(`^\d{9}$`),
	"EL": regexp.MustCompile(`^\d{9}$`),
	"ES": regexp.MustCompile(`^[A-Z0-9]\d{7}[A-Z0-9]$`),
	"FI": regexp.MustCompile(`^\d{8}$`),
	"FR": regexp.MustCompile(`^[0-9A-HJ-NP-Z]{2}\d{9}$`),
	"HR": regexp.MustCompile(`^\d{11}$`),
	"HU": regexp.MustCompile(`^\d{8}$`),
	"IE": regexp.MustCompile(`^(\d{7}[A-W][A-IW]?|\d[A-Z+*]\d{5}[A-W])$`),
	"IT": regexp.MustCompile(`^\d{11}$`),
	"LT": regexp.MustCompile(`^(\d{9}|\d{12})$`),
	"LU": regexp.MustCompile(`^\d{8}$`),
	"LV": regexp.MustCompile(`^\d{11}$`),
	"MT": regexp.MustCompile(`^\d{8}$`),
	"NL": regexp.MustCompile(`^\d{9}B\d{2}$`),
	"PL": regexp.MustCompile(`^\d{10}$`),
	"PT": regexp.MustCompile(`^\d{9}$`),
	"RO": regexp.MustCompile(`^[1-9]\d{1,9}$`),
	"SE": regexp.MustCompile(`^\d{10}01$`),
	"SI": regexp.MustCompile(`^[1-9]\d{7}$`),
	"SK": regexp.MustCompile(`^\d{10}$`),
	"XI": regexp.MustCompile(`^(\d{9}|\d{12}|GD\d{3}|HA\d{3})$`),
}

// vatChecksums holds the national check digit algorithms that are verified
// on top of the format. Countries without an entry are checked on format only.
var vatChecksums = map[string]func(string) bool{
	"BE": beVATChecksum,
	"DE": deVATChecksum,
	"FR": frVATChecksum,
	"IT": itVATChecksum,
	"LU": luVATChecksum,
	"NL": nlVATChecksum,
}

// VAT reports whether s is a valid EU VAT number including its 2-letter
// prefix, for example "FR96552100554".
func VAT(s string) bool {
	if len(s) < 4 {
		return false
	}
	prefix, number := s[:2], s[2:]
	format, ok := vatFormats[prefix]
	if !ok || !format.MatchString(number) {
		return false
	}
	if check, ok := vatChecksums[prefix]; ok {
		return check(number)
	}
	return true
}

// VATCountries returns the prefixes VAT knows about.
func VATCountries() []string {
	out := make([]string, 0, len(vatFormats))
	for prefix := range vatFormats {
		out = append(out, prefix)
	}
	return out
}

func frVATChecksum(number string) bool {
	siren := number[2:]
	// Monaco companies have no SIREN.
	if siren[:3] != "000" && !SIREN(siren) {
		return false
	}
	n, _ := strconv.ParseInt(siren, 10, 64)
	if IsDigits(number[:2]) {
		key, _ := strconv.Atoi(number[:2])
		return key == int((n*100+12)%97)
	}

	// New-style keys use letters; I and O are excluded from the alphabet.
	const alphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	c0 := strings.IndexByte(alphabet, number[0])
	c1 := strings.IndexByte(alphabet, number[1])
	if c0 < 0 || c1 < 0 {
		return false
	}
	var check int64
	if c0 < 10 {
		check = int64(c0*24 + c1 - 10)
	} else {
		check = int64(c0*34 + c1 - 100)
	}
	return (n+1+check/11)%11 == check%11
}

func beVATChecksum(number string) bool {
	if len(number) == 9 {
		number = "0" + number
	}
	head, _ := strconv.ParseInt(number[:8], 10, 64)
	tail, _ := strconv.Atoi(number[8:])
	return 97-int(head%97) == tail
}

// deVATChecksum applies ISO 7064 mod 11,10.
func deVATChecksum(number string) bool {
	check := 5
	for i := 0; i < len(number); i++ {
		c := check
		if c == 0 {
			c = 10
		}
		check = ((c*2)%11 + int(number[i]-'0')) % 10
	}
	return check == 1
}

func itVATChecksum(number string) bool {
	if number[:7] == "0000000" {
		return false
	}
	office, _ := strconv.Atoi(number[7:10])
	if !(office >= 1 && office <= 100) && office != 120 && office != 121 && office != 888 && office != 999 {
		return false
	}
	return Luhn(number)
}

func luVATChecksum(number string) bool {
	head, _ := strconv.Atoi(number[:6])
	tail, _ := strconv.Atoi(number[6:])
	return head%89 == tail
}

// nlVATChecksum accepts both the legacy BSN-based numbers and the
// mod 97 numbers issued to sole proprietors since 2020.
func nlVATChecksum(number string) bool {
	if mod97("NL"+number) == 1 {
		return true
	}
	sum := 0
	for i := 0; i < 8; i++ {
		sum += int(number[i]-'0') * (9 - i)
	}
	sum -= int(number[8] - '0')
	return sum%11 == 0
}
