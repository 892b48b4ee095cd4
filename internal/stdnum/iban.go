package stdnum

import "github.com/jbub/banking/iban"

// IBAN reports whether s is a valid, upper-case IBAN without spaces: known
// country, registered BBAN structure and ISO 7064 mod 97-10 checksum.
func IBAN(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isUpperAlnum(s[i]) {
			return false
		}
	}
	return iban.Validate(s) == nil
}

// mod97 computes the ISO 7064 remainder of s with letters expanded to 10..35.
func mod97(s string) int {
	rem := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			rem = (rem*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			v := int(c-'A') + 10
			rem = (rem*100 + v) % 97
		default:
			return -1
		}
	}
	return rem
}

func isUpperAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z')
}
