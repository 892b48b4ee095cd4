package stdnum

// laPosteSIREN is the SIREN of La Poste, whose establishments do not follow
// the Luhn rule for SIRET numbers.
const laPosteSIREN = "356000000"

// SIREN reports whether s is a valid 9-digit French company number.
func SIREN(s string) bool {
	return len(s) == 9 && Luhn(s)
}

// SIRET reports whether s is a valid 14-digit French establishment number.
func SIRET(s string) bool {
	if len(s) != 14 || !IsDigits(s) {
		return false
	}
	if !SIREN(s[:9]) {
		return false
	}
	if Luhn(s) {
		return true
	}
	if s[:9] == laPosteSIREN {
		sum := 0
		for i := 0; i < len(s); i++ {
			sum += int(s[i] - '0')
		}
		return sum%5 == 0
	}
	return false
}
