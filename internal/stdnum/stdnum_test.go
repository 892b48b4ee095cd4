package stdnum

import "testing"

func TestLuhn(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"552100554", true},
		{"732829320", true},
		{"123456789", false},
		{"79927398713", true},
		{"", false},
		{"12a4", false},
	}

	for _, tt := range tests {
		if got := Luhn(tt.input); got != tt.want {
			t.Errorf("Luhn(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSIREN(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "552100554", true},
		{"bad checksum", "552100555", false},
		{"too short", "55210055", false},
		{"too long", "5521005540", false},
		{"letters", "55210055A", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SIREN(tt.input); got != tt.want {
				t.Errorf("SIREN(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSIRET(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "55210055400013", true},
		{"valid other company", "73282932000074", true},
		{"bad checksum", "55210055400014", false},
		{"invalid siren part", "12345678900023", false},
		{"wrong length", "5521005540001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SIRET(tt.input); got != tt.want {
				t.Errorf("SIRET(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIBAN(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"france", "FR7630006000011234567890189", true},
		{"germany", "DE89370400440532013000", true},
		{"united kingdom", "GB82WEST12345698765432", true},
		{"bad checksum", "FR7630006000011234567890188", false},
		{"wrong length", "DE8937040044053201300", false},
		{"unknown country", "ZZ89370400440532013000", false},
		{"lowercase", "gb82west12345698765432", false},
		{"too short", "FR76", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IBAN(tt.input); got != tt.want {
				t.Errorf("IBAN(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEAN(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"ean13", "4006381333931", true},
		{"ean8", "96385074", true},
		{"ean13 bad check", "4006381333932", false},
		{"ean8 bad check", "96385075", false},
		{"wrong length", "400638133393", false},
		{"letters", "40063813339A1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EAN(tt.input); got != tt.want {
				t.Errorf("EAN(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestVAT(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"france", "FR96552100554", true},
		{"france bad key", "FR12345678901", false},
		{"france bad siren", "FR00123456789", false},
		{"france alphanumeric key", "FR0G552100554", true},
		{"france letter-first key", "FRA8552100554", true},
		{"france bad alphanumeric key", "FR0A552100554", false},
		{"germany", "DE136695976", true},
		{"germany bad check", "DE136695977", false},
		{"belgium", "BE0403170701", true},
		{"belgium short form", "BE403170701", true},
		{"italy", "IT00743110157", true},
		{"luxembourg", "LU15027442", true},
		{"luxembourg bad check", "LU15027443", false},
		{"netherlands", "NL004495445B01", true},
		{"spain format only", "ESA12345674", true},
		{"greece prefix", "EL123456789", true},
		{"unknown prefix", "US123456789", false},
		{"too short", "FR1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VAT(tt.input); got != tt.want {
				t.Errorf("VAT(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	if got := DigitsOnly("552 100 554"); got != "552100554" {
		t.Errorf("DigitsOnly = %q, want %q", got, "552100554")
	}
	if got := DigitsOnly("abc"); got != "" {
		t.Errorf("DigitsOnly = %q, want empty", got)
	}
}
