package contacts

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultCountry is used when the caller does not name one.
	DefaultCountry = "IN"

	// MinPhoneDigits is the shortest digit string accepted as a phone number.
	MinPhoneDigits = 8

	// internationalDigits is the length at which an unprefixed number is
	// assumed to already carry its country code.
	internationalDigits = 10
)

// Country describes how national numbers are written in one country.
type Country struct {
	ISO            string `yaml:"iso" json:"iso"`
	Name           string `yaml:"name" json:"name"`
	CallingCode    string `yaml:"calling_code" json:"callingCode"`
	NationalLength int    `yaml:"national_length" json:"nationalLength"`
	TrunkPrefix    string `yaml:"trunk_prefix" json:"trunkPrefix,omitempty"`
}

//go:embed countries.yaml
var countriesYAML []byte

var (
	countries     []Country
	countryByISO  map[string]Country
	countryByCode map[string]Country
)

func init() {
	if err := yaml.Unmarshal(countriesYAML, &countries); err != nil {
		panic(fmt.Sprintf("contacts: bad countries.yaml: %v", err))
	}
	countryByISO = make(map[string]Country, len(countries))
	countryByCode = make(map[string]Country, len(countries))
	for _, c := range countries {
		countryByISO[c.ISO] = c
		// first entry wins for shared codes (US before CA)
		if _, ok := countryByCode[c.CallingCode]; !ok {
			countryByCode[c.CallingCode] = c
		}
	}
}

// LookupCountry finds a country by ISO code ("IN") or calling code ("91",
// "+91"). Lookup is case-insensitive.
func LookupCountry(id string) (Country, bool) {
	id = strings.TrimSpace(id)
	if c, ok := countryByISO[strings.ToUpper(id)]; ok {
		return c, true
	}
	c, ok := countryByCode[strings.TrimPrefix(id, "+")]
	return c, ok
}

// Countries returns the known countries in table order.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// NormalizePhone converts a raw phone string into "+<digits>".
//
// Rules, first match wins:
//   - a leading '+' is kept and the digits follow as-is
//   - a "00" international prefix becomes '+'
//   - the default country's national length gets its calling code
//   - national length plus a trunk prefix has the trunk stripped first
//   - 10 or more digits are assumed to include a country code
//
// Anything else fails with a *NormalizationError.
func NormalizePhone(raw, defaultCountry string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &NormalizationError{Input: raw, Reason: "empty value"}
	}

	if IsCanonicalPhone(trimmed) {
		return trimmed, nil
	}

	digits, plus := splitPhone(trimmed)
	if len(digits) < MinPhoneDigits {
		return "", &NormalizationError{Input: raw, Reason: fmt.Sprintf("fewer than %d digits", MinPhoneDigits)}
	}

	if plus {
		return "+" + digits, nil
	}

	if rest, ok := strings.CutPrefix(digits, "00"); ok {
		if len(rest) < MinPhoneDigits {
			return "", &NormalizationError{Input: raw, Reason: "international number too short"}
		}
		return "+" + rest, nil
	}

	if defaultCountry == "" {
		defaultCountry = DefaultCountry
	}
	if c, ok := LookupCountry(defaultCountry); ok {
		if len(digits) == c.NationalLength {
			return "+" + c.CallingCode + digits, nil
		}
		if c.TrunkPrefix != "" &&
			len(digits) == c.NationalLength+len(c.TrunkPrefix) &&
			strings.HasPrefix(digits, c.TrunkPrefix) {
			return "+" + c.CallingCode + digits[len(c.TrunkPrefix):], nil
		}
	}

	if len(digits) >= internationalDigits {
		return "+" + digits, nil
	}
	return "", &NormalizationError{Input: raw, Reason: "cannot determine country code"}
}

// IsCanonicalPhone reports whether s is already in "+<digits>" form.
func IsCanonicalPhone(s string) bool {
	if len(s) < MinPhoneDigits+1 || s[0] != '+' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// splitPhone returns the ASCII digits of s and whether a '+' appeared before
// the first digit. Every other character is dropped.
func splitPhone(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	plus := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			b.WriteByte(ch)
		case ch == '+' && b.Len() == 0:
			plus = true
		}
	}
	return b.String(), plus
}
