package normalize

import (
	"regexp"
	"strings"
)

// currencyNames maps free-text fragments (Uzbek latin, Uzbek cyrillic,
// Russian, English) to ISO codes. Checked only after the explicit-code
// paths fail; unknown labels are dropped, never guessed.
var currencyNames = []struct {
	code     string
	fragment *regexp.Regexp
}{
	{"USD", regexp.MustCompile(`(?i)aqsh|dollar|доллар|долл`)},
	{"EUR", regexp.MustCompile(`(?i)evro|yevro|евро|euro`)},
	{"RUB", regexp.MustCompile(`(?i)rubl|рубл|rossiya|россия`)},
	{"GBP", regexp.MustCompile(`(?i)funt|sterling|фунт`)},
	{"CHF", regexp.MustCompile(`(?i)frank|shveytsariya|франк`)},
	{"JPY", regexp.MustCompile(`(?i)iyen|yena|yen\b|иен`)},
	{"CNY", regexp.MustCompile(`(?i)yuan|xitoy|юан`)},
	{"KZT", regexp.MustCompile(`(?i)tenge|qozog|тенге`)},
	{"TRY", regexp.MustCompile(`(?i)lira|turk|лира`)},
}

// numericCodes covers providers that identify currencies by the
// ISO-4217 numeric code.
var numericCodes = map[string]string{
	"840": "USD", "978": "EUR", "643": "RUB",
	"826": "GBP", "756": "CHF", "392": "JPY", "156": "CNY", "398": "KZT",
}

// codeTypos fixes provider-side misspellings seen in the wild.
var codeTypos = map[string]string{"GRB": "GBP"}

var parenCode = regexp.MustCompile(`\(([A-Za-z]{3})\*?\)`)
var bareCode = regexp.MustCompile(`\b([A-Z]{3})\b`)

// DetectCurrency resolves a provider label to an ISO 3-letter code.
// Resolution order: exact 3-letter code, code in parentheses
// ("Evro (EUR)", "AQSh dollari (USD*)"), ISO numeric code, name lookup,
// and finally any embedded bare 3-letter code.
func DetectCurrency(label string) (string, bool) {
	l := strings.TrimSpace(label)
	if l == "" {
		return "", false
	}

	if len(l) == 3 {
		up := strings.ToUpper(l)
		if fixed, ok := codeTypos[up]; ok {
			return fixed, true
		}
		if isAlpha(up) {
			return up, true
		}
	}
	if m := parenCode.FindStringSubmatch(l); m != nil {
		return fix(strings.ToUpper(m[1])), true
	}
	if code, ok := numericCodes[l]; ok {
		return code, true
	}
	for _, n := range currencyNames {
		if n.fragment.MatchString(l) {
			return n.code, true
		}
	}
	if m := bareCode.FindStringSubmatch(l); m != nil {
		return fix(m[1]), true
	}
	return "", false
}

func fix(code string) string {
	if fixed, ok := codeTypos[code]; ok {
		return fixed
	}
	return code
}

func isAlpha(s string) bool {
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
