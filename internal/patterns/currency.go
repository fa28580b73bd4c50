package patterns

import (
	"strings"

	"FundingScanner/internal/domain"
)

var currencyCodes = map[string]string{
	"$":       "USD",
	"£":       "GBP",
	"€":       "EUR",
	"usd":     "USD",
	"gbp":     "GBP",
	"eur":     "EUR",
	"dollar":  "USD",
	"dollars": "USD",
	"pound":   "GBP",
	"pounds":  "GBP",
	"euro":    "EUR",
	"euros":   "EUR",
}

var magnitudes = map[string]domain.Magnitude{
	"k":        domain.MagnitudeThousand,
	"thousand": domain.MagnitudeThousand,
	"m":        domain.MagnitudeMillion,
	"mn":       domain.MagnitudeMillion,
	"million":  domain.MagnitudeMillion,
	"b":        domain.MagnitudeBillion,
	"bn":       domain.MagnitudeBillion,
	"billion":  domain.MagnitudeBillion,
}

// CurrencyCode maps a symbol, ISO code or currency word to a 3-letter code.
func CurrencyCode(raw string) (string, bool) {
	code, ok := currencyCodes[strings.ToLower(strings.TrimSpace(raw))]
	return code, ok
}

// MagnitudeOf maps a unit suffix to its magnitude.
func MagnitudeOf(raw string) (domain.Magnitude, bool) {
	m, ok := magnitudes[strings.ToLower(strings.TrimSpace(raw))]
	return m, ok
}
