package entity

import (
	"fmt"
	"sort"
	"strings"
)

// KnownCurrencies is the set of codes the rate provider publishes, base included
var KnownCurrencies = map[string]struct{}{
	"AUD": {}, "BGN": {}, "BRL": {}, "CAD": {}, "CHF": {}, "CNY": {},
	"CZK": {}, "DKK": {}, "EUR": {}, "GBP": {}, "HKD": {}, "HUF": {},
	"IDR": {}, "ILS": {}, "INR": {}, "ISK": {}, "JPY": {}, "KRW": {},
	"MXN": {}, "MYR": {}, "NOK": {}, "NZD": {}, "PHP": {}, "PLN": {},
	"RON": {}, "SEK": {}, "SGD": {}, "THB": {}, "TRY": {}, "USD": {},
	"ZAR": {},
}

// currencyAliases maps free-text currency names to their codes
var currencyAliases = map[string]string{
	"euro":    "EUR",
	"dollar":  "USD",
	"pfund":   "GBP",
	"pound":   "GBP",
	"yen":     "JPY",
	"franken": "CHF",
	"franc":   "CHF",
}

// ResolveCurrency normalizes user input to a currency code.
// Aliases are matched case-insensitively; anything else is upper-cased as-is.
func ResolveCurrency(input string) string {
	trimmed := strings.TrimSpace(input)
	if code, ok := currencyAliases[strings.ToLower(trimmed)]; ok {
		return code
	}
	return strings.ToUpper(trimmed)
}

// IsKnownCurrency reports whether code is one of KnownCurrencies
func IsKnownCurrency(code string) bool {
	_, ok := KnownCurrencies[code]
	return ok
}

// CheckAliases verifies every alias resolves to a known currency code.
// It is run once at startup.
func CheckAliases() error {
	var broken []string
	for alias, code := range currencyAliases {
		if !IsKnownCurrency(code) {
			broken = append(broken, alias+"->"+code)
		}
	}

	if len(broken) > 0 {
		sort.Strings(broken)
		return fmt.Errorf("aliases point to unknown currencies: %s", strings.Join(broken, ", "))
	}

	if !IsKnownCurrency(BaseCurrency) {
		return fmt.Errorf("base currency %s is not a known currency", BaseCurrency)
	}

	return nil
}
