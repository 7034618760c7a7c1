package match

import "strings"

// Stub unit prices by conductor family until the pricing service
// integration lands. Codes not covered fall back to a flat rate.
const defaultUnitPrice = 1500

var unitPriceByPrefix = []struct {
	prefix string
	price  int
}{
	{"AL240", 1250},
	{"AL185", 980},
	{"CU", 2100},
}

// PriceFor returns the stubbed per-unit price for a catalog code.
func PriceFor(code string) int {
	upper := strings.ToUpper(code)
	for _, p := range unitPriceByPrefix {
		if strings.HasPrefix(upper, p.prefix) {
			return p.price
		}
	}
	return defaultUnitPrice
}
