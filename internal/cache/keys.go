package cache

import (
	"strings"

	"github.com/shopspring/decimal"
)

// KeyShippingOptions returns the cache key for priced shipping options.
func KeyShippingOptions(zone string, weight, subtotal decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("shipping:options:")
	b.WriteString(strings.ToUpper(zone))
	b.WriteString(":w")
	b.WriteString(weight.String())
	b.WriteString(":s")
	b.WriteString(subtotal.String())
	return b.String()
}
