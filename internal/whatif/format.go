package whatif

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// money renders a currency amount with thousands separators, e.g. "$1,234.50".
func money(v float64) string {
	return printer().Sprintf("$%.2f", v)
}

func sprintf(format string, args ...interface{}) string {
	return printer().Sprintf(format, args...)
}

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// sumAmounts adds amounts in decimal so cent values do not drift.
func sumAmounts(amounts ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total
}

// ceilCurrency rounds v up to the next whole currency unit.
func ceilCurrency(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Ceil().InexactFloat64()
}

var twelve = decimal.NewFromInt(12)
