package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders an amount for display with the rupee symbol, two decimal
// places and Indian digit grouping. Display formatting happens after all
// computation; the formatted string is never fed back into a calculation.
func FormatINR(v float64) string {
	return inr.Sprintf("₹%v", number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
