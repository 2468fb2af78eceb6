package ticket

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders a whole-rupee amount with Indian digit grouping,
// e.g. "INR 1,23,456".
func FormatINR(amount float64) string {
	return printer.Sprintf("INR %d", int64(math.Round(amount)))
}

// FormatDuration renders minutes as "1h 35m".
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
