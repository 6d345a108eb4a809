package pos

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money formats rupiah amounts for display with locale digit grouping.
type Money struct {
	printer *message.Printer
	places  int32
}

func NewMoney(locale string, places int32) Money {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	if places < 0 {
		places = 0
	}
	return Money{printer: message.NewPrinter(tag), places: places}
}

func (m Money) Format(amount decimal.Decimal) string {
	rounded := amount.Round(m.places)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	whole := m.printer.Sprintf("%d", rounded.IntPart())
	if m.places == 0 {
		return "Rp " + sign + whole
	}
	fixed := rounded.StringFixed(m.places)
	fraction := fixed[strings.IndexByte(fixed, '.')+1:]
	return "Rp " + sign + whole + m.decimalSeparator() + fraction
}

// decimalSeparator is the locale's fraction separator, e.g. "," for id.
func (m Money) decimalSeparator() string {
	sample := m.printer.Sprintf("%.1f", 0.5)
	if len(sample) < 3 {
		return "."
	}
	return sample[1 : len(sample)-1]
}
