package pos

import "github.com/shopspring/decimal"

// Pricing applies a flat tax rate and rounds tax to Places decimals.
type Pricing struct {
	Rate   decimal.Decimal
	Places int32
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func (p Pricing) Compute(lines []CartLine) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total)
	}
	tax := subtotal.Mul(p.Rate).Round(p.Places)
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// RatePercent is the rate as a display percentage, e.g. "11".
func (p Pricing) RatePercent() string {
	return p.Rate.Shift(2).String()
}
