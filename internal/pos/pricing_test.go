package pos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultPricing = Pricing{Rate: decimal.RequireFromString("0.11"), Places: 0}

func TestPricing_Compute(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		tax      string
		total    string
	}{
		{name: "round hundred thousand", subtotal: "100000", tax: "11000", total: "111000"},
		{name: "rounds half up", subtotal: "50", tax: "6", total: "56"},
		{name: "rounds down", subtotal: "40", tax: "4", total: "44"},
		{name: "empty", subtotal: "0", tax: "0", total: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []CartLine{{Total: decimal.RequireFromString(tt.subtotal)}}
			got := defaultPricing.Compute(lines)
			assert.Equal(t, tt.subtotal, got.Subtotal.String())
			assert.Equal(t, tt.tax, got.Tax.String())
			assert.Equal(t, tt.total, got.Total.String())
		})
	}
}

func TestPricing_ParacetamolScenario(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(paracetamol, 2))

	got := defaultPricing.Compute(c.Lines())
	assert.True(t, got.Subtotal.Equal(decimal.NewFromInt(10000)))
	assert.True(t, got.Tax.Equal(decimal.NewFromInt(1100)))
	assert.True(t, got.Total.Equal(decimal.NewFromInt(11100)))
}

func TestPricing_ConfiguredRateAndPlaces(t *testing.T) {
	p := Pricing{Rate: decimal.RequireFromString("0.125"), Places: 2}
	got := p.Compute([]CartLine{{Total: decimal.RequireFromString("10.10")}})
	assert.Equal(t, "1.26", got.Tax.String())
	assert.Equal(t, "11.36", got.Total.String())
	assert.Equal(t, "12.5", p.RatePercent())
	assert.Equal(t, "11", defaultPricing.RatePercent())
}
