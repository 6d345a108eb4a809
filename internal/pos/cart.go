package pos

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

// CartLine is one aggregated medicine entry. Total is always
// Quantity × UnitPrice.
type CartLine struct {
	MedicineID string          `json:"medicine_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int64           `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
	HowToUse   string          `json:"how_to_use,omitempty"`
}

// Cart keeps lines in insertion order, at most one per medicine.
type Cart struct {
	lines []CartLine
}

// Add merges quantity into the medicine's line, creating it when absent.
// The merged quantity may not exceed the snapshot stock; on rejection the
// cart is left unchanged.
func (c *Cart) Add(item domain.Medicine, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	idx := c.indexOf(item.ID)

	current := int64(0)
	if idx >= 0 {
		current = c.lines[idx].Quantity
	}
	if quantity > item.Stock-current {
		return fmt.Errorf("%s: requested %d more with %d in cart, available %d: %w", item.Name, quantity, current, item.Stock, domain.ErrInsufficientStock)
	}

	if idx >= 0 {
		line := &c.lines[idx]
		line.Quantity += quantity
		line.Total = line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity))
		return nil
	}
	c.lines = append(c.lines, CartLine{
		MedicineID: item.ID,
		Name:       item.Name,
		UnitPrice:  item.Price,
		Quantity:   quantity,
		Total:      item.Price.Mul(decimal.NewFromInt(quantity)),
		HowToUse:   item.HowToUse,
	})
	return nil
}

// Remove deletes the line at index. An out of range index is ignored and
// reported as false.
func (c *Cart) Remove(index int) bool {
	if index < 0 || index >= len(c.lines) {
		return false
	}
	c.lines = append(c.lines[:index:index], c.lines[index+1:]...)
	return true
}

func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Line(index int) (CartLine, bool) {
	if index < 0 || index >= len(c.lines) {
		return CartLine{}, false
	}
	return c.lines[index], true
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) indexOf(medicineID string) int {
	for i, line := range c.lines {
		if line.MedicineID == medicineID {
			return i
		}
	}
	return -1
}
