package pos

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

var (
	paracetamol = domain.Medicine{ID: "a3f1c2d4-0001", Name: "Paracetamol", Stock: 10, Price: decimal.NewFromInt(5000), HowToUse: "3x1 sehari"}
	amoxicillin = domain.Medicine{ID: "b7e2aa10-0002", Name: "Amoxicillin", Stock: 4, Price: decimal.NewFromInt(12000)}
	vitaminC    = domain.Medicine{ID: "c0ffee00-0003", Name: "Vitamin C", Stock: 50, Price: decimal.RequireFromString("2500.50")}
)

func TestCart_AddNewLine(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(paracetamol, 2))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, paracetamol.ID, lines[0].MedicineID)
	assert.Equal(t, int64(2), lines[0].Quantity)
	assert.True(t, lines[0].Total.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, "3x1 sehari", lines[0].HowToUse)
}

func TestCart_AddMergesRepeatAdditions(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(paracetamol, 2))
	require.NoError(t, c.Add(amoxicillin, 1))
	require.NoError(t, c.Add(paracetamol, 3))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, paracetamol.ID, lines[0].MedicineID)
	assert.Equal(t, int64(5), lines[0].Quantity)
	assert.True(t, lines[0].Total.Equal(decimal.NewFromInt(25000)))
}

func TestCart_AddRejectsOverStock(t *testing.T) {
	var c Cart
	err := c.Add(amoxicillin, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Zero(t, c.Len())

	require.NoError(t, c.Add(amoxicillin, 3))
	before := c.Lines()
	err = c.Add(amoxicillin, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, before, c.Lines())

	require.NoError(t, c.Add(amoxicillin, 1))
	assert.Equal(t, int64(4), c.Lines()[0].Quantity)
}

func TestCart_AddRejectsHugeQuantityOnExistingLine(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(paracetamol, 1))
	before := c.Lines()

	err := c.Add(paracetamol, math.MaxInt64)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, before, c.Lines())

	err = c.Add(vitaminC, math.MaxInt64)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, c.Len())
	assert.True(t, defaultPricing.Compute(c.Lines()).Subtotal.Equal(decimal.NewFromInt(5000)))
}

func TestCart_AddRejectsNonPositive(t *testing.T) {
	var c Cart
	assert.ErrorIs(t, c.Add(paracetamol, 0), domain.ErrInvalidInput)
	assert.ErrorIs(t, c.Add(paracetamol, -1), domain.ErrInvalidInput)
	assert.Zero(t, c.Len())
}

func TestCart_RemovePreservesOrder(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(paracetamol, 1))
	require.NoError(t, c.Add(amoxicillin, 2))
	require.NoError(t, c.Add(vitaminC, 3))
	before := c.Lines()

	assert.True(t, c.Remove(1))
	after := c.Lines()
	require.Len(t, after, 2)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[1])
}

func TestCart_RemoveInvalidIndexIsNoop(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(paracetamol, 1))

	assert.False(t, c.Remove(-1))
	assert.False(t, c.Remove(1))
	assert.Equal(t, 1, c.Len())
}

func TestCart_LinesIsACopy(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(paracetamol, 1))
	lines := c.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, int64(1), c.Lines()[0].Quantity)
}

func TestCart_Clear(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(paracetamol, 1))
	c.Clear()
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Lines())
}
