package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRowsWithFullHeader(t *testing.T) {
	rows := [][]string{
		{"Название", "Цена", "Дизайн", "Скидка", "Цена за 2", "Цена от 3"},
		{"Молоко", "1 299", "sale", "Да", "", ""},
		{"Носки", "700", "", "-", "1200", "500"},
		{"Хлеб", "не цена", "", "", "", ""},
	}

	res := ParseRows(rows)

	assert.True(t, res.HasTableDesigns)
	assert.True(t, res.HasTableDiscounts)
	require.Len(t, res.Items, 2)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 4, res.Skipped[0].Row)

	milk := res.Items[0]
	assert.Equal(t, "Молоко", milk.Label)
	assert.Equal(t, float64(1299), milk.Price)
	assert.Equal(t, "sale", milk.DesignType)
	require.NotNil(t, milk.HasDiscount)
	assert.True(t, *milk.HasDiscount)

	socks := res.Items[1]
	require.NotNil(t, socks.HasDiscount)
	assert.False(t, *socks.HasDiscount)
	assert.Equal(t, float64(1200), socks.PriceFor2)
	assert.Equal(t, float64(500), socks.PriceFrom3)
}

func TestParseRowsWithoutHeader(t *testing.T) {
	rows := [][]string{
		{"Молоко", "1299"},
		{"Хлеб", "59,90"},
	}

	res := ParseRows(rows)

	assert.False(t, res.HasTableDesigns)
	assert.False(t, res.HasTableDiscounts)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Молоко", res.Items[0].Label)
	assert.InDelta(t, 59.9, res.Items[1].Price, 0.001)
}

func TestParseRowsSkipsEmptyAndBadRows(t *testing.T) {
	rows := [][]string{
		{"Название", "Цена"},
		{"", ""},
		{"", "100"},
		{"Товар", "-5"},
		{"Товар", "100"},
	}

	res := ParseRows(rows)

	require.Len(t, res.Items, 1)
	require.Len(t, res.Skipped, 2, "blank row is ignored silently, bad rows are reported")
}

func TestParseRowsRejectsNonFinitePrices(t *testing.T) {
	rows := [][]string{
		{"Название", "Цена"},
		{"Товар", "inf"},
		{"Товар", "-Inf"},
		{"Товар", "nan"},
		{"Товар", "100"},
	}

	res := ParseRows(rows)

	require.Len(t, res.Items, 1)
	assert.Equal(t, float64(100), res.Items[0].Price)
	require.Len(t, res.Skipped, 3)
	for i, skip := range res.Skipped {
		assert.Equal(t, i+2, skip.Row)
	}
}

func TestParseRowsNumericLabelKeptVerbatim(t *testing.T) {
	rows := [][]string{
		{"Название", "Цена"},
		{"12345", "100"},
	}

	res := ParseRows(rows)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "12345", res.Items[0].Label)
}
