package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIDsAreMonotonic(t *testing.T) {
	s := NewSession("test")

	a := s.AddItem("a", 100)
	b := s.AddItem("b", 200)
	require.True(t, s.DeleteItem(a.ID))
	c := s.AddItem("c", 300)

	assert.Greater(t, b.ID, a.ID)
	assert.Greater(t, c.ID, b.ID, "deleted IDs are never reused")
}

func TestSessionRecomputesOnSettingsChange(t *testing.T) {
	s := NewSession("test")
	s.AddItem("a", 1299)
	s.AddItem("b", 1000)

	// Global discount off: every discountPrice equals the price.
	for _, item := range s.Items {
		assert.Equal(t, item.Price, item.DiscountPrice)
	}

	next := s.Settings
	next.Design = true
	next.DiscountAmount = 500
	next.MaxDiscountPercent = 5
	s.SetSettings(next)

	assert.Equal(t, float64(1234), s.Items[0].DiscountPrice)
	assert.Equal(t, float64(950), s.Items[1].DiscountPrice)

	next.Design = false
	s.SetSettings(next)
	for _, item := range s.Items {
		assert.Equal(t, item.Price, item.DiscountPrice, "toggle off resets all items")
	}
}

func TestSessionRecomputesOnPriceEdit(t *testing.T) {
	s := NewSession("test")
	item := s.AddItem("a", 1000)

	next := s.Settings
	next.Design = true
	next.DiscountAmount = 50
	next.MaxDiscountPercent = 10
	s.SetSettings(next)
	assert.Equal(t, float64(950), s.Items[0].DiscountPrice)

	price := 2000.0
	require.True(t, s.UpdateItem(item.ID, ItemPatch{Price: &price}))
	assert.Equal(t, float64(1950), s.Items[0].DiscountPrice)
}

func TestSessionRehydrationIsDirty(t *testing.T) {
	s := NewSession("test")
	s.AddItem("a", 1299)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	// Simulate a settings change that the persisted discount prices missed.
	var restored Session
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.True(t, restored.Dirty())

	restored.Settings.Design = true
	restored.Settings.DiscountAmount = 500
	restored.Settings.MaxDiscountPercent = 5

	params := restored.RenderAll(DefaultThemes())
	require.Len(t, params, 1)
	assert.Equal(t, "1 234", params[0].DiscountPrice)
	assert.False(t, restored.Dirty())
}

func TestSessionApplyImportSetsFlagsAndIDs(t *testing.T) {
	s := NewSession("test")
	s.AddItem("manual", 100)

	imported := []Item{
		{Label: "x", Price: 500},
		{Label: "y", Price: 700},
	}
	s.ApplyImport(imported, true, true)

	require.Len(t, s.Items, 2, "import replaces the working set")
	assert.True(t, s.Settings.HasTableDesigns)
	assert.True(t, s.Settings.HasTableDiscounts)
	assert.NotEqual(t, s.Items[0].ID, s.Items[1].ID)
	assert.NotZero(t, s.Items[0].ID)
}

func TestSessionTableOverridePrecedence(t *testing.T) {
	no := false
	s := NewSession("test")
	s.ApplyImport([]Item{
		{Label: "overridden", Price: 1000, HasDiscount: &no},
		{Label: "deferred", Price: 1000},
	}, false, true)

	next := s.Settings
	next.Design = true
	next.DesignType = DesignTypeTable
	next.DiscountAmount = 100
	next.MaxDiscountPercent = 50
	s.SetSettings(next)

	assert.Equal(t, float64(1000), s.Items[0].DiscountPrice, "per-row false wins over global true")
	assert.Equal(t, float64(900), s.Items[1].DiscountPrice, "silent row falls back to global")
}

func TestSessionResetKeepsTableFlags(t *testing.T) {
	s := NewSession("test")
	s.ApplyImport([]Item{{Label: "x", Price: 100}}, true, true)

	s.ResetSettings()
	assert.True(t, s.Settings.HasTableDesigns)
	assert.True(t, s.Settings.HasTableDiscounts)
	assert.Equal(t, DesignTypeDefault, s.Settings.DesignType)

	s.Clear()
	assert.False(t, s.Settings.HasTableDesigns)
	assert.False(t, s.Settings.HasTableDiscounts)
	assert.Empty(t, s.Items)
}
