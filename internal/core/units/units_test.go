package units

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToBaseFromBase(t *testing.T) {
	table := Default()

	two := decimal.NewFromInt(2)
	assert.True(t, table.ToBase(Palette, two).Equal(decimal.NewFromInt(160)))
	assert.True(t, table.FromBase(Palette, decimal.NewFromInt(160)).Equal(two))

	// Paket and Stück pass through untouched.
	half := decimal.RequireFromString("0.5")
	assert.True(t, table.ToBase(Paket, half).Equal(half))
	assert.True(t, table.ToBase(Stueck, two).Equal(two))
}

func TestConfigurableFactor(t *testing.T) {
	table := NewTable(50)
	assert.True(t, table.ToBase(Palette, decimal.NewFromInt(3)).Equal(decimal.NewFromInt(150)))

	// Non-positive factor falls back to default.
	fallback := NewTable(0)
	assert.True(t, fallback.PaletteFactor().Equal(decimal.NewFromInt(DefaultPaletteFactor)))
}

func TestStep(t *testing.T) {
	table := Default()
	assert.Equal(t, "0.1", table.Step(Paket).String())
	assert.Equal(t, "1", table.Step(Palette).String())
	assert.Equal(t, "1", table.Step(Stueck).String())
	assert.Equal(t, "1", table.Step("Karton").String())
}

func TestRound(t *testing.T) {
	table := Default()

	tests := []struct {
		unit string
		in   string
		want string
	}{
		{Paket, "0.25", "0.3"},
		{Paket, "1.44", "1.4"},
		{Stueck, "2.5", "3"},
		{Palette, "1.2", "1"},
	}
	for _, tt := range tests {
		got := table.Round(tt.unit, decimal.RequireFromString(tt.in))
		assert.Equal(t, tt.want, got.String(), "unit %s in %s", tt.unit, tt.in)
	}
}

func TestIs(t *testing.T) {
	assert.True(t, Is(" palette ", Palette))
	assert.True(t, Is("PAKET", Paket))
	assert.False(t, Is("Karton", Palette))
}
