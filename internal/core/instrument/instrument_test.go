package instrument

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAdjustQuantity(t *testing.T) {
	testCases := []struct {
		name    string
		lotSize string
		qty     string
		expect  string
	}{
		{"exact multiple", "0.001", "0.01", "0.01"},
		{"floors down, never up", "0.001", "0.0105", "0.01"},
		{"zero lot size is a no-op", "0", "0.0105", "0.0105"},
		{"below one lot size floors to zero", "0.01", "0.005", "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inst := Instrument{LotSize: dec(tc.lotSize)}
			got := inst.AdjustQuantity(dec(tc.qty))
			assert.True(t, dec(tc.expect).Equal(got), "got %s want %s", got, tc.expect)
		})
	}
}

func TestAdjustPrice(t *testing.T) {
	testCases := []struct {
		name      string
		priceStep string
		price     string
		expect    string
	}{
		{"rounds to nearest step", "0.5", "10.3", "10.5"},
		{"rounds down to nearest step", "0.5", "10.2", "10"},
		{"zero price step is a no-op", "0", "10.237", "10.237"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inst := Instrument{PriceStep: dec(tc.priceStep)}
			got := inst.AdjustPrice(dec(tc.price))
			assert.True(t, dec(tc.expect).Equal(got), "got %s want %s", got, tc.expect)
		})
	}
}

func TestMeetsMinNotional(t *testing.T) {
	inst := Instrument{MinNotional: dec("10")}

	assert.True(t, inst.MeetsMinNotional(dec("1"), dec("10")))
	assert.True(t, inst.MeetsMinNotional(dec("2"), dec("6")))
	assert.False(t, inst.MeetsMinNotional(dec("1"), dec("9.99")))
}
