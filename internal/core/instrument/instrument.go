// Package instrument holds the read-only market metadata the Strategy
// Execution Core consumes from the market metadata service (tick/lot size,
// fees, min-notional) and from the exchange connector (last price, spread,
// 24h volume). The core never mutates an Instrument; it is refreshed by
// the owning data provider.
package instrument

import "github.com/shopspring/decimal"

// MarketKind distinguishes the trading model of a market.
type MarketKind int

const (
	KindSpot MarketKind = iota
	KindMargin
	KindIndivisibleMargin
)

// Instrument is the externally-owned, read-only market description a
// strategy trades against.
type Instrument struct {
	MarketID  string
	Symbol    string
	Quote     string
	Base      string
	Kind      MarketKind
	TradeBuySell bool // whether buy/sell (non-derivative) trading is enabled

	TickSize    decimal.Decimal
	LotSize     decimal.Decimal
	PriceStep   decimal.Decimal
	MakerFee    decimal.Decimal
	TakerFee    decimal.Decimal
	MinNotional decimal.Decimal

	Vol24hQuote decimal.Decimal
	LastPrice   decimal.Decimal
	Spread      decimal.Decimal

	// Region names the geo-restricted venue this market is listed on (e.g.
	// "US", "GLOBAL"), checked against a trader's configured allow-list
	// before an entry on it is accepted.
	Region string
}

// AdjustQuantity rounds qty down to the nearest LotSize increment, per the
// original market.adjust_quantity: quantity is floored, never rounded up,
// so an order never requests more than the caller can afford.
func (i Instrument) AdjustQuantity(qty decimal.Decimal) decimal.Decimal {
	if i.LotSize.IsZero() {
		return qty
	}
	steps := qty.Div(i.LotSize).Floor()
	return steps.Mul(i.LotSize)
}

// AdjustPrice rounds price to the nearest PriceStep increment.
func (i Instrument) AdjustPrice(price decimal.Decimal) decimal.Decimal {
	if i.PriceStep.IsZero() {
		return price
	}
	steps := price.Div(i.PriceStep).Round(0)
	return steps.Mul(i.PriceStep)
}

// MeetsMinNotional reports whether qty*price clears the exchange-enforced
// floor on order value.
func (i Instrument) MeetsMinNotional(qty, price decimal.Decimal) bool {
	return qty.Mul(price).GreaterThanOrEqual(i.MinNotional)
}
