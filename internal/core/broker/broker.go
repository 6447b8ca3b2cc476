// Package broker defines the broker abstraction the Strategy Execution Core
// consumes (spec.md §6): order placement/cancellation, client reference id
// issuance for correlating asynchronous acknowledgements, and market/balance
// queries. It is implemented by Adapter over the existing execution.Broker
// and data provider stack (see adapter.go), and by a deterministic fake used
// in tests.
package broker

import "github.com/alexherrero/tradecore/internal/core/instrument"

// OrderType mirrors the order types the trade state machine issues.
type OrderType int

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeStop
	OrderTypeTakeProfitLimit
)

// Order is the core's own order representation, distinct from models.Order:
// it carries the reduce-only/leverage/position fields the margin variants
// need and is mutated in place by CreateOrder.
type Order struct {
	MarketID    string
	Direction   int // 1 long, -1 short
	Type        OrderType
	Price       float64 // limit/stop price, 0 for market
	Quantity    float64
	Leverage    float64
	ReduceOnly  bool
	RefOrderID  string // client-generated, set by SetRefOrderID before CreateOrder

	// Populated by CreateOrder on success.
	OrderID     string
	PositionID  string
	CreatedTime int64
}

// IsMarket reports whether the order executes at market price.
func (o *Order) IsMarket() bool { return o.Type == OrderTypeMarket }

// Broker is the abstraction the Trade State Machine and Strategy Trader
// drive order placement through (spec.md §6).
type Broker interface {
	// SetRefOrderID issues a unique client reference id and assigns it to
	// order.RefOrderID before submission, so asynchronous acknowledgements
	// can be correlated (spec.md §9 Design Notes).
	SetRefOrderID(order *Order)

	// CreateOrder submits order and, on success, mutates it with OrderID,
	// PositionID and CreatedTime. Returns false on rejection/transient
	// failure, leaving the trade's state unchanged (spec.md "Failure semantics").
	CreateOrder(order *Order) bool

	// CancelOrder cancels a previously created order by its assigned id.
	CancelOrder(orderID string) bool

	// Market returns metadata for marketID, or nil if unknown.
	Market(marketID string) *instrument.Instrument

	// HasAsset reports whether the account holds any balance of quote.
	HasAsset(quote string) bool

	// HasQuantity reports whether the account's free balance of quote
	// covers qty.
	HasQuantity(quote string, qty float64) bool

	// AssetFree returns the free (available) balance of quote.
	AssetFree(quote string) float64
}
