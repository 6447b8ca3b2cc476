package trade

import "github.com/alexherrero/tradecore/internal/core/broker"

// Aliases onto internal/core/broker's types, so variant files read
// naturally ("br Broker", "ev Event") without importing the broker
// package by name everywhere a signature needs it.
type (
	Broker    = broker.Broker
	Order     = broker.Order
	OrderType = broker.OrderType
	Event     = broker.Event
	EventType = broker.EventType
)

const (
	OrderTypeMarket          = broker.OrderTypeMarket
	OrderTypeLimit           = broker.OrderTypeLimit
	OrderTypeStop            = broker.OrderTypeStop
	OrderTypeTakeProfitLimit = broker.OrderTypeTakeProfitLimit
)

const (
	EventOrderOpened    = broker.EventOrderOpened
	EventOrderDeleted   = broker.EventOrderDeleted
	EventOrderCanceled  = broker.EventOrderCanceled
	EventOrderUpdated   = broker.EventOrderUpdated
	EventOrderTraded    = broker.EventOrderTraded
	EventPositionDeleted = broker.EventPositionDeleted
)

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
