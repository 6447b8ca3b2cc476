package trade

import "github.com/alexherrero/tradecore/internal/core/timeframe"

// MarginTrade is the individual (potentially hedging-capable) margin
// variant (spec.md §6): each trade owns its own position id, distinct
// from IndMarginTrade where one shared, indivisible position backs every
// trade on a market. Because positions here aren't shared, take-profit
// and stop-loss are kept as position-level target prices rather than
// live broker-side child orders; neither this type nor the Strategy
// Trader closes the trade when price reaches them. Close() is the only
// order MarginTrade ever submits beyond the entry. Grounded on
// original_source/strategy/strategyindmargintrade.py's open/close/
// order_signal structure, simplified per the "potentially compatible
// with hedging markets" note in its docstring (hedging markets don't
// need PositionID to be globally unique across trades the way
// IndMarginTrade's single position must be).
type MarginTrade struct {
	Trade

	CreateRefOID string
	ExitRefOID   string

	CreateOID string
	ExitOID   string

	PositionID string
	Leverage   float64
}

// NewMarginTrade builds a MarginTrade in state New.
func NewMarginTrade(tf timeframe.Timeframe) *MarginTrade {
	return &MarginTrade{Trade: NewTrade(TypeMargin, tf)}
}

func (t *MarginTrade) Base() *Trade { return &t.Trade }

// Open submits the entry order that establishes the position.
func (t *MarginTrade) Open(br Broker, marketID string, direction int, orderType OrderType, orderPrice, quantity, takeProfit, stopLoss, leverage float64) bool {
	order := &Order{
		MarketID:  marketID,
		Direction: direction,
		Type:      orderType,
		Price:     orderPrice,
		Quantity:  quantity,
		Leverage:  leverage,
	}
	br.SetRefOrderID(order)
	t.CreateRefOID = order.RefOrderID

	t.Dir = direction
	t.Op = orderPrice
	t.Oq = quantity
	t.Tp = takeProfit
	t.Sl = stopLoss
	t.Leverage = leverage
	t.Stats.EntryMaker = !order.IsMarket()

	if br.CreateOrder(order) {
		t.PositionID = order.PositionID
		if t.Eot == 0 && order.CreatedTime != 0 {
			t.Eot = order.CreatedTime
		}
		return true
	}
	t.CreateRefOID = ""
	return false
}

// Remove cancels the entry order without closing an acquired position.
func (t *MarginTrade) Remove(br Broker) {
	if t.CreateOID != "" && br.CancelOrder(t.CreateOID) {
		t.CreateRefOID, t.CreateOID = "", ""
		t.setEntryState(StateCanceled)
	}
}

// CancelOpen cancels the unfilled entry order.
func (t *MarginTrade) CancelOpen(br Broker) bool {
	if t.CreateOID == "" {
		return true
	}
	if !br.CancelOrder(t.CreateOID) {
		return false
	}
	t.CreateRefOID, t.CreateOID = "", ""
	t.setEntryState(StateCanceled)
	return true
}

// CancelClose cancels the live exit order, if any, leaving the position
// open.
func (t *MarginTrade) CancelClose(br Broker) bool {
	if t.ExitOID == "" {
		return true
	}
	if !br.CancelOrder(t.ExitOID) {
		return false
	}
	t.ExitRefOID, t.ExitOID = "", ""
	return true
}

// ModifyTakeProfit updates the position-level take-profit target. No
// order is placed, and nothing closes the trade when price trades
// through the target.
func (t *MarginTrade) ModifyTakeProfit(br Broker, marketID string, price float64) bool {
	t.Tp = price
	return true
}

// ModifyStopLoss updates the position-level stop-loss target.
func (t *MarginTrade) ModifyStopLoss(br Broker, marketID string, price float64) bool {
	t.Sl = price
	return true
}

// Close cancels any live entry/exit order and closes the remaining
// filled quantity at market.
func (t *MarginTrade) Close(br Broker, marketID string) bool {
	if t.CreateOID != "" && br.CancelOrder(t.CreateOID) {
		t.CreateRefOID, t.CreateOID = "", ""
		t.setEntryState(StateCanceled)
	}
	if t.ExitOID != "" && br.CancelOrder(t.ExitOID) {
		t.ExitRefOID, t.ExitOID = "", ""
	}

	if t.E == t.X {
		return true
	}
	if t.E < t.X {
		return false
	}

	order := &Order{
		MarketID:   marketID,
		Direction:  t.CloseDirection(),
		Type:       OrderTypeMarket,
		Quantity:   t.E - t.X,
		ReduceOnly: true,
	}
	br.SetRefOrderID(order)
	t.ExitRefOID = order.RefOrderID
	t.Stats.ExitMaker = !order.IsMarket()

	if br.CreateOrder(order) {
		return true
	}
	t.ExitRefOID = ""
	return false
}

// OrderSignal correlates an asynchronous order event and updates fill
// accounting.
func (t *MarginTrade) OrderSignal(ev Event) {
	switch ev.Type {
	case EventOrderOpened:
		switch ev.RefOrderID {
		case t.CreateRefOID:
			t.CreateOID = ev.OrderID
			t.Eot = ev.Timestamp
			if ev.StopLoss != nil {
				t.Sl = *ev.StopLoss
			}
			if ev.TakeProfit != nil {
				t.Tp = *ev.TakeProfit
			}
			t.setEntryState(StateOpened)
		case t.ExitRefOID:
			t.ExitOID = ev.OrderID
			t.Xot = ev.Timestamp
		}

	case EventOrderDeleted:
		switch ev.OrderID {
		case t.CreateOID:
			t.CreateRefOID, t.CreateOID = "", ""
			t.setEntryState(StateDeleted)
		case t.ExitOID:
			t.ExitRefOID, t.ExitOID = "", ""
		}

	case EventOrderCanceled:
		switch ev.OrderID {
		case t.CreateOID:
			t.CreateRefOID, t.CreateOID = "", ""
			t.setEntryState(StateCanceled)
		case t.ExitOID:
			t.ExitRefOID, t.ExitOID = "", ""
		}

	case EventOrderTraded:
		switch ev.OrderID {
		case t.CreateOID:
			t.applyEntryFill(ev)
		case t.ExitOID:
			t.applyExitFill(ev)
		}
	}
}

func (t *MarginTrade) applyEntryFill(ev Event) {
	filled := cumulativeOrIncremental(ev, t.E)

	switch {
	case ev.AvgPrice != nil && *ev.AvgPrice > 0:
		t.Aep = *ev.AvgPrice
	case ev.ExecPrice != nil && *ev.ExecPrice > 0 && t.E+filled > 0:
		t.Aep = ((t.Aep * t.E) + (*ev.ExecPrice * filled)) / (t.E + filled)
	default:
		t.Aep = t.Op
	}

	if ev.CumulativeFilled != nil {
		t.E = *ev.CumulativeFilled
	} else {
		t.E += filled
	}

	if t.E >= t.Oq {
		t.setEntryState(StateFilled)
		t.CreateOID, t.CreateRefOID = "", ""
	} else {
		t.setEntryState(StatePartiallyFilled)
	}
}

func (t *MarginTrade) applyExitFill(ev Event) {
	filled := cumulativeOrIncremental(ev, t.X)

	switch {
	case ev.AvgPrice != nil && *ev.AvgPrice > 0:
		t.Pl = plRate(t.Dir, t.Aep, *ev.AvgPrice)
		t.Axp = *ev.AvgPrice
	case ev.ExecPrice != nil && *ev.ExecPrice > 0 && t.Aep*t.E != 0:
		t.Pl += plDelta(t.Dir, t.Aep, t.E, *ev.ExecPrice, filled)
		if t.X+filled > 0 {
			t.Axp = ((t.Axp * t.X) + (*ev.ExecPrice * filled)) / (t.X + filled)
		}
	}

	if ev.CumulativeFilled != nil {
		t.X = *ev.CumulativeFilled
	} else {
		t.X += filled
	}

	if t.X >= t.Oq {
		t.setExitState(StateFilled)
		t.ExitOID, t.ExitRefOID = "", ""
	} else {
		t.setExitState(StatePartiallyFilled)
	}
}

// PositionSignal handles the broker reporting this position gone
// (manual close, liquidation, ADL): any unaccounted quantity is marked
// exited at the last execution price.
func (t *MarginTrade) PositionSignal(ev Event) {
	if ev.Type != EventPositionDeleted {
		return
	}
	t.PositionID = ""
	t.CreateOID, t.CreateRefOID = "", ""

	if t.X < t.E {
		filled := t.E - t.X
		if ev.ExecPrice != nil && *ev.ExecPrice > 0 {
			t.Pl += plDelta(t.Dir, t.Aep, t.E, *ev.ExecPrice, filled)
		}
		t.X = t.E
	}
	t.setExitState(StateFilled)
}

// IsTargetOrder reports whether orderID or refOrderID names this
// trade's entry or exit order.
func (t *MarginTrade) IsTargetOrder(orderID, refOrderID string) bool {
	if orderID != "" && (orderID == t.CreateOID || orderID == t.ExitOID) {
		return true
	}
	if refOrderID != "" && (refOrderID == t.CreateRefOID || refOrderID == t.ExitRefOID) {
		return true
	}
	return false
}

// IsTargetPosition reports whether positionID or refOrderID names this
// trade's position.
func (t *MarginTrade) IsTargetPosition(positionID, refOrderID string) bool {
	if positionID != "" && positionID == t.PositionID {
		return true
	}
	if refOrderID != "" && refOrderID == t.CreateRefOID {
		return true
	}
	return false
}

// Dumps serializes the trade for persistence.
func (t *MarginTrade) Dumps() map[string]interface{} {
	data := t.dumpsCommon()
	data["create-ref-oid"] = t.CreateRefOID
	data["exit-ref-oid"] = t.ExitRefOID
	data["create-oid"] = t.CreateOID
	data["exit-oid"] = t.ExitOID
	data["position-id"] = t.PositionID
	data["leverage"] = t.Leverage
	return data
}

// Loads restores a dumped trade.
func (t *MarginTrade) Loads(data map[string]interface{}) error {
	t.loadsCommon(data)
	t.CreateRefOID = stringField(data, "create-ref-oid")
	t.ExitRefOID = stringField(data, "exit-ref-oid")
	t.CreateOID = stringField(data, "create-oid")
	t.ExitOID = stringField(data, "exit-oid")
	t.PositionID = stringField(data, "position-id")
	t.Leverage = float64Field(data, "leverage")
	return nil
}

var _ Variant = (*MarginTrade)(nil)
