package trade

import "github.com/alexherrero/tradecore/internal/core/timeframe"

// IndMarginTrade is the indivisible-margin variant (spec.md §6): a single
// position per market with no integrated hedging, managed through a
// create order plus separate stop and limit child orders correlated by
// reference id. Grounded on
// original_source/strategy/strategyindmargintrade.py.
type IndMarginTrade struct {
	Trade

	CreateRefOID string
	StopRefOID   string
	LimitRefOID  string

	CreateOID string // entry order id
	StopOID   string // stop-loss child order id
	LimitOID  string // take-profit child order id

	PositionID string

	StopOrderQty  float64
	LimitOrderQty float64
}

// NewIndMarginTrade builds an IndMarginTrade in state New.
func NewIndMarginTrade(tf timeframe.Timeframe) *IndMarginTrade {
	return &IndMarginTrade{Trade: NewTrade(TypeIndMargin, tf)}
}

func (t *IndMarginTrade) Base() *Trade { return &t.Trade }

// Open submits the entry order and records the reference id used to
// correlate the broker's acknowledgement.
func (t *IndMarginTrade) Open(br Broker, marketID string, direction int, orderType OrderType, orderPrice, quantity, takeProfit, stopLoss, leverage float64) bool {
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

// Remove cancels the remaining entry and any live child orders without
// closing an already-acquired position.
func (t *IndMarginTrade) Remove(br Broker) {
	if t.CreateOID != "" && br.CancelOrder(t.CreateOID) {
		t.CreateRefOID, t.CreateOID = "", ""
		t.setEntryState(StateCanceled)
	}
	if t.StopOID != "" && br.CancelOrder(t.StopOID) {
		t.StopRefOID, t.StopOID = "", ""
		t.StopOrderQty = 0
	}
	if t.LimitOID != "" && br.CancelOrder(t.LimitOID) {
		t.LimitRefOID, t.LimitOID = "", ""
		t.LimitOrderQty = 0
	}
}

// CancelOpen cancels the unfilled (or partially filled) entry order.
func (t *IndMarginTrade) CancelOpen(br Broker) bool {
	if t.CreateOID != "" {
		if !br.CancelOrder(t.CreateOID) {
			return false
		}
		t.CreateRefOID, t.CreateOID = "", ""
		t.setEntryState(StateCanceled)
	}
	return true
}

// CancelClose cancels any live exit child order without touching the
// position itself.
func (t *IndMarginTrade) CancelClose(br Broker) bool {
	ok := true
	if t.StopOID != "" {
		if br.CancelOrder(t.StopOID) {
			t.StopRefOID, t.StopOID = "", ""
		} else {
			ok = false
		}
	}
	if t.LimitOID != "" {
		if br.CancelOrder(t.LimitOID) {
			t.LimitRefOID, t.LimitOID = "", ""
		} else {
			ok = false
		}
	}
	return ok
}

// ModifyTakeProfit replaces the limit child order with a new one at
// price, sized to the remaining (unexited) entry quantity.
func (t *IndMarginTrade) ModifyTakeProfit(br Broker, marketID string, price float64) bool {
	if t.LimitOID != "" {
		if !br.CancelOrder(t.LimitOID) {
			return false
		}
		t.LimitRefOID, t.LimitOID, t.LimitOrderQty = "", "", 0
	}

	if t.E == t.X {
		return true
	}
	if t.E < t.X {
		return false
	}
	if t.E <= 0 {
		return false
	}

	order := &Order{
		MarketID:   marketID,
		Direction:  t.CloseDirection(),
		Type:       OrderTypeTakeProfitLimit,
		Quantity:   t.E - t.X,
		Price:      price,
		ReduceOnly: true,
	}
	br.SetRefOrderID(order)
	t.LimitRefOID = order.RefOrderID
	t.Stats.ExitMaker = !order.IsMarket()

	if br.CreateOrder(order) {
		t.LimitOID = order.OrderID
		t.LimitOrderQty = order.Quantity
		t.Tp = price
		return true
	}
	t.LimitRefOID, t.LimitOrderQty = "", 0
	return false
}

// ModifyStopLoss replaces the stop child order with a new one at price,
// sized to the remaining entry quantity, reduce-only.
func (t *IndMarginTrade) ModifyStopLoss(br Broker, marketID string, price float64) bool {
	if t.StopOID != "" {
		if !br.CancelOrder(t.StopOID) {
			return false
		}
		t.StopRefOID, t.StopOID = "", ""
	}

	if t.E == t.X {
		return true
	}
	if t.E < t.X {
		return false
	}
	if t.E <= 0 {
		return false
	}

	order := &Order{
		MarketID:   marketID,
		Direction:  t.CloseDirection(),
		Type:       OrderTypeStop,
		Quantity:   t.E - t.X,
		Price:      price,
		ReduceOnly: true,
	}
	br.SetRefOrderID(order)
	t.StopRefOID = order.RefOrderID
	t.Stats.ExitMaker = !order.IsMarket()

	if br.CreateOrder(order) {
		t.StopOID = order.OrderID
		t.StopOrderQty = order.Quantity
		t.Sl = price
		return true
	}
	t.StopRefOID, t.StopOrderQty = "", 0
	return false
}

// Close cancels the entry and any stop/limit child orders, then closes
// the remaining filled quantity at market.
//
// original_source's close() had an unreachable `return True` after an
// earlier branch already returned — a single dead statement, not a bug,
// but it left two return points doing the same thing depending on which
// branch executed. The port collapses the whole method to one return at
// the bottom (spec.md Open Question: IndMarginTrade.Close must have a
// single return point).
func (t *IndMarginTrade) Close(br Broker, marketID string) bool {
	if t.CreateOID != "" && br.CancelOrder(t.CreateOID) {
		t.CreateRefOID, t.CreateOID = "", ""
		t.setEntryState(StateCanceled)
	}
	if t.StopOID != "" && br.CancelOrder(t.StopOID) {
		t.StopRefOID, t.StopOID = "", ""
	}
	if t.LimitOID != "" && br.CancelOrder(t.LimitOID) {
		t.LimitRefOID = ""
	}

	closed := true
	switch {
	case t.E == t.X:
		closed = true
	case t.E < t.X:
		closed = false
	default:
		order := &Order{
			MarketID:   marketID,
			Direction:  t.CloseDirection(),
			Type:       OrderTypeMarket,
			Quantity:   t.E - t.X,
			ReduceOnly: true,
		}
		br.SetRefOrderID(order)
		t.StopRefOID = order.RefOrderID
		t.Stats.ExitMaker = !order.IsMarket()

		if br.CreateOrder(order) {
			closed = true
		} else {
			t.StopRefOID = ""
			closed = false
		}
	}
	return closed
}

// OrderSignal correlates an asynchronous order event against the
// create/stop/limit reference ids this trade is tracking and updates
// fill accounting.
func (t *IndMarginTrade) OrderSignal(ev Event) {
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
		case t.StopRefOID:
			t.StopOID = ev.OrderID
			t.Xot = ev.Timestamp
		case t.LimitRefOID:
			t.LimitOID = ev.OrderID
			t.Xot = ev.Timestamp
		}

	case EventOrderDeleted:
		switch ev.OrderID {
		case t.CreateOID:
			t.CreateRefOID, t.CreateOID = "", ""
			t.setEntryState(StateDeleted)
		case t.LimitOID:
			t.LimitRefOID, t.LimitOID = "", ""
		case t.StopOID:
			t.StopRefOID, t.StopOID = "", ""
		}

	case EventOrderCanceled:
		switch ev.OrderID {
		case t.CreateOID:
			t.CreateRefOID, t.CreateOID = "", ""
			t.setEntryState(StateCanceled)
		case t.LimitOID:
			t.LimitRefOID, t.LimitOID = "", ""
		case t.StopOID:
			t.StopRefOID, t.StopOID = "", ""
		}

	case EventOrderUpdated:
		// price/qty modified by the broker; nothing to reconcile until a
		// traded/canceled event follows.

	case EventOrderTraded:
		t.applyFill(ev)
	}
}

func (t *IndMarginTrade) applyFill(ev Event) {
	switch ev.OrderID {
	case t.CreateOID:
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

	case t.LimitOID, t.StopOID:
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
			if ev.OrderID == t.LimitOID {
				t.LimitOID, t.LimitRefOID = "", ""
			} else {
				t.StopOID, t.StopRefOID = "", ""
			}
		} else {
			t.setExitState(StatePartiallyFilled)
		}
	}
}

// cumulativeOrIncremental extracts the newly-filled quantity this event
// carries, preferring a cumulative-filled figure (broker-precise) over a
// bare incremental "filled" delta. Mirrors
// original_source/strategyindmargintrade.py's order_signal fill math.
func cumulativeOrIncremental(ev Event, priorCumulative float64) float64 {
	if ev.CumulativeFilled != nil && *ev.CumulativeFilled > 0 {
		return *ev.CumulativeFilled - priorCumulative
	}
	if ev.Filled != nil && *ev.Filled > 0 {
		return *ev.Filled
	}
	return 0
}

func plRate(dir int, entryPrice, exitPrice float64) float64 {
	if dir > 0 {
		return (exitPrice - entryPrice) / entryPrice
	}
	if dir < 0 {
		return (entryPrice - exitPrice) / entryPrice
	}
	return 0
}

func plDelta(dir int, entryPrice, entryQty, execPrice, filledQty float64) float64 {
	denom := entryPrice * entryQty
	if denom == 0 || filledQty <= 0 {
		return 0
	}
	if dir > 0 {
		return ((execPrice * filledQty) - denom) / denom
	}
	if dir < 0 {
		return (denom - (execPrice * filledQty)) / denom
	}
	return 0
}

// PositionSignal handles a position-deleted event: the position is gone
// (manual close, liquidation), so whatever quantity wasn't yet
// accounted for on the exit side is marked filled at the last known
// execution price and the trade is considered fully exited.
func (t *IndMarginTrade) PositionSignal(ev Event) {
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

// IsTargetOrder reports whether orderID or refOrderID names any of this
// trade's create/stop/limit orders.
func (t *IndMarginTrade) IsTargetOrder(orderID, refOrderID string) bool {
	if orderID != "" && (orderID == t.CreateOID || orderID == t.StopOID || orderID == t.LimitOID) {
		return true
	}
	if refOrderID != "" && (refOrderID == t.CreateRefOID || refOrderID == t.StopRefOID || refOrderID == t.LimitRefOID) {
		return true
	}
	return false
}

// IsTargetPosition reports whether positionID or refOrderID names this
// trade's position.
func (t *IndMarginTrade) IsTargetPosition(positionID, refOrderID string) bool {
	if positionID != "" && positionID == t.PositionID {
		return true
	}
	if refOrderID != "" && refOrderID == t.CreateRefOID {
		return true
	}
	return false
}

// IsClosing additionally considers a pending stop/limit reference id
// live, since a child order may be in flight before the broker
// acknowledges it as opened.
func (t *IndMarginTrade) IsClosing() bool {
	return t.LimitRefOID != "" || t.StopRefOID != "" || t.Trade.IsClosing()
}

// Dumps serializes the trade for persistence.
func (t *IndMarginTrade) Dumps() map[string]interface{} {
	data := t.dumpsCommon()
	data["create-ref-oid"] = t.CreateRefOID
	data["stop-ref-oid"] = t.StopRefOID
	data["limit-ref-oid"] = t.LimitRefOID
	data["create-oid"] = t.CreateOID
	data["stop-oid"] = t.StopOID
	data["limit-oid"] = t.LimitOID
	data["position-id"] = t.PositionID
	data["stop-order-qty"] = t.StopOrderQty
	data["limit-order-qty"] = t.LimitOrderQty
	return data
}

// Loads restores a dumped trade.
func (t *IndMarginTrade) Loads(data map[string]interface{}) error {
	t.loadsCommon(data)
	t.CreateRefOID = stringField(data, "create-ref-oid")
	t.StopRefOID = stringField(data, "stop-ref-oid")
	t.LimitRefOID = stringField(data, "limit-ref-oid")
	t.CreateOID = stringField(data, "create-oid")
	t.StopOID = stringField(data, "stop-oid")
	t.LimitOID = stringField(data, "limit-oid")
	t.PositionID = stringField(data, "position-id")
	t.StopOrderQty = float64Field(data, "stop-order-qty")
	t.LimitOrderQty = float64Field(data, "limit-order-qty")
	return nil
}

var _ Variant = (*IndMarginTrade)(nil)
