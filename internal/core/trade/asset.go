package trade

import "github.com/alexherrero/tradecore/internal/core/timeframe"

// AssetTrade is the spot/asset variant (spec.md §6): a single buy order
// followed by a single sell order covering the entire filled quantity.
// There is no position id and no leverage; closing is simply selling
// what was bought. Grounded on
// original_source/strategy/strategytrade.py's StrategyTrade base
// (AssetTrade is the TRADE_ASSET specialization the base class
// describes but the retrieved original_source doesn't carry a separate
// file for) and on strategyindmargintrade.py's order_signal fill
// accounting, which applies unchanged to a single-order buy/sell pair.
type AssetTrade struct {
	Trade

	CreateRefOID string
	ExitRefOID   string

	CreateOID string // buy order id
	ExitOID   string // sell order id
}

// NewAssetTrade builds an AssetTrade in state New.
func NewAssetTrade(tf timeframe.Timeframe) *AssetTrade {
	return &AssetTrade{Trade: NewTrade(TypeAsset, tf)}
}

func (t *AssetTrade) Base() *Trade { return &t.Trade }

// Open submits the buy order.
func (t *AssetTrade) Open(br Broker, marketID string, direction int, orderType OrderType, orderPrice, quantity, takeProfit, stopLoss, leverage float64) bool {
	order := &Order{
		MarketID:  marketID,
		Direction: direction,
		Type:      orderType,
		Price:     orderPrice,
		Quantity:  quantity,
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
		if t.Eot == 0 && order.CreatedTime != 0 {
			t.Eot = order.CreatedTime
		}
		return true
	}
	t.CreateRefOID = ""
	return false
}

// Remove cancels the buy order without selling anything already bought.
func (t *AssetTrade) Remove(br Broker) {
	if t.CreateOID != "" && br.CancelOrder(t.CreateOID) {
		t.CreateRefOID, t.CreateOID = "", ""
		t.setEntryState(StateCanceled)
	}
	if t.ExitOID != "" && br.CancelOrder(t.ExitOID) {
		t.ExitRefOID, t.ExitOID = "", ""
	}
}

// CancelOpen cancels the unfilled buy order.
func (t *AssetTrade) CancelOpen(br Broker) bool {
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

// CancelClose cancels the live sell order without re-buying anything.
func (t *AssetTrade) CancelClose(br Broker) bool {
	if t.ExitOID == "" {
		return true
	}
	if !br.CancelOrder(t.ExitOID) {
		return false
	}
	t.ExitRefOID, t.ExitOID = "", ""
	return true
}

// ModifyTakeProfit replaces the sell order with a new limit order at
// price, sized to the remaining unsold quantity.
func (t *AssetTrade) ModifyTakeProfit(br Broker, marketID string, price float64) bool {
	return t.replaceExit(br, marketID, OrderTypeTakeProfitLimit, price, &t.Tp)
}

// ModifyStopLoss replaces the sell order with a new stop order at price.
func (t *AssetTrade) ModifyStopLoss(br Broker, marketID string, price float64) bool {
	return t.replaceExit(br, marketID, OrderTypeStop, price, &t.Sl)
}

func (t *AssetTrade) replaceExit(br Broker, marketID string, orderType OrderType, price float64, target *float64) bool {
	if t.ExitOID != "" {
		if !br.CancelOrder(t.ExitOID) {
			return false
		}
		t.ExitRefOID, t.ExitOID = "", ""
	}

	if t.E == t.X {
		return true
	}
	if t.E < t.X || t.E <= 0 {
		return false
	}

	order := &Order{
		MarketID:  marketID,
		Direction: t.CloseDirection(),
		Type:      orderType,
		Quantity:  t.E - t.X,
		Price:     price,
	}
	br.SetRefOrderID(order)
	t.ExitRefOID = order.RefOrderID
	t.Stats.ExitMaker = !order.IsMarket()

	if br.CreateOrder(order) {
		t.ExitOID = order.OrderID
		*target = price
		return true
	}
	t.ExitRefOID = ""
	return false
}

// Close cancels any pending buy/sell order and sells the remaining
// filled quantity at market.
func (t *AssetTrade) Close(br Broker, marketID string) bool {
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
		MarketID:  marketID,
		Direction: t.CloseDirection(),
		Type:      OrderTypeMarket,
		Quantity:  t.E - t.X,
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
func (t *AssetTrade) OrderSignal(ev Event) {
	switch ev.Type {
	case EventOrderOpened:
		switch ev.RefOrderID {
		case t.CreateRefOID:
			t.CreateOID = ev.OrderID
			t.Eot = ev.Timestamp
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

func (t *AssetTrade) applyEntryFill(ev Event) {
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

func (t *AssetTrade) applyExitFill(ev Event) {
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

// PositionSignal is a no-op for AssetTrade: spot holdings have no
// broker-side position object to be deleted out from under the trade.
func (t *AssetTrade) PositionSignal(ev Event) {}

// IsTargetOrder reports whether orderID or refOrderID names this
// trade's buy or sell order.
func (t *AssetTrade) IsTargetOrder(orderID, refOrderID string) bool {
	if orderID != "" && (orderID == t.CreateOID || orderID == t.ExitOID) {
		return true
	}
	if refOrderID != "" && (refOrderID == t.CreateRefOID || refOrderID == t.ExitRefOID) {
		return true
	}
	return false
}

// IsTargetPosition always reports false: asset trades have no position.
func (t *AssetTrade) IsTargetPosition(positionID, refOrderID string) bool { return false }

// Dumps serializes the trade for persistence.
func (t *AssetTrade) Dumps() map[string]interface{} {
	data := t.dumpsCommon()
	data["create-ref-oid"] = t.CreateRefOID
	data["exit-ref-oid"] = t.ExitRefOID
	data["create-oid"] = t.CreateOID
	data["exit-oid"] = t.ExitOID
	return data
}

// Loads restores a dumped trade.
func (t *AssetTrade) Loads(data map[string]interface{}) error {
	t.loadsCommon(data)
	t.CreateRefOID = stringField(data, "create-ref-oid")
	t.ExitRefOID = stringField(data, "exit-ref-oid")
	t.CreateOID = stringField(data, "create-oid")
	t.ExitOID = stringField(data, "exit-oid")
	return nil
}

var _ Variant = (*AssetTrade)(nil)
