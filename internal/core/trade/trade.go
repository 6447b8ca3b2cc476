// Package trade implements the Trade State Machine (spec.md §6): the
// common trade record, its entry/exit state machine, fill accounting,
// and the three trade variants (asset, margin, indivisible-margin) that
// drive it through a broker.Broker.
package trade

import (
	"sync"

	"github.com/alexherrero/tradecore/internal/core/timeframe"
)

// Type distinguishes the trading model a Trade was opened under.
// original_source/strategy/strategytrade.py's trade_type_to_str mapped
// both TRADE_MARGIN and TRADE_IND_MARGIN to "margin" (a copy-paste
// comparison against the wrong constant); Go's switch below compares
// each constant so the two variants dump distinct strings.
type Type int

const (
	TypeUndefined Type = iota - 1
	TypeAsset
	TypeMargin
	TypeIndMargin
)

// EntryState and ExitState share one state space: new, opened,
// partially filled, filled, plus the terminal rejected/deleted/canceled
// outcomes.
type State int

const (
	StateUndefined State = iota - 1
	StateNew
	StateRejected
	StateDeleted
	StateCanceled
	StateOpened
	StatePartiallyFilled
	StateFilled
)

// Stats holds the running best/worst excursion and fee bookkeeping a
// trade accumulates while active.
type Stats struct {
	BestPrice        float64
	BestTimestamp    int64
	WorstPrice       float64
	WorstTimestamp   int64
	EntryMaker       bool
	ExitMaker        bool
	EntryFees        float64
	ExitFees         float64
	Conditions       map[string]interface{}
}

// Trade is the common, variant-independent trade record. It is embedded
// by AssetTrade, MarginTrade and IndMarginTrade, which add the
// order/position correlation fields and broker-facing operations each
// trading model needs.
type Trade struct {
	mu sync.Mutex

	tradeType Type
	entryState State
	exitState  State

	TF timeframe.Timeframe // timeframe that produced this trade

	ID  int64
	Dir int // 1 long, -1 short

	Op float64 // ordered (limit) price
	Oq float64 // ordered quantity

	Tp float64 // take-profit price
	Sl float64 // stop-loss price

	Aep float64 // average entry price
	Axp float64 // average exit price

	Eot int64 // entry order opened timestamp
	Xot int64 // exit order opened timestamp

	E float64 // cumulative filled entry quantity
	X float64 // cumulative filled exit quantity

	Pl  float64 // profit/loss rate, valid once partially or fully closed
	Ptp float64 // partial take-profit rate

	userTrade bool
	operations []Operation
	nextOpID   int64

	Stats Stats
}

// Operation is a pending semi-automated adjustment queued against a
// trade (e.g. a scheduled take-profit move). The core ships the
// correlation/queueing machinery; concrete operation kinds are a
// strategy-layer concern and are represented opaquely here.
type Operation struct {
	ID   int64
	Kind string
	Data interface{}
	done bool
}

// CanDelete reports whether the operation has finished and can be
// pruned from the trade's operation list.
func (o Operation) CanDelete() bool { return o.done }

// NewTrade builds a Trade in state New for the given trade type and
// timeframe.
func NewTrade(t Type, tf timeframe.Timeframe) Trade {
	return Trade{
		tradeType:  t,
		entryState: StateNew,
		exitState:  StateNew,
		TF:         tf,
		Ptp:        1.0,
		nextOpID:   1,
		Stats: Stats{
			Conditions: make(map[string]interface{}),
		},
	}
}

func (t *Trade) Lock()   { t.mu.Lock() }
func (t *Trade) Unlock() { t.mu.Unlock() }

// TradeType reports the trading model (asset/margin/ind-margin).
func (t *Trade) TradeType() Type { return t.tradeType }

// EntryState reports the current entry-side state.
func (t *Trade) EntryState() State { return t.entryState }

// ExitState reports the current exit-side state.
func (t *Trade) ExitState() State { return t.exitState }

// setEntryState transitions the entry side. It is unexported: external
// callers go through order/position signal handling, never by direct
// assignment.
func (t *Trade) setEntryState(s State) { t.entryState = s }
func (t *Trade) setExitState(s State)  { t.exitState = s }

// CloseDirection is the exit order's direction, opposite the entry.
func (t *Trade) CloseDirection() int { return -t.Dir }

// SetUserTrade marks the trade as user-managed: the strategy trader must
// not auto-adjust TP/SL on a trade with pending user operations.
func (t *Trade) SetUserTrade(v bool) { t.userTrade = v }

// IsUserTrade reports whether the user, not the strategy, owns TP/SL.
func (t *Trade) IsUserTrade() bool { return t.userTrade }

// IsActive reports whether the trade holds a live, not-fully-exited
// position: non-zero filled entry quantity with filled exit quantity
// strictly behind it, and the exit side not already fully filled.
//
// original_source's is_active fell through to an implicit None (falsy,
// but not a bool) whenever exit_state was FILLED was false and e<=0 or
// x>=e — every call site treated that as "not active" only by accident
// of Python truthiness. The Go port makes every path return an explicit
// bool (spec.md Open Question: is_active must not have an implicit-nil
// path).
func (t *Trade) IsActive() bool {
	if t.exitState == StateFilled {
		return false
	}
	return t.E > 0 && t.X < t.E
}

// IsOpened reports whether the entry order is live but unfilled.
func (t *Trade) IsOpened() bool { return t.entryState == StateOpened }

// IsOpening reports whether the entry order is in progress (opened or
// partially filled).
func (t *Trade) IsOpening() bool {
	return t.entryState == StateOpened || t.entryState == StatePartiallyFilled
}

// IsClosing reports whether an exit order is in progress. Variants with
// separate stop/limit child orders (IndMarginTrade) override this to
// also consider a pending child-order reference id.
func (t *Trade) IsClosing() bool {
	return t.exitState == StateOpened || t.exitState == StatePartiallyFilled
}

// IsClosed reports whether the trade fully exited (all entered quantity
// sold back).
func (t *Trade) IsClosed() bool {
	return t.exitState == StateFilled && t.X >= t.E
}

// IsCanceled reports whether the trade never acquired a position:
// entry rejected, or canceled with nothing filled, or the exit side
// canceled with nothing filled.
func (t *Trade) IsCanceled() bool {
	if t.entryState == StateRejected {
		return true
	}
	if t.entryState == StateCanceled && t.E <= 0 {
		return true
	}
	if t.exitState == StateCanceled && t.X <= 0 {
		return true
	}
	return false
}

// IsEntryTimeout reports whether the entry order has been open, unfilled,
// for at least timeout seconds.
func (t *Trade) IsEntryTimeout(timestamp, timeout int64) bool {
	return t.entryState == StateOpened && t.E == 0 && t.Eot > 0 && (timestamp-t.Eot) >= timeout
}

// IsValid reports whether the entry signal is still acceptable: the
// entry order is opened or partially filled, not yet fully filled, and
// within its validity window.
func (t *Trade) IsValid(timestamp, validity int64) bool {
	return (t.entryState == StateOpened || t.entryState == StatePartiallyFilled) &&
		t.E < t.Oq &&
		(timestamp-t.Eot) <= validity
}

// CanDelete reports whether a trade has settled enough to be pruned
// from the active trade list: both sides fully filled, or the entry
// filled at/over the ordered quantity with the exit caught up to it
// (brokers can over-fill by a sliver; comparing against E, not Oq,
// tolerates that), or a non-live entry with nothing to unwind.
func (t *Trade) CanDelete() bool {
	if t.entryState == StateFilled && t.exitState == StateFilled {
		return true
	}
	if t.E >= t.Oq && (t.X >= t.E || t.X >= t.Oq) {
		return true
	}
	if t.E > 0 && t.X < t.E {
		return false
	}
	if t.entryState == StateNew || t.entryState == StateOpened {
		return false
	}
	if t.E > 0 && (t.exitState == StateNew || t.exitState == StateOpened) {
		return false
	}
	return true
}

// DirectionToString renders the direction for display/persistence.
func (t *Trade) DirectionToString() string {
	switch {
	case t.Dir > 0:
		return "long"
	case t.Dir < 0:
		return "short"
	default:
		return ""
	}
}

// DirectionFromString parses a persisted direction string.
func (t *Trade) DirectionFromString(s string) {
	switch s {
	case "long":
		t.Dir = 1
	case "short":
		t.Dir = -1
	default:
		t.Dir = 0
	}
}

// TradeTypeToString renders the trade type for display/persistence,
// distinguishing margin from indivisible-margin (the redesign fix noted
// on the Type doc comment above).
func (t *Trade) TradeTypeToString() string {
	switch t.tradeType {
	case TypeAsset:
		return "asset"
	case TypeMargin:
		return "margin"
	case TypeIndMargin:
		return "ind-margin"
	default:
		return "undefined"
	}
}

// TradeTypeFromString parses a persisted trade-type string.
func TradeTypeFromString(s string) Type {
	switch s {
	case "asset":
		return TypeAsset
	case "margin":
		return TypeMargin
	case "ind-margin":
		return TypeIndMargin
	default:
		return TypeUndefined
	}
}

// StateToString renders a display-only composite status, prioritizing
// terminal/problem states over the raw entry/exit state pair.
func (t *Trade) StateToString() string {
	switch {
	case t.entryState == StateNew:
		return "new"
	case t.entryState == StateOpened:
		return "opened"
	case t.entryState == StateRejected:
		return "rejected"
	case t.exitState == StateRejected && t.E > t.X:
		return "problem"
	case t.E < t.Oq && (t.entryState == StatePartiallyFilled || t.entryState == StateOpened):
		return "filling"
	case t.E > 0 && t.X < t.E && (t.exitState == StatePartiallyFilled || t.exitState == StateOpened):
		return "closing"
	case (t.E > 0 && t.X >= t.E) || (t.entryState == StateFilled && t.exitState == StateFilled):
		return "closed"
	case t.E >= t.Oq:
		return "filled"
	case t.entryState == StateCanceled && t.E <= 0:
		return "canceled"
	default:
		return "waiting"
	}
}

// UpdateStats refreshes the best/worst excursion stats while the trade
// is active.
func (t *Trade) UpdateStats(lastPrice float64, timestamp int64) {
	if !t.IsActive() {
		return
	}
	switch {
	case t.Dir > 0:
		if lastPrice > t.Stats.BestPrice {
			t.Stats.BestPrice, t.Stats.BestTimestamp = lastPrice, timestamp
		}
		if lastPrice < t.Stats.WorstPrice || t.Stats.WorstPrice == 0 {
			t.Stats.WorstPrice, t.Stats.WorstTimestamp = lastPrice, timestamp
		}
	case t.Dir < 0:
		if lastPrice < t.Stats.BestPrice || t.Stats.BestPrice == 0 {
			t.Stats.BestPrice, t.Stats.BestTimestamp = lastPrice, timestamp
		}
		if lastPrice > t.Stats.WorstPrice {
			t.Stats.WorstPrice, t.Stats.WorstTimestamp = lastPrice, timestamp
		}
	}
}

// AddCondition records a named entry/exit condition snapshot, used for
// post-hoc analysis of why a signal fired.
func (t *Trade) AddCondition(name string, data interface{}) {
	if t.Stats.Conditions == nil {
		t.Stats.Conditions = make(map[string]interface{})
	}
	t.Stats.Conditions[name] = data
}

// AddOperation appends a semi-automated operation, assigning it the next
// sequential id.
func (t *Trade) AddOperation(kind string, data interface{}) int64 {
	id := t.nextOpID
	t.nextOpID++
	t.operations = append(t.operations, Operation{ID: id, Kind: kind, Data: data})
	return id
}

// RemoveOperation deletes the operation with the given id, reporting
// whether it was found.
func (t *Trade) RemoveOperation(id int64) bool {
	for i, op := range t.operations {
		if op.ID == id {
			t.operations = append(t.operations[:i], t.operations[i+1:]...)
			return true
		}
	}
	return false
}

// CleanupOperations drops operations that have finished.
func (t *Trade) CleanupOperations() {
	kept := t.operations[:0]
	for _, op := range t.operations {
		if !op.CanDelete() {
			kept = append(kept, op)
		}
	}
	t.operations = kept
}

// HasOperations reports whether any operation is still pending.
func (t *Trade) HasOperations() bool { return len(t.operations) > 0 }

// Operations returns the pending operation list.
func (t *Trade) Operations() []Operation { return t.operations }

// dumpsCommon serializes the fields every variant shares; variants embed
// this into their own Dumps().
func (t *Trade) dumpsCommon() map[string]interface{} {
	return map[string]interface{}{
		"id":               t.ID,
		"type":             t.TradeTypeToString(),
		"entry-state":      int(t.entryState),
		"exit-state":       int(t.exitState),
		"timeframe":        int64(t.TF),
		"user-trade":       t.userTrade,
		"avg-entry-price":  t.Aep,
		"avg-exit-price":   t.Axp,
		"take-profit-price": t.Tp,
		"stop-loss-price":  t.Sl,
		"direction":        t.Dir,
		"entry-open-time":  t.Eot,
		"exit-open-time":   t.Xot,
		"order-price":      t.Op,
		"order-qty":        t.Oq,
		"filled-entry-qty": t.E,
		"filled-exit-qty":  t.X,
		"profit-loss-rate": t.Pl,
		"partial-tp":       t.Ptp,
	}
}

func int64Field(data map[string]interface{}, key string) int64 {
	switch v := data[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func float64Field(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func boolField(data map[string]interface{}, key string) bool {
	v, _ := data[key].(bool)
	return v
}

func stringField(data map[string]interface{}, key string) string {
	v, _ := data[key].(string)
	return v
}

// loadsCommon restores the fields dumpsCommon wrote.
func (t *Trade) loadsCommon(data map[string]interface{}) {
	t.ID = int64Field(data, "id")
	t.tradeType = TradeTypeFromString(stringField(data, "type"))
	t.entryState = State(int64Field(data, "entry-state"))
	t.exitState = State(int64Field(data, "exit-state"))
	t.TF = timeframe.Timeframe(int64Field(data, "timeframe"))
	t.userTrade = boolField(data, "user-trade")
	t.Aep = float64Field(data, "avg-entry-price")
	t.Axp = float64Field(data, "avg-exit-price")
	t.Tp = float64Field(data, "take-profit-price")
	t.Sl = float64Field(data, "stop-loss-price")
	t.Dir = int(int64Field(data, "direction"))
	t.Eot = int64Field(data, "entry-open-time")
	t.Xot = int64Field(data, "exit-open-time")
	t.Op = float64Field(data, "order-price")
	t.Oq = float64Field(data, "order-qty")
	t.E = float64Field(data, "filled-entry-qty")
	t.X = float64Field(data, "filled-exit-qty")
	t.Pl = float64Field(data, "profit-loss-rate")
	if ptp, ok := data["partial-tp"]; ok {
		t.Ptp = float64Field(map[string]interface{}{"v": ptp}, "v")
	} else {
		t.Ptp = 1.0
	}
	t.operations = nil
	t.nextOpID = 1
	if t.Stats.Conditions == nil {
		t.Stats.Conditions = make(map[string]interface{})
	}
}

// Variant is the broker-facing operation set every trade model
// implements: open/cancel/modify/close, signal correlation, and
// persistence. strategytrader drives trades exclusively through this
// interface so it never needs to type-switch on the concrete variant.
type Variant interface {
	Base() *Trade

	Open(br Broker, marketID string, direction int, orderType OrderType, orderPrice, quantity, takeProfit, stopLoss, leverage float64) bool
	Remove(br Broker)
	CancelOpen(br Broker) bool
	CancelClose(br Broker) bool
	ModifyTakeProfit(br Broker, marketID string, price float64) bool
	ModifyStopLoss(br Broker, marketID string, price float64) bool
	Close(br Broker, marketID string) bool

	OrderSignal(ev Event)
	PositionSignal(ev Event)

	IsTargetOrder(orderID, refOrderID string) bool
	IsTargetPosition(positionID, refOrderID string) bool

	Dumps() map[string]interface{}
	Loads(data map[string]interface{}) error
}

// Broker and OrderType/Event are the subset of internal/core/broker this
// package depends on, aliased here so variant files don't need to name
// the broker package in every signature. See broker.go for the alias
// wiring to the real types.
