package trade

import "sync"

// Correlator maps asynchronous broker order/position events back to the
// Variant that issued them. The Trade State Machine needs this because
// a single market can have several live trades at once, each with its
// own create/stop/limit reference ids (spec.md §6 "Design Notes" on
// correlation via client reference ids).
type Correlator struct {
	mu sync.RWMutex
	active []Variant
}

// NewCorrelator builds an empty Correlator.
func NewCorrelator() *Correlator { return &Correlator{} }

// Add registers a trade so future events can be routed to it.
func (c *Correlator) Add(v Variant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = append(c.active, v)
}

// Remove unregisters a trade, e.g. once CanDelete() is true.
func (c *Correlator) Remove(v Variant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, a := range c.active {
		if a == v {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}

// All returns a snapshot of the currently registered trades.
func (c *Correlator) All() []Variant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Variant, len(c.active))
	copy(out, c.active)
	return out
}

// FindByOrder returns the trade whose create/stop/limit order or
// reference id matches orderID/refOrderID, or nil if none matches.
func (c *Correlator) FindByOrder(orderID, refOrderID string) Variant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.active {
		if a.IsTargetOrder(orderID, refOrderID) {
			return a
		}
	}
	return nil
}

// FindByPosition returns the trade whose position or entry reference id
// matches positionID/refOrderID, or nil if none matches.
func (c *Correlator) FindByPosition(positionID, refOrderID string) Variant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.active {
		if a.IsTargetPosition(positionID, refOrderID) {
			return a
		}
	}
	return nil
}

// Dispatch routes an order or position event to its owning trade and
// applies it. Replaying the same EventOrderTraded event twice is safe:
// OrderSignal only ever derives the incremental fill from
// CumulativeFilled (when present) minus the trade's current E/X, so a
// duplicate delivery with the same cumulative figure contributes zero
// additional fill (spec.md invariant: idempotent replay of
// SIGNAL_ORDER_TRADED).
func (c *Correlator) Dispatch(ev Event) bool {
	if ev.Type == EventPositionDeleted {
		if v := c.FindByPosition(ev.PositionID, ev.RefOrderID); v != nil {
			v.PositionSignal(ev)
			return true
		}
		return false
	}
	if v := c.FindByOrder(ev.OrderID, ev.RefOrderID); v != nil {
		v.OrderSignal(ev)
		return true
	}
	return false
}
