package strategytrader

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alexherrero/tradecore/internal/core/signal"
	"github.com/alexherrero/tradecore/internal/core/timeframe"
	"github.com/alexherrero/tradecore/internal/core/trade"
	"github.com/alexherrero/tradecore/models"
)

// OnTick feeds one tick through the bar engine and signal engine, and
// runs Process for the base timeframe whenever it closes a bar —
// original_source's gen_candles_from_ticks followed by process() being
// called once per base-timeframe bar close.
func (t *Trader) OnTick(price, volume float64, timestamp int64) {
	closedTFs := t.bars.OnTick(price, volume, timestamp)
	t.sig.OnTick(price)

	entries := make([]*signal.Signal, 0, 1)
	exits := make([]*signal.Signal, 0, 1)

	for _, tf := range closedTFs {
		ring := t.bars.Ring(tf)
		if ring == nil {
			continue
		}
		current, _ := ring.Current()
		entry, exit := t.sig.OnBarClose(tf, timestamp, ring.Closed(), current)
		if entry != nil {
			entries = append(entries, entry)
		}
		if exit != nil {
			exits = append(exits, exit)
		}
	}

	baseClosed := false
	for _, tf := range closedTFs {
		if tf == t.cfg.BaseTimeframe {
			baseClosed = true
			break
		}
	}
	if baseClosed {
		t.Process(timestamp, entries, exits)
	}
}

// Process runs the full per-bar routine: market filtering, global
// indicator read-out, major-trend detection, entry filtering, exit
// processing against active trades, and finally placing the retained
// entries. Grounded on
// original_source/castrategytrader.py's process().
func (t *Trader) Process(timestamp int64, entries, exits []*signal.Signal) {
	accept, compute := t.FilterMarket(timestamp)
	if !accept {
		return
	}
	if !compute {
		entries, exits = nil, nil
	}

	refSnap := t.sig.Snapshot(t.cfg.RefTimeframe)
	majorTrend := signal.MajorTrend(refSnap)

	var lastPrice float64
	if refSnap != nil {
		lastPrice = refSnap.Price.Last
	}

	retainedEntries := t.filterEntries(entries, lastPrice)

	_ = majorTrend // reserved for a major-trend entry filter; none of the configured sub-strategies currently gate on it

	if len(t.trades) > 0 {
		t.processExits(timestamp, exits, lastPrice)
	}

	t.pruneSettled()

	for _, e := range retainedEntries {
		signalPrice := e.Price
		t.processEntry(timestamp, signalPrice, e.TakeProfit, e.StopLoss, e.Timeframe)
	}
}

// filterEntries applies the per-entry acceptance rules: timeframe range,
// region checks against the market's listed venue, and — when a candidate
// doesn't already carry a stop-loss/take-profit — an ATR-derived stop and
// pivot-resistance target.
func (t *Trader) filterEntries(entries []*signal.Signal, lastPrice float64) []*signal.Signal {
	retained := make([]*signal.Signal, 0, len(entries))

	var region string
	if len(t.cfg.RegionAllow) > 0 {
		if mk := t.broker.Market(t.marketID); mk != nil {
			region = mk.Region
		}
	}

	for _, e := range entries {
		if e.Timeframe < t.cfg.MinTradedTimeframe || e.Timeframe > t.cfg.MaxTradedTimeframe {
			continue
		}

		if len(t.cfg.RegionAllow) > 0 && !regionAllowed(region, t.cfg.RegionAllow) {
			continue
		}

		parentTF := t.chain.Parent(e.Timeframe)

		if e.StopLoss == 0 {
			if parentSnap := t.sig.Snapshot(parentTF); parentSnap != nil && parentSnap.ATR.Ready() {
				sl := parentSnap.ATR.StopLoss(e.Direction)
				if sl < lastPrice {
					e.StopLoss = sl
				}
			}
		}

		if e.TakeProfit == 0 {
			if snap := t.sig.Snapshot(t.cfg.TPTimeframe); snap != nil && snap.Pivot.Ready() {
				resistances := snap.Pivot.LastResistances()
				if len(resistances) > 0 {
					// original_source computed `tp` from
					// pivotpoint.last_resistances[2] but never assigned it
					// back onto `entry.tp` before appending to
					// retained_entries — the target was silently dropped.
					// The port assigns it (spec.md Open Question: the
					// pivot-resistance take-profit must reach the
					// candidate it was computed for).
					e.TakeProfit = resistances[len(resistances)-1]
				}
			}
		}

		retained = append(retained, e)
	}

	return retained
}

// regionAllowed reports whether region appears in allow. Grounded on
// castrategytrader.py's `if not self.check_regions(entry, self.region_allow):
// continue` — check_regions' own body wasn't in the retrieved source, so
// the port implements the straightforward reading: the traded market's
// region must appear in the configured allow-list.
func regionAllowed(region string, allow []string) bool {
	for _, r := range allow {
		if r == region {
			return true
		}
	}
	return false
}

// processExits walks the active trade list once per bar: canceling
// timed-out or invalidated entries, trailing the ATR stop, and closing
// any trade whose timeframe matches a retained exit signal.
func (t *Trader) processExits(timestamp int64, exits []*signal.Signal, lastPrice float64) {
	for _, v := range t.trades {
		tr := v.Base()

		tr.Lock()
		skip := tr.IsUserTrade() && tr.HasOperations()
		tr.Unlock()
		if skip {
			continue
		}

		var retainedExit *signal.Signal
		for _, s := range exits {
			if s.Timeframe == tr.TF {
				retainedExit = s
				break
			}
		}

		if tr.IsEntryTimeout(timestamp, int64(tr.TF)) {
			v.CancelOpen(t.broker)
			continue
		}

		if tr.IsOpening() && !tr.IsValid(timestamp, int64(tr.TF)) {
			v.CancelOpen(t.broker)
			continue
		}

		if !tr.IsActive() || tr.IsClosing() || tr.IsClosed() {
			continue
		}

		parentTF := t.chain.Parent(tr.TF)
		if parentSnap := t.sig.Snapshot(parentTF); parentSnap != nil && parentSnap.ATR.Ready() {
			sl := parentSnap.ATR.StopLoss(tr.Dir)
			stopLoss := tr.Sl
			if (tr.Sl == 0 || lastPrice > tr.Aep) && sl > stopLoss {
				stopLoss = sl
			}
			if stopLoss > tr.Sl {
				tr.Sl = stopLoss
			}
		}

		if retainedExit != nil {
			t.processExit(timestamp, v, retainedExit.Price)
		}
	}
}

// pruneSettled removes trades CanDelete reports as done from the active
// list and the correlator.
func (t *Trader) pruneSettled() {
	kept := t.trades[:0]
	for _, v := range t.trades {
		if v.Base().CanDelete() {
			t.correlator.Remove(v)
			continue
		}
		kept = append(kept, v)
	}
	t.trades = kept
}

// processEntry sizes and submits a retained entry candidate: quantity is
// derived from the configured target notional, floored to the market's
// lot size, and rejected if it falls under min-notional, the
// max-simultaneous-trades cap, or the "just opened this timeframe" /
// "same-direction re-entry too soon" suppression rules. Grounded on
// original_source/castrategytrader.py's process_entry().
func (t *Trader) processEntry(timestamp int64, price, takeProfit, stopLoss float64, tf timeframe.Timeframe) {
	mk := t.broker.Market(t.marketID)
	if mk == nil {
		return
	}

	direction := 1 // entries are always long in this strategy family
	price = price + mk.Spread.InexactFloat64()

	doOrder := t.activity
	var quantity float64

	if t.broker.HasAsset(t.cfg.QuoteAsset) && t.broker.HasQuantity(t.cfg.QuoteAsset, t.cfg.TraderQuantity) {
		qty := mk.AdjustQuantity(decimalFromFloat(t.cfg.TraderQuantity / price))
		quantity = qty.InexactFloat64()
	} else {
		doOrder = false
	}

	if quantity <= 0 || quantity*price < mk.MinNotional.InexactFloat64() {
		doOrder = false
	}

	if len(t.trades) >= t.cfg.MaxTrades {
		doOrder = false
	}
	for _, v := range t.trades {
		if v.Base().TF == tf {
			doOrder = false
		}
	}
	if len(t.trades) > 0 {
		last := t.trades[len(t.trades)-1].Base()
		if last.Dir == direction && (timestamp-last.Eot) < int64(tf) {
			doOrder = false
		}
	}

	if !doOrder {
		if t.notify != nil {
			t.notify.Send(models.NotificationWarning, "Entry rejected",
				fmt.Sprintf("%s entry at %.8f qty %.8f rejected: min-notional, unfunded quote, or max-trades cap", t.marketID, price, quantity),
				map[string]interface{}{"trade_id": -1})
		}
		return
	}

	v := t.newVariant(tf)
	t.trades = append(t.trades, v)
	t.correlator.Add(v)

	if v.Open(t.broker, t.marketID, direction, trade.OrderTypeLimit, price, quantity, takeProfit, stopLoss, t.cfg.Leverage) {
		if t.notify != nil {
			t.notify.Info("Trade opened", fmt.Sprintf("%s entry at %.8f qty %.8f tp=%.8f sl=%.8f", t.marketID, price, quantity, takeProfit, stopLoss))
		}
		return
	}

	t.trades = t.trades[:len(t.trades)-1]
	t.correlator.Remove(v)
}

// processExit closes a trade at market in response to a retained exit
// signal. It first estimates the realized profit/loss rate at the
// signal's price net of maker/taker fees — the same estimate
// original_source's process_exit() reports via notify_order before the
// close order's own fill settles the authoritative rate — then submits
// the close.
func (t *Trader) processExit(timestamp int64, v trade.Variant, exitPrice float64) {
	if v == nil || !t.activity {
		return
	}
	tr := v.Base()

	var rate float64
	if tr.Aep > 0 {
		switch {
		case tr.Dir > 0:
			rate = (exitPrice - tr.Aep) / tr.Aep
		case tr.Dir < 0:
			rate = (tr.Aep - exitPrice) / tr.Aep
		}
		if mk := t.broker.Market(t.marketID); mk != nil {
			entryFee := mk.TakerFee.InexactFloat64()
			if tr.Stats.EntryMaker {
				entryFee = mk.MakerFee.InexactFloat64()
			}
			exitFee := mk.TakerFee.InexactFloat64() // the close order below is always a market order
			rate -= entryFee + exitFee
		}
	}

	closed := v.Close(t.broker, t.marketID)

	if t.notify != nil {
		status := "close requested"
		if closed {
			status = "closed"
		}
		t.notify.Info("Trade "+status, fmt.Sprintf("%s %s at %.8f, est. pl %.4f%%", t.marketID, status, exitPrice, rate*100))
	}
}

// decimalFromFloat converts a float64 quantity/price into a decimal.Decimal
// for AdjustQuantity/AdjustPrice, the same conversion
// original_source performs implicitly via Python's Decimal(str(f)).
func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// newVariant constructs the configured trade variant for a new entry.
func (t *Trader) newVariant(tf timeframe.Timeframe) trade.Variant {
	switch t.cfg.TradeType {
	case trade.TypeMargin:
		return trade.NewMarginTrade(tf)
	case trade.TypeIndMargin:
		return trade.NewIndMarginTrade(tf)
	default:
		return trade.NewAssetTrade(tf)
	}
}
