// Package strategytrader implements the Strategy Trader (spec.md §7):
// the per-instrument orchestrator that drives the Timeframe Bar Engine,
// Signal Engine and Trade State Machine together. Grounded on
// original_source/strategy/cryptoalpha/castrategytrader.py's
// filter_market/process/process_entry/process_exit routine.
package strategytrader

import (
	"github.com/alexherrero/tradecore/internal/core/bar"
	"github.com/alexherrero/tradecore/internal/core/broker"
	"github.com/alexherrero/tradecore/internal/core/signal"
	"github.com/alexherrero/tradecore/internal/core/timeframe"
	"github.com/alexherrero/tradecore/internal/core/trade"
	"github.com/alexherrero/tradecore/notifications"
)

// Config holds the per-instrument strategy parameters
// original_source's constructor reads out of params[...].
type Config struct {
	Timeframes []timeframe.Timeframe
	Modes      map[timeframe.Timeframe]signal.Mode

	BaseTimeframe timeframe.Timeframe
	NeedUpdate    bool

	MaxTrades  int
	TradeDelay int64 // seconds; carried from configuration but not read by the Trader, whose same-direction re-entry suppression uses the entry's timeframe

	MinPrice  float64
	MinVol24h float64

	MinTradedTimeframe timeframe.Timeframe
	MaxTradedTimeframe timeframe.Timeframe

	// RegionAllow lists the venue regions (Instrument.Region) an entry is
	// accepted from; empty means no restriction.
	RegionAllow []string

	// RefTimeframe and TPTimeframe select which timeframe's global
	// indicators feed major-trend detection and take-profit targeting.
	// original_source hardcoded these as Instrument.TF_4H/TF_1H with a
	// "@todo need conf" comment; the port makes them configuration
	// fields (spec.md Open Question).
	RefTimeframe timeframe.Timeframe
	TPTimeframe  timeframe.Timeframe

	// TradeType selects which Variant Process opens for a retained entry.
	TradeType trade.Type
	Leverage  float64

	// QuoteAsset is the balance asset checked before sizing an entry
	// (market.quote in original_source).
	QuoteAsset string
	// TraderQuantity is the target notional (in quote asset) sized into
	// each entry, matching self.instrument.trader_quantity.
	TraderQuantity float64
}

// Trader is the per-instrument Strategy Trader: one bar engine, one
// signal engine and the list of currently active trades for a single
// market.
type Trader struct {
	cfg      Config
	marketID string

	broker broker.Broker
	bars   *bar.Engine
	sig    *signal.Engine
	chain  *timeframe.Chain
	notify *notifications.Manager // may be nil; Process skips notifications when unset

	trades     []trade.Variant
	correlator *trade.Correlator

	filterCacheTS      int64
	filterCacheAccept  bool
	filterCacheCompute bool

	lastEntryDir       int
	lastEntryOpenTime  int64

	activity bool // master on/off switch; false suppresses new entries and signal-driven closes, while entry cancellation and stop trailing continue
}

// New builds a Trader for one instrument.
func New(marketID string, cfg Config, br broker.Broker) (*Trader, error) {
	chain, err := timeframe.NewChain(cfg.Timeframes)
	if err != nil {
		return nil, err
	}

	sig := signal.NewEngine()
	for _, tf := range cfg.Timeframes {
		mode := cfg.Modes[tf]
		sig.Configure(tf, mode)
	}

	// 200 matches the longest indicator lookback (SMA200) so every
	// configured timeframe's ring can fully warm up its slowest indicator.
	const ringCapacity = 200

	return &Trader{
		cfg:        cfg,
		marketID:   marketID,
		broker:     br,
		bars:       bar.NewEngine(chain, ringCapacity),
		sig:        sig,
		chain:      chain,
		correlator: trade.NewCorrelator(),
		activity:   true,
	}, nil
}

// SetActivity toggles whether the trader places orders: while off, no entry
// is opened and exit signals place no close order; entry cancellation and
// stop trailing on existing trades still run.
func (t *Trader) SetActivity(on bool) { t.activity = on }

// SetNotifier wires a notification manager; entry/exit events are
// reported through it once set. Passing nil disables notifications.
func (t *Trader) SetNotifier(n *notifications.Manager) { t.notify = n }

// Trades returns the currently tracked trades for this instrument.
func (t *Trader) Trades() []trade.Variant { return t.trades }

// Restore reconstructs a Variant of tradeType from a persisted Dumps()
// payload and re-admits it into the active trade list and correlator, so
// a process restart picks up exactly where the prior run left off.
func (t *Trader) Restore(tradeType trade.Type, payload map[string]interface{}) error {
	var v trade.Variant
	switch tradeType {
	case trade.TypeMargin:
		v = trade.NewMarginTrade(0)
	case trade.TypeIndMargin:
		v = trade.NewIndMarginTrade(0)
	default:
		v = trade.NewAssetTrade(0)
	}

	if err := v.Loads(payload); err != nil {
		return err
	}

	t.trades = append(t.trades, v)
	t.correlator.Add(v)
	return nil
}

// DispatchEvent routes a broker order/position event to its owning
// trade via the correlator.
func (t *Trader) DispatchEvent(ev trade.Event) bool { return t.correlator.Dispatch(ev) }

// FilterMarket reports whether the market should be processed, and
// whether it should be computed (as opposed to accepted-but-skipped to
// save CPU on an uninteresting, inactive market). The result is cached
// for an hour, matching original_source's filter_market 60*60 cache
// window.
func (t *Trader) FilterMarket(timestamp int64) (accept, compute bool) {
	if t.filterCacheTS > 0 && timestamp-t.filterCacheTS < 3600 {
		return t.filterCacheAccept, t.filterCacheCompute
	}

	mk := t.broker.Market(t.marketID)
	if mk == nil {
		t.cacheFilter(timestamp, false, false)
		return false, false
	}

	if len(t.trades) == 0 {
		if mk.LastPrice.InexactFloat64() > 0 && mk.LastPrice.InexactFloat64() < t.cfg.MinPrice {
			t.cacheFilter(timestamp, true, false)
			return true, false
		}
		if mk.Vol24hQuote.InexactFloat64() > 0 && mk.Vol24hQuote.InexactFloat64() < t.cfg.MinVol24h {
			t.cacheFilter(timestamp, true, false)
			return true, false
		}
	}

	t.cacheFilter(timestamp, true, true)
	return true, true
}

func (t *Trader) cacheFilter(timestamp int64, accept, compute bool) {
	t.filterCacheTS, t.filterCacheAccept, t.filterCacheCompute = timestamp, accept, compute
}
