package signal

import (
	"github.com/alexherrero/tradecore/internal/core/indicator"
	"github.com/alexherrero/tradecore/internal/core/timeframe"
)

// SubA is the Mode A sub-strategy: an EMA/SMA crossover, the same
// bullish/bearish crossover rule as the teacher's
// strategies/ma_crossover.go, reading the pre-computed EMA/SMA pair off
// the timeframe's indicator snapshot instead of recomputing a window
// over raw OHLCV on every call.
type SubA struct {
	prevEMA, prevSMA float64
	haveRef          bool
}

func NewSubA() *SubA { return &SubA{} }

func (s *SubA) Mode() Mode { return ModeA }

func (s *SubA) Compute(tf timeframe.Timeframe, timestamp int64, snap *indicator.Snapshot) (entry, exit *Signal) {
	if snap == nil || !snap.EMA.Ready() || !snap.SMA.Ready() {
		return nil, nil
	}
	ema, sma := snap.EMA.Last(), snap.SMA.Last()
	defer func() { s.prevEMA, s.prevSMA, s.haveRef = ema, sma, true }()

	if !s.haveRef {
		return nil, nil
	}

	price := snap.Price.Last
	switch {
	case s.prevEMA <= s.prevSMA && ema > sma:
		return &Signal{Kind: KindEntry, Timeframe: tf, Direction: 1, Price: price, Timestamp: timestamp,
			Conditions: map[string]interface{}{"ema": ema, "sma": sma}}, nil
	case s.prevEMA >= s.prevSMA && ema < sma:
		return nil, &Signal{Kind: KindExit, Timeframe: tf, Direction: -1, Price: price, Timestamp: timestamp,
			Conditions: map[string]interface{}{"ema": ema, "sma": sma}}
	default:
		return nil, nil
	}
}

// SubB is the Mode B sub-strategy: RSI mean-reversion, grounded on the
// teacher's strategies/rsi_strategy.go (buy when oversold, sell when
// overbought).
type SubB struct {
	Oversold   float64
	Overbought float64
}

func NewSubB() *SubB { return &SubB{Oversold: 30, Overbought: 70} }

func (s *SubB) Mode() Mode { return ModeB }

func (s *SubB) Compute(tf timeframe.Timeframe, timestamp int64, snap *indicator.Snapshot) (entry, exit *Signal) {
	if snap == nil || !snap.RSI.Ready() {
		return nil, nil
	}
	rsi := snap.RSI.Last()
	price := snap.Price.Last

	switch {
	case rsi <= s.Oversold:
		return &Signal{Kind: KindEntry, Timeframe: tf, Direction: 1, Price: price, Timestamp: timestamp,
			Conditions: map[string]interface{}{"rsi": rsi}}, nil
	case rsi >= s.Overbought:
		return nil, &Signal{Kind: KindExit, Timeframe: tf, Direction: -1, Price: price, Timestamp: timestamp,
			Conditions: map[string]interface{}{"rsi": rsi}}
	default:
		return nil, nil
	}
}

// SubC is the Mode C sub-strategy: Bollinger Band mean-reversion,
// grounded on the teacher's strategies/bb_strategy.go (buy at the lower
// band, sell at the upper band).
type SubC struct{}

func NewSubC() *SubC { return &SubC{} }

func (s *SubC) Mode() Mode { return ModeC }

func (s *SubC) Compute(tf timeframe.Timeframe, timestamp int64, snap *indicator.Snapshot) (entry, exit *Signal) {
	if snap == nil || !snap.BB.Ready() {
		return nil, nil
	}
	price := snap.Price.Last

	switch {
	case price <= snap.BB.Lower():
		return &Signal{Kind: KindEntry, Timeframe: tf, Direction: 1, Price: price, Timestamp: timestamp,
			Conditions: map[string]interface{}{"bb-lower": snap.BB.Lower()}}, nil
	case price >= snap.BB.Upper():
		return nil, &Signal{Kind: KindExit, Timeframe: tf, Direction: -1, Price: price, Timestamp: timestamp,
			Conditions: map[string]interface{}{"bb-upper": snap.BB.Upper()}}
	default:
		return nil, nil
	}
}

// NewSubStrategy builds the SubStrategy for a configured mode.
func NewSubStrategy(m Mode) SubStrategy {
	switch m {
	case ModeA:
		return NewSubA()
	case ModeB:
		return NewSubB()
	case ModeC:
		return NewSubC()
	default:
		return NewSubA()
	}
}
