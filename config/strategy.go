package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alexherrero/tradecore/internal/core/signal"
	"github.com/alexherrero/tradecore/internal/core/strategytrader"
	"github.com/alexherrero/tradecore/internal/core/timeframe"
	"github.com/alexherrero/tradecore/internal/core/trade"
)

// StrategyConfig holds the per-instrument Strategy Trader parameters,
// loaded from environment variables the same way the rest of Config is:
// CORE_* vars with sane defaults, validated once at startup.
type StrategyConfig struct {
	Timeframes    []timeframe.Timeframe
	Modes         []signal.Mode // parallel to Timeframes
	BaseTimeframe timeframe.Timeframe

	MaxTrades  int
	TradeDelay int64

	MinPrice  float64
	MinVol24h float64

	MinTradedTimeframe timeframe.Timeframe
	MaxTradedTimeframe timeframe.Timeframe

	// RegionAllow lists the venue regions (Instrument.Region, e.g. "US",
	// "GLOBAL") an entry is accepted from; empty means no restriction.
	RegionAllow []string

	RefTimeframe timeframe.Timeframe
	TPTimeframe  timeframe.Timeframe

	TradeType trade.Type
	Leverage  float64

	QuoteAsset     string
	TraderQuantity float64
}

// defaultCoreTimeframes mirrors a typical multi-timeframe chain: 1m, 5m,
// 15m, 1h, 4h.
var defaultCoreTimeframes = []int64{60, 300, 900, 3600, 14400}

// defaultCoreModes pairs one sub-strategy mode per default timeframe:
// fast timeframes mean-revert (RSI/Bollinger), the two slowest confirm trend
// (EMA/SMA crossover).
var defaultCoreModes = []string{"B", "C", "B", "A", "A"}

// LoadStrategyConfig reads CORE_* environment variables into a
// StrategyConfig, falling back to defaults tuned for a BTC/USDT-style
// spot instrument when unset.
func LoadStrategyConfig() (*StrategyConfig, error) {
	tfSecs := parseIntList(getEnv("CORE_TIMEFRAMES", joinInts(defaultCoreTimeframes)))
	modeNames := parseStrategies(getEnv("CORE_MODES", strings.Join(defaultCoreModes, ",")))

	if len(tfSecs) != len(modeNames) {
		return nil, fmt.Errorf("CORE_TIMEFRAMES has %d entries but CORE_MODES has %d: they must pair up one mode per timeframe", len(tfSecs), len(modeNames))
	}

	timeframes := make([]timeframe.Timeframe, len(tfSecs))
	modes := make([]signal.Mode, len(tfSecs))
	for i, secs := range tfSecs {
		timeframes[i] = timeframe.Timeframe(secs)
		mode, err := parseMode(modeNames[i])
		if err != nil {
			return nil, err
		}
		modes[i] = mode
	}

	tradeType, err := parseTradeType(getEnv("CORE_TRADE_TYPE", "asset"))
	if err != nil {
		return nil, err
	}

	sc := &StrategyConfig{
		Timeframes:    timeframes,
		Modes:         modes,
		BaseTimeframe: timeframe.Timeframe(getEnvInt64("CORE_BASE_TIMEFRAME", tfSecs[0])),

		MaxTrades:  getEnvInt("CORE_MAX_TRADES", 1),
		TradeDelay: getEnvInt64("CORE_TRADE_DELAY", tfSecs[0]),

		MinPrice:  getEnvFloat("CORE_MIN_PRICE", 0),
		MinVol24h: getEnvFloat("CORE_MIN_VOL24H", 0),

		MinTradedTimeframe: timeframe.Timeframe(getEnvInt64("CORE_MIN_TRADED_TIMEFRAME", tfSecs[0])),
		MaxTradedTimeframe: timeframe.Timeframe(getEnvInt64("CORE_MAX_TRADED_TIMEFRAME", tfSecs[len(tfSecs)-1])),

		RegionAllow: parseStrategies(getEnv("CORE_REGION_ALLOW", "")),

		RefTimeframe: timeframe.Timeframe(getEnvInt64("CORE_REF_TIMEFRAME", tfSecs[len(tfSecs)-1])),
		TPTimeframe:  timeframe.Timeframe(getEnvInt64("CORE_TP_TIMEFRAME", tfSecs[len(tfSecs)-2])),

		TradeType: tradeType,
		Leverage:  getEnvFloat("CORE_LEVERAGE", 1),

		QuoteAsset:     getEnv("CORE_QUOTE_ASSET", "USDT"),
		TraderQuantity: getEnvFloat("CORE_TRADER_QUANTITY", 100),
	}

	if err := sc.validate(); err != nil {
		return nil, err
	}

	return sc, nil
}

func (sc *StrategyConfig) validate() error {
	var errs []string

	if len(sc.Timeframes) == 0 {
		errs = append(errs, "CORE_TIMEFRAMES must list at least one timeframe")
	}
	if sc.MaxTrades < 1 {
		errs = append(errs, "CORE_MAX_TRADES must be at least 1")
	}
	if sc.TraderQuantity <= 0 {
		errs = append(errs, "CORE_TRADER_QUANTITY must be positive")
	}
	if sc.Leverage <= 0 {
		errs = append(errs, "CORE_LEVERAGE must be positive")
	}
	if sc.QuoteAsset == "" {
		errs = append(errs, "CORE_QUOTE_ASSET must not be empty")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ToTraderConfig converts the loaded settings into the strategytrader.Config
// a Trader is constructed with, pairing each configured timeframe with its
// sub-strategy mode.
func (sc *StrategyConfig) ToTraderConfig() strategytrader.Config {
	modes := make(map[timeframe.Timeframe]signal.Mode, len(sc.Timeframes))
	for i, tf := range sc.Timeframes {
		modes[tf] = sc.Modes[i]
	}

	return strategytrader.Config{
		Timeframes:         sc.Timeframes,
		Modes:              modes,
		BaseTimeframe:      sc.BaseTimeframe,
		NeedUpdate:         true,
		MaxTrades:          sc.MaxTrades,
		TradeDelay:         sc.TradeDelay,
		MinPrice:           sc.MinPrice,
		MinVol24h:          sc.MinVol24h,
		MinTradedTimeframe: sc.MinTradedTimeframe,
		MaxTradedTimeframe: sc.MaxTradedTimeframe,
		RegionAllow:        sc.RegionAllow,
		RefTimeframe:       sc.RefTimeframe,
		TPTimeframe:        sc.TPTimeframe,
		TradeType:          sc.TradeType,
		Leverage:           sc.Leverage,
		QuoteAsset:         sc.QuoteAsset,
		TraderQuantity:     sc.TraderQuantity,
	}
}

func parseMode(name string) (signal.Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "A":
		return signal.ModeA, nil
	case "B":
		return signal.ModeB, nil
	case "C":
		return signal.ModeC, nil
	default:
		return 0, fmt.Errorf("invalid sub-strategy mode %q: must be A, B or C", name)
	}
}

func parseTradeType(name string) (trade.Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "asset":
		return trade.TypeAsset, nil
	case "margin":
		return trade.TypeMargin, nil
	case "ind-margin", "ind_margin", "indmargin":
		return trade.TypeIndMargin, nil
	default:
		return trade.TypeUndefined, fmt.Errorf("invalid CORE_TRADE_TYPE %q: must be asset, margin or ind-margin", name)
	}
}

func parseIntList(s string) []int64 {
	parts := parseStrategies(s)
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func joinInts(vals []int64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
