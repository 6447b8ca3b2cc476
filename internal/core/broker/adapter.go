package broker

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alexherrero/tradecore/data/providers"
	"github.com/alexherrero/tradecore/execution"
	"github.com/alexherrero/tradecore/internal/core/instrument"
	"github.com/alexherrero/tradecore/models"
)

// Adapter implements Broker over the teacher's existing execution.Broker
// (order placement/cancellation/balance) and a providers.BinanceProvider
// (market metadata). This is the bridge SPEC_FULL.md's broker section
// calls for: the Strategy Execution Core never talks to execution.Broker
// or go-binance/v2 directly, only through this package's interface.
type Adapter struct {
	exec    execution.Broker
	markets *providers.BinanceProvider
	quote   string // balance asset HasAsset/HasQuantity/AssetFree check, e.g. "USDT"
	region  string // geo-restricted venue tag stamped onto every fetched Instrument

	cacheMu sync.Mutex
	cache   map[string]*instrument.Instrument
}

// NewAdapter builds an Adapter. quote is the account asset balance checks
// are made against (the margin/quote currency of the instruments traded).
// region tags every Instrument this adapter returns (e.g. "US" when wired
// against BinanceUSProvider, "GLOBAL" otherwise per config.UseBinanceUS),
// so a Strategy Trader's region-allow filter has something to check.
func NewAdapter(exec execution.Broker, markets *providers.BinanceProvider, quote, region string) *Adapter {
	return &Adapter{
		exec:    exec,
		markets: markets,
		quote:   quote,
		region:  region,
		cache:   make(map[string]*instrument.Instrument),
	}
}

// SetRefOrderID issues a fresh client reference id, the same way
// notifications.Manager mints notification ids.
func (a *Adapter) SetRefOrderID(order *Order) {
	order.RefOrderID = uuid.New().String()
}

// CreateOrder submits order via the wrapped execution.Broker, translating
// the core's Order into models.Order and back.
func (a *Adapter) CreateOrder(order *Order) bool {
	side := models.OrderSideBuy
	if order.Direction < 0 {
		side = models.OrderSideSell
	}

	otype := models.OrderTypeMarket
	switch order.Type {
	case OrderTypeLimit, OrderTypeTakeProfitLimit:
		otype = models.OrderTypeLimit
	case OrderTypeStop:
		otype = models.OrderTypeStop
	}

	placed, err := a.exec.PlaceOrder(models.Order{
		Symbol:   order.MarketID,
		Side:     side,
		Type:     otype,
		Quantity: order.Quantity,
		Price:    order.Price,
	})
	if err != nil || placed == nil {
		return false
	}

	order.OrderID = placed.ID
	order.PositionID = placed.ID // paper/REST brokers have no separate position id; OrderID stands in
	order.CreatedTime = placed.CreatedAt.UnixMilli()
	return true
}

// CancelOrder cancels orderID via the wrapped execution.Broker.
func (a *Adapter) CancelOrder(orderID string) bool {
	return a.exec.CancelOrder(orderID) == nil
}

// Market returns cached instrument metadata for marketID, fetching and
// caching it on first use.
func (a *Adapter) Market(marketID string) *instrument.Instrument {
	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()

	if inst, ok := a.cache[marketID]; ok {
		return inst
	}

	inst := a.fetchMarket(marketID)
	if inst != nil {
		a.cache[marketID] = inst
	}
	return inst
}

func (a *Adapter) fetchMarket(marketID string) *instrument.Instrument {
	if a.markets == nil {
		return nil
	}
	ticker, err := a.markets.GetTicker(marketID)
	if err != nil || ticker == nil {
		return nil
	}
	price, err := a.markets.GetLatestPrice(marketID)
	if err != nil {
		return nil
	}

	// BinanceProvider's Ticker type doesn't surface the exchange-info lot
	// size/tick size/min-notional filters; the provider's exchange-info
	// round trip is enough to confirm the symbol exists and to price it.
	// Granularity defaults to Binance's common spot-market step sizes.
	return &instrument.Instrument{
		MarketID:    marketID,
		Symbol:      ticker.Symbol,
		Quote:       a.quote,
		Base:        baseAssetOf(ticker.Name),
		Kind:        instrument.KindSpot,
		TickSize:    decimal.NewFromFloat(0.01),
		LotSize:     decimal.NewFromFloat(0.00001),
		PriceStep:   decimal.NewFromFloat(0.01),
		MinNotional: decimal.NewFromFloat(10),
		LastPrice:   decimal.NewFromFloat(price),
		Region:      a.region,
	}
}

func baseAssetOf(pairName string) string {
	for i, r := range pairName {
		if r == '/' {
			return pairName[:i]
		}
	}
	return pairName
}

// HasAsset reports whether the balance carries any amount of quote.
func (a *Adapter) HasAsset(quote string) bool {
	return a.AssetFree(quote) > 0
}

// HasQuantity reports whether the free balance of quote covers qty.
func (a *Adapter) HasQuantity(quote string, qty float64) bool {
	return a.AssetFree(quote) >= qty
}

// AssetFree returns the free balance for quote. The wrapped
// execution.Broker only exposes a single-asset Balance (its Cash field),
// so non-configured quote assets report zero.
func (a *Adapter) AssetFree(quote string) float64 {
	if quote != a.quote {
		return 0
	}
	bal, err := a.exec.GetBalance()
	if err != nil || bal == nil {
		return 0
	}
	return bal.Cash
}

var _ Broker = (*Adapter)(nil)
