package broker

import (
	"fmt"
	"sync"

	"github.com/alexherrero/tradecore/internal/core/instrument"
)

// Fake is a deterministic, in-memory Broker for tests: every CreateOrder
// succeeds synchronously and assigns sequential ids, mirroring how
// execution.PaperBroker fills immediately without a live exchange.
type Fake struct {
	mu      sync.Mutex
	seq     int
	markets map[string]*instrument.Instrument
	free    map[string]float64
	Orders  []Order
}

// NewFake builds an empty Fake broker.
func NewFake() *Fake {
	return &Fake{
		markets: make(map[string]*instrument.Instrument),
		free:    make(map[string]float64),
	}
}

// SetMarket registers instrument metadata Market(marketID) will return.
func (f *Fake) SetMarket(marketID string, inst *instrument.Instrument) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markets[marketID] = inst
}

// SetFree sets the free balance AssetFree(quote) will report.
func (f *Fake) SetFree(quote string, amount float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.free[quote] = amount
}

func (f *Fake) SetRefOrderID(order *Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	order.RefOrderID = fmt.Sprintf("fake-ref-%d", f.seq)
}

func (f *Fake) CreateOrder(order *Order) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	order.OrderID = fmt.Sprintf("fake-order-%d", f.seq)
	order.PositionID = fmt.Sprintf("fake-pos-%d", f.seq)
	f.Orders = append(f.Orders, *order)
	return true
}

func (f *Fake) CancelOrder(orderID string) bool { return true }

func (f *Fake) Market(marketID string) *instrument.Instrument {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markets[marketID]
}

func (f *Fake) HasAsset(quote string) bool { return f.AssetFree(quote) > 0 }

func (f *Fake) HasQuantity(quote string, qty float64) bool { return f.AssetFree(quote) >= qty }

func (f *Fake) AssetFree(quote string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.free[quote]
}

var _ Broker = (*Fake)(nil)
