// Package providers contains data provider implementations.
package providers

import (
	"fmt"
	"time"

	"github.com/alexherrero/tradecore/models"
)

// CCXTProvider fetches cryptocurrency data via CCXT-compatible APIs.
// This is a stub implementation - actual API integration to be added.
type CCXTProvider struct {
	// exchange is the exchange identifier (e.g., "binance", "coinbase")
	exchange string
	// apiKey for exchange authentication
	apiKey string
	// apiSecret for exchange authentication
	apiSecret string
}

// NewCCXTProvider creates a new CCXTProvider instance.
//
// Args:
//   - exchange: Exchange identifier
//   - apiKey: API key for the exchange
//   - apiSecret: API secret for the exchange
//
// Returns:
//   - *CCXTProvider: The provider instance
func NewCCXTProvider(exchange, apiKey, apiSecret string) *CCXTProvider {
	return &CCXTProvider{
		exchange:  exchange,
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// Name returns the provider name.
func (p *CCXTProvider) Name() string {
	return fmt.Sprintf("ccxt-%s", p.exchange)
}

// GetHistoricalData fetches OHLCV data from the cryptocurrency exchange.
// TODO: Implement actual CCXT/exchange API integration.
//
// Args:
//   - symbol: Trading pair (e.g., "BTC/USD", "ETH/USDT")
//   - start: Start date
//   - end: End date
//   - interval: Time interval (e.g., "1h", "4h", "1d")
//
// Returns:
//   - []models.OHLCV: Historical data
//   - error: Any error encountered
func (p *CCXTProvider) GetHistoricalData(symbol string, start, end time.Time, interval string) ([]models.OHLCV, error) {
	// Stub implementation
	// TODO: Implement actual exchange API call
	return []models.OHLCV{}, fmt.Errorf("ccxt provider for %s not yet implemented", p.exchange)
}

// GetLatestPrice fetches the current price from the exchange.
// TODO: Implement actual CCXT/exchange API integration.
//
// Args:
//   - symbol: Trading pair
//
// Returns:
//   - float64: Current price
//   - error: Any error encountered
func (p *CCXTProvider) GetLatestPrice(symbol string) (float64, error) {
	// Stub implementation
	// TODO: Implement actual exchange API call
	return 0.0, fmt.Errorf("ccxt provider for %s not yet implemented", p.exchange)
}

// GetTicker fetches ticker information from the exchange.
// TODO: Implement actual CCXT/exchange API integration.
//
// Args:
//   - symbol: Trading pair
//
// Returns:
//   - *models.Ticker: Ticker information
//   - error: Any error encountered
func (p *CCXTProvider) GetTicker(symbol string) (*models.Ticker, error) {
	// Stub implementation
	// TODO: Implement actual exchange API call
	return nil, fmt.Errorf("ccxt provider for %s not yet implemented", p.exchange)
}
