package data

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexherrero/tradecore/internal/core/trade"
)

// TradeStore persists Strategy Execution Core trades so a Strategy
// Trader's active trade list survives a restart, the same role
// OrderStore plays for the legacy single-signal engine's orders.
type TradeStore interface {
	// SaveTrade serializes v.Dumps() and upserts it under (marketID, id).
	SaveTrade(marketID string, v trade.Variant) error
	// LoadTrades returns every persisted trade for marketID, as its raw
	// Dumps() payload plus the trade type it was saved under; the caller
	// (which owns trade construction) rebuilds the concrete Variant and
	// calls Loads on it.
	LoadTrades(marketID string) ([]PersistedTrade, error)
	// DeleteTrade removes a persisted trade, once CanDelete reports it
	// settled.
	DeleteTrade(marketID string, id int64) error
}

// PersistedTrade is one row read back from TradeStore.LoadTrades.
type PersistedTrade struct {
	ID        int64
	TradeType trade.Type
	Payload   map[string]interface{}
}

// SQLTradeStore implements TradeStore using SQLite, alongside SQLOrderStore.
type SQLTradeStore struct {
	db *DB
}

// NewTradeStore creates a new SQL-based trade store.
func NewTradeStore(db *DB) *SQLTradeStore {
	return &SQLTradeStore{db: db}
}

type coreTradeRow struct {
	ID        int64     `db:"id"`
	MarketID  string    `db:"market_id"`
	TradeType string    `db:"trade_type"`
	Payload   string    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SaveTrade serializes v.Dumps() to JSON and upserts it.
func (s *SQLTradeStore) SaveTrade(marketID string, v trade.Variant) error {
	tr := v.Base()

	payload, err := json.Marshal(v.Dumps())
	if err != nil {
		return fmt.Errorf("failed to marshal trade payload: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO core_trades (id, market_id, trade_type, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query, tr.ID, marketID, tr.TradeTypeToString(), string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}
	return nil
}

// LoadTrades returns every persisted trade for marketID.
func (s *SQLTradeStore) LoadTrades(marketID string) ([]PersistedTrade, error) {
	var rows []coreTradeRow
	query := `
		SELECT id, market_id, trade_type, payload, updated_at
		FROM core_trades
		WHERE market_id = ?
		ORDER BY id ASC
	`
	if err := s.db.Select(&rows, query, marketID); err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}

	out := make([]PersistedTrade, 0, len(rows))
	for _, row := range rows {
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trade %d payload: %w", row.ID, err)
		}
		tt := trade.TradeTypeFromString(row.TradeType)
		out = append(out, PersistedTrade{ID: row.ID, TradeType: tt, Payload: payload})
	}
	return out, nil
}

// DeleteTrade removes a persisted trade.
func (s *SQLTradeStore) DeleteTrade(marketID string, id int64) error {
	query := `DELETE FROM core_trades WHERE market_id = ? AND id = ?`
	_, err := s.db.Exec(query, marketID, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	return nil
}
