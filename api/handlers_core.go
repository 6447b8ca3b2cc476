package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alexherrero/tradecore/internal/core/strategytrader"
	"github.com/alexherrero/tradecore/internal/core/worker"
)

// CoreHandler exposes the Strategy Execution Core's runtime state:
// per-symbol traders and their Worker Runtime liveness. It is
// intentionally separate from Handler (the legacy single-signal engine's
// handlers) since the two engines run as distinct processes sharing only
// the config/data/notifications stack.
type CoreHandler struct {
	traders map[string]*strategytrader.Trader
	workers map[string]*worker.Worker
}

// NewCoreHandler builds a CoreHandler. workers is keyed by the same
// symbol as traders so /core/workers/{symbol}/ping can find the right
// Worker Runtime.
func NewCoreHandler(traders map[string]*strategytrader.Trader, workers map[string]*worker.Worker) *CoreHandler {
	return &CoreHandler{traders: traders, workers: workers}
}

// Mount registers the core routes under r at /core.
func (h *CoreHandler) Mount(r chi.Router) {
	r.Route("/core", func(r chi.Router) {
		r.Get("/traders", h.ListTradersHandler)
		r.Get("/traders/{symbol}/trades", h.ListTradesHandler)
		r.Get("/workers/{symbol}/ping", h.PingWorkerHandler)
	})
}

// ListTradersHandler returns the configured symbols, each with the number
// of trades its trader currently holds.
func (h *CoreHandler) ListTradersHandler(w http.ResponseWriter, r *http.Request) {
	out := make([]map[string]interface{}, 0, len(h.traders))
	for symbol, t := range h.traders {
		out = append(out, map[string]interface{}{
			"symbol":       symbol,
			"active_trades": len(t.Trades()),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListTradesHandler returns the active trades for one symbol's trader.
func (h *CoreHandler) ListTradesHandler(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	t, ok := h.traders[symbol]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol: "+symbol)
		return
	}

	trades := t.Trades()
	out := make([]map[string]interface{}, 0, len(trades))
	for _, v := range trades {
		tr := v.Base()
		out = append(out, map[string]interface{}{
			"id":         tr.ID,
			"type":       tr.TradeTypeToString(),
			"state":      tr.StateToString(),
			"direction":  tr.DirectionToString(),
			"entry_qty":  tr.E,
			"exit_qty":   tr.X,
			"avg_entry":  tr.Aep,
			"avg_exit":   tr.Axp,
			"pl_rate":    tr.Pl,
			"is_active":  tr.IsActive(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// PingWorkerHandler requests a liveness pong from one symbol's Worker
// Runtime and waits briefly for the response.
func (h *CoreHandler) PingWorkerHandler(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	wk, ok := h.workers[symbol]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol: "+symbol)
		return
	}

	select {
	case msg := <-wk.Ping():
		writeJSON(w, http.StatusOK, map[string]string{"symbol": symbol, "pong": msg})
	case <-time.After(2 * time.Second):
		writeError(w, http.StatusGatewayTimeout, "worker did not respond to ping")
	}
}
