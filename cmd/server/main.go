// Package main is the entry point for the Strategy Execution Core: the
// multi-timeframe automated trader, run as its own process alongside the
// single-signal engine the root main.go serves. It reuses the same
// config/data/execution/notifications stack, wired into one
// strategytrader.Trader per configured symbol instead of the simple
// TradingEngine.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alexherrero/tradecore/api"
	"github.com/alexherrero/tradecore/config"
	"github.com/alexherrero/tradecore/data"
	"github.com/alexherrero/tradecore/data/providers"
	"github.com/alexherrero/tradecore/execution"
	"github.com/alexherrero/tradecore/internal/core/broker"
	"github.com/alexherrero/tradecore/internal/core/strategytrader"
	"github.com/alexherrero/tradecore/internal/core/worker"
	"github.com/alexherrero/tradecore/notifications"
	"github.com/alexherrero/tradecore/realtime"
)

// coreSymbols are the markets the Strategy Execution Core trades; a
// future iteration could source this from CORE_SYMBOLS the way
// config.Config parses ENABLED_STRATEGIES, but one explicit list keeps
// the Worker Runtime wiring below easy to follow.
var coreSymbols = []string{"BTCUSDT", "ETHUSDT"}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("Starting Strategy Execution Core...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	strategyCfg, err := config.LoadStrategyConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load strategy trader configuration")
	}

	db, err := data.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	tradeStore := data.NewTradeStore(db)
	notificationStore := data.NewNotificationStore(db)

	wsManager := realtime.NewWebSocketManager()
	go wsManager.Run()

	notifier := notifications.NewManager(notificationStore, wsManager)

	execBroker := execution.NewPaperBroker(100000.0)
	if err := execBroker.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect paper broker")
	}

	var marketProvider *providers.BinanceProvider
	region := "GLOBAL"
	if cfg.UseBinanceUS {
		marketProvider = providers.NewBinanceUSProvider(cfg.BinanceAPIKey, cfg.BinanceAPISecret)
		region = "US"
	} else {
		marketProvider = providers.NewBinanceProvider(cfg.BinanceAPIKey, cfg.BinanceAPISecret)
	}

	adapter := broker.NewAdapter(execBroker, marketProvider, strategyCfg.QuoteAsset, region)

	traders := make(map[string]*strategytrader.Trader, len(coreSymbols))
	for _, symbol := range coreSymbols {
		trader, err := strategytrader.New(symbol, strategyCfg.ToTraderConfig(), adapter)
		if err != nil {
			log.Fatal().Err(err).Str("symbol", symbol).Msg("Failed to build strategy trader")
		}
		trader.SetNotifier(notifier)

		for _, persisted := range loadTrades(tradeStore, symbol) {
			if err := trader.Restore(persisted.TradeType, persisted.Payload); err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Int64("trade_id", persisted.ID).Msg("failed to restore persisted trade")
				continue
			}
			log.Info().Str("symbol", symbol).Int64("trade_id", persisted.ID).Msg("restored trade from persistence")
		}

		traders[symbol] = trader
	}

	workers := make(map[string]*worker.Worker, len(traders))
	for symbol, trader := range traders {
		hooks := &tickerHooks{symbol: symbol, trader: trader, provider: marketProvider}
		w := worker.New("core-"+symbol, hooks, false)
		w.Start()
		workers[symbol] = w
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	api.NewCoreHandler(traders, workers).Mount(r)

	port := fmt.Sprintf(":%d", cfg.ServerPort+1) // the legacy engine owns cfg.ServerPort
	server := &http.Server{
		Addr:         port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", port).Msg("Strategy Execution Core API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("core API server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down Strategy Execution Core...")
	for _, w := range workers {
		w.Stop()
	}
	_ = server.Close()
}

func loadTrades(store data.TradeStore, symbol string) []data.PersistedTrade {
	persisted, err := store.LoadTrades(symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("failed to load persisted trades")
		return nil
	}
	return persisted
}

// tickerHooks drives one Trader's OnTick once per loop iteration from the
// market data provider's latest price, the Worker Runtime's Hooks
// implementation for the Strategy Execution Core.
type tickerHooks struct {
	symbol   string
	trader   *strategytrader.Trader
	provider *providers.BinanceProvider
}

func (h *tickerHooks) PreRun() error  { return nil }
func (h *tickerHooks) PostRun() error { return nil }
func (h *tickerHooks) PreUpdate()     {}
func (h *tickerHooks) PostUpdate()    {}

func (h *tickerHooks) Update() error {
	price, err := h.provider.GetLatestPrice(h.symbol)
	if err != nil {
		return err
	}
	h.trader.OnTick(price, 0, time.Now().Unix())
	time.Sleep(time.Second)
	return nil
}
