// Command engine runs the confluence decision engine, either as a
// one-shot backtest over historical klines or as a long-running
// real-time driver against Binance's live kline stream. Grounded on the
// teacher repo's main.go: config load, structured-logger init, component
// wiring, then either a bounded run or a signal-driven graceful shutdown.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	osSignal "os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/conflux-quant/decision-engine/internal/advisor"
	"github.com/conflux-quant/decision-engine/internal/config"
	"github.com/conflux-quant/decision-engine/internal/confluence"
	"github.com/conflux-quant/decision-engine/internal/dataprovider/binance"
	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/detector/classical"
	"github.com/conflux-quant/decision-engine/internal/detector/smc"
	"github.com/conflux-quant/decision-engine/internal/driver"
	"github.com/conflux-quant/decision-engine/internal/logging"
	"github.com/conflux-quant/decision-engine/internal/secrets"
	"github.com/conflux-quant/decision-engine/internal/signal"
	"github.com/conflux-quant/decision-engine/internal/store"
	"github.com/conflux-quant/decision-engine/internal/store/postgres"
	storeredis "github.com/conflux-quant/decision-engine/internal/store/redis"
	"github.com/conflux-quant/decision-engine/internal/volumefilter"
)

func main() {
	mode := flag.String("mode", "backtest", "backtest or realtime")
	configPath := flag.String("config", "", "path to a JSON config file (optional, overlays the built-in defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.New(&logging.Config{
		Level:       cfg.Logging.Level,
		Output:      cfg.Logging.Output,
		JSONFormat:  cfg.Logging.JSONFormat,
		IncludeFile: cfg.Logging.IncludeFile,
		Component:   "engine",
	})
	logging.SetDefault(logger)

	zlevel, err := zerolog.ParseLevel(cfg.Logging.ZerologLevel)
	if err != nil {
		zlevel = zerolog.InfoLevel
	}
	zlog := zerolog.New(os.Stdout).Level(zlevel).With().Timestamp().Logger()

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("failed to build detector registry")
		os.Exit(1)
	}
	engine := confluence.New(registry, cfg.ToEngineConfig())
	filter := cfg.ToVolumeFilter()

	switch *mode {
	case "backtest":
		runBacktest(cfg, engine, filter, logger)
	case "realtime":
		runRealtime(cfg, engine, filter, logger, zlog)
	default:
		logger.Error("unknown mode, expected backtest or realtime", "mode", *mode)
		os.Exit(1)
	}
}

// buildRegistry registers the default detector set (10 of the catalogue's
// 19 detectors) at weight 1.0,
// applying any per-detector overrides from cfg.Engine.DetectorWeights.
func buildRegistry(cfg *config.Config, logger *logging.Logger) (*detector.Registry, error) {
	reg := detector.NewRegistry()
	catalogue := []detector.Detector{
		classical.NewEMACrossover(12, 26),
		classical.NewMACDCrossover(12, 26, 9),
		classical.NewADXTrend(14, 25),
		classical.NewRSIMeanReversion(14, 30, 70),
		classical.NewBollingerBreakout(20, 2.0),
		classical.NewStochasticOscillator(14, 3, 20, 80),
		smc.NewBOS(0.005, 1.5),
		smc.NewCHoCH(0.005),
		smc.NewOrderBlocks(0.01),
		smc.NewFVG(0.003),
	}
	for _, d := range catalogue {
		weight := 1.0
		if w, ok := cfg.Engine.DetectorWeights[d.Name()]; ok {
			weight = w
		}
		if err := reg.Register(d.Name(), d, weight); err != nil {
			return nil, fmt.Errorf("register detector %s: %w", d.Name(), err)
		}
		logging.DetectorContext(logger, d.Name(), weight).Debug("detector registered")
	}
	return reg, nil
}

// runBacktest fetches historical klines through the Binance REST adapter,
// replays them through a BacktestDriver, persists the report to Postgres
// when configured, and prints a JSON summary plus an optional LLM
// commentary to stdout.
func runBacktest(cfg *config.Config, engine *confluence.Engine, filter *volumefilter.Filter, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx, runLogger := logging.WithRunContext(ctx, logger)
	logger = logging.BacktestContext(runLogger, cfg.Backtest.Symbol, cfg.Backtest.Timeframe)

	rest := binance.NewRESTClient(cfg.DataProvider.RESTBaseURL)
	endMs := time.Now().UnixMilli()
	startMs := endMs - 90*24*int64(time.Hour/time.Millisecond)

	bars, err := rest.FetchKlines(ctx, cfg.Backtest.Symbol, cfg.Backtest.Timeframe, startMs, endMs, 1000)
	if err != nil {
		logger.WithError(err).Error("failed to fetch historical klines")
		os.Exit(1)
	}
	logger.Info("fetched historical bars", "count", len(bars))

	driverCfg := driver.Config{
		Symbol:     cfg.Backtest.Symbol,
		Timeframe:  cfg.Backtest.Timeframe,
		Capital:    cfg.ToPositionConfig(),
		ShadowMode: cfg.Backtest.ShadowMode,
	}
	bd := driver.NewBacktestDriver(engine, filter, driverCfg)
	report := bd.Run(bars)

	logger.Info("backtest complete",
		"trades", report.TradeCount,
		"win_rate", report.WinRate,
		"roi", report.ROI,
		"drawdown_guard_tripped", report.DrawdownGuardTripped,
	)

	if cfg.Postgres.Enabled {
		persistReport(ctx, cfg, report)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.WithError(err).Error("failed to marshal backtest report")
	} else {
		fmt.Println(string(out))
	}

	if cfg.Advisor.Enabled {
		printAdvisorSummary(cfg, report, logger)
	}
}

func persistReport(ctx context.Context, cfg *config.Config, report driver.BacktestReport) {
	logger := logging.FromContext(ctx)
	db, err := postgres.Open(ctx, postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		logger.WithError(err).Warn("failed to connect to postgres, skipping persistence")
		return
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.WithError(err).Warn("failed to run postgres migrations, skipping persistence")
		return
	}

	repo := postgres.NewRepository(db)
	id, err := repo.SaveBacktestReport(ctx, cfg.Backtest.Symbol, cfg.Backtest.Timeframe, report)
	if err != nil {
		logger.WithError(err).Warn("failed to save backtest report")
		return
	}
	logger.Info("backtest report saved", "id", id)
}

func printAdvisorSummary(cfg *config.Config, report driver.BacktestReport, logger *logging.Logger) {
	client := advisor.NewClient(advisor.ClientConfig{
		Provider:    advisor.Provider(cfg.Advisor.Provider),
		APIKey:      cfg.Advisor.APIKey,
		Model:       cfg.Advisor.Model,
		MaxTokens:   cfg.Advisor.MaxTokens,
		Temperature: cfg.Advisor.Temperature,
		Timeout:     cfg.Advisor.Timeout,
	})
	a := advisor.New(client)
	summary, err := a.Summarize(cfg.Backtest.Symbol, cfg.Backtest.Timeframe, report)
	if err != nil {
		logger.WithError(err).Warn("advisor summary failed")
		return
	}
	fmt.Println("\n--- Advisor summary ---")
	fmt.Println(summary)
}

// runRealtime streams live klines through the Binance WebSocket adapter
// into a RealTimeDriver until SIGINT/SIGTERM, caching capital/position
// state in Redis when configured so state survives a restart.
func runRealtime(cfg *config.Config, engine *confluence.Engine, filter *volumefilter.Filter, logger *logging.Logger, zlog zerolog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx, logger = logging.WithRunContext(ctx, logger)

	var capitalStore *storeredis.CapitalStore
	if cfg.Redis.Enabled {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		capitalStore = storeredis.NewCapitalStore(rdb)
		logger.Info("capital state cache enabled", "address", cfg.Redis.Address)
	}

	if cfg.Vault.Enabled {
		vc, err := secrets.NewVaultClient(secrets.VaultConfig{
			Enabled:    cfg.Vault.Enabled,
			Address:    cfg.Vault.Address,
			Token:      cfg.Vault.Token,
			MountPath:  cfg.Vault.MountPath,
			SecretPath: cfg.Vault.SecretPath,
		})
		if err != nil {
			logger.WithError(err).Warn("failed to initialize vault client, continuing without exchange credentials")
		} else if err := vc.Health(ctx); err != nil {
			logger.WithError(err).Warn("vault health check failed")
		}
	}

	provider := binance.NewProvider(cfg.DataProvider.RESTBaseURL, cfg.DataProvider.StreamBaseURL, zlog)
	if !provider.TestConnection(ctx) {
		logger.Warn("initial connectivity check to binance failed, continuing anyway")
	}

	events, err := provider.StreamKlines(ctx, cfg.RealTime.Symbol, cfg.RealTime.Timeframe)
	if err != nil {
		logger.WithError(err).Error("failed to start kline stream")
		os.Exit(1)
	}

	metrics := driver.NewMetrics(nil)
	onDecision := func(s signal.Signal) {
		logging.SignalContext(logger, s).Info("signal emitted")
		if capitalStore != nil {
			snapshot := store.CapitalState{Symbol: cfg.RealTime.Symbol, LastAction: string(s.Action)}
			_ = capitalStore.SaveCapitalState(ctx, snapshot)
		}
	}

	rtCfg := driver.RealTimeConfig{
		Symbol:     cfg.RealTime.Symbol,
		Timeframe:  cfg.RealTime.Timeframe,
		WindowSize: cfg.RealTime.WindowSize,
		ShadowMode: cfg.RealTime.ShadowMode,
	}
	rtd := driver.NewRealTimeDriver(engine, filter, rtCfg, onDecision, zlog, metrics)

	sigCh := make(chan os.Signal, 1)
	osSignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- rtd.Run(ctx, events) }()

	select {
	case <-sigCh:
		logger.Info("shutdown signal received")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			logger.WithError(err).Error("realtime driver exited with error")
		}
	}

	counters, last := rtd.Snapshot()
	logger.Info("realtime driver stopped",
		"buys", counters.BuySignals, "sells", counters.SellSignals, "holds", counters.HoldSignals)
	if last != nil {
		logger.Info("last emitted signal", "action", last.Action, "confidence", last.Confidence)
	}
}
