package driver

import (
	"github.com/conflux-quant/decision-engine/internal/position"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// CandleLogEntry is one per-bar record in a BacktestReport's candle_log,
// per §4.5's "Per-bar log" requirement.
type CandleLogEntry struct {
	Index       int
	Timestamp   int64
	Close       float64
	Action      signal.Action
	Confidence  float64
	Score       float64
	Reasons     []string
	Tags        []string
	Regime      string
	BuyCount    int
	SellCount   int
	SignalCount int

	// LegacyAction/EngineAction are populated only when the session runs
	// in shadow mode (SUPPLEMENTED FEATURES: shadow-mode validation).
	LegacyAction signal.Action
	EngineAction signal.Action
	ShadowAgree  bool

	// Trade fields are populated only on the bar a position opened or
	// closed.
	TradeAction string
	EntryPrice  float64
	ExitPrice   float64
	ExitReason  position.ExitReason
	PnL         float64
	PnLPct      float64
}

// BacktestReport is the sole output of a BacktestDriver run, per §3.
type BacktestReport struct {
	StartingCapital float64
	FinalCapital    float64
	ROI             float64
	TradeCount      int
	WinningTrades   int
	LosingTrades    int
	WinRate         float64
	AverageWin      float64
	AverageLoss     float64
	ProfitFactor    float64
	MaxDrawdown     float64

	CandleLog []CandleLogEntry
	Trades    []position.Trade

	DrawdownGuardTripped bool

	// EffectiveConfig echoes the configuration this report was produced
	// under, for audit/reproducibility.
	EffectiveConfig Config
}

// buildReport computes the summary statistics from a completed trade
// ledger, matching the teacher's BacktestEngine.calculateMetrics shape
// generalized from a long-only ledger to LONG/SHORT trades.
func buildReport(cfg Config, finalCapital float64, trades []position.Trade, candleLog []CandleLogEntry, guardTripped bool) BacktestReport {
	report := BacktestReport{
		StartingCapital:      cfg.Capital.InitialCapital,
		FinalCapital:         finalCapital,
		TradeCount:           len(trades),
		CandleLog:            candleLog,
		Trades:               trades,
		DrawdownGuardTripped: guardTripped,
		EffectiveConfig:      cfg,
	}

	var totalProfit, totalLoss float64
	peak := cfg.Capital.InitialCapital
	maxDrawdown := 0.0
	runningCapital := cfg.Capital.InitialCapital

	for _, t := range trades {
		if t.PnL > 0 {
			report.WinningTrades++
			totalProfit += t.PnL
		} else {
			report.LosingTrades++
			totalLoss += -t.PnL
		}
		runningCapital = t.CapitalAfter
		if runningCapital > peak {
			peak = runningCapital
		}
		if peak > 0 {
			dd := (peak - runningCapital) / peak
			if dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}

	if report.TradeCount > 0 {
		report.WinRate = float64(report.WinningTrades) / float64(report.TradeCount)
	}
	if report.WinningTrades > 0 {
		report.AverageWin = totalProfit / float64(report.WinningTrades)
	}
	if report.LosingTrades > 0 {
		report.AverageLoss = totalLoss / float64(report.LosingTrades)
	}
	if totalLoss > 0 {
		report.ProfitFactor = totalProfit / totalLoss
	}
	if cfg.Capital.InitialCapital > 0 {
		report.ROI = (report.FinalCapital - cfg.Capital.InitialCapital) / cfg.Capital.InitialCapital
	}
	report.MaxDrawdown = maxDrawdown

	return report
}
