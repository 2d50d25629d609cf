package driver

import (
	"github.com/conflux-quant/decision-engine/internal/confluence"
	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/position"
	"github.com/conflux-quant/decision-engine/internal/signal"
	"github.com/conflux-quant/decision-engine/internal/volumefilter"
)

// atrWarmup is the bar count below which BacktestDriver falls back to the
// single-bar high-low range estimate per §4.5.B.
const atrWarmup = 14

// warmupBars is the first bar index the backtest loop evaluates from.
const warmupBars = 50

// Config configures a BacktestDriver run.
type Config struct {
	Symbol         string
	Timeframe      string
	Capital        position.Config
	ShadowMode     bool
	LegacyVoteMode confluence.VoteMode
}

// BacktestDriver replays a finite bar sequence against an Engine and a
// VolumeFilter, producing a BacktestReport. Grounded on the teacher's
// internal/backtest.BacktestEngine.RunBacktest, generalized from a
// long-only fixed-stop strategy to the single-position LONG/SHORT model
// with ATR-derived stop/target from §4.5.
type BacktestDriver struct {
	engine *confluence.Engine
	filter *volumefilter.Filter
	cfg    Config
}

// NewBacktestDriver builds a BacktestDriver.
func NewBacktestDriver(engine *confluence.Engine, filter *volumefilter.Filter, cfg Config) *BacktestDriver {
	return &BacktestDriver{engine: engine, filter: filter, cfg: cfg}
}

// Run executes the bar-indexed loop of §4.5 against bars, starting at
// warmupBars and iterating to the last bar.
func (d *BacktestDriver) Run(bars []market.Bar) BacktestReport {
	book := position.NewBook(d.cfg.Capital)
	var (
		open       *position.Position
		openSignal signal.Signal
		trades     []position.Trade
		candleLog  []CandleLogEntry
		ctx        = detector.Context{Symbol: d.cfg.Symbol, Timeframe: d.cfg.Timeframe}
	)

	if len(bars) <= warmupBars {
		return buildReport(d.cfg, book.Capital, trades, candleLog, book.GuardTripped)
	}

	for i := warmupBars; i < len(bars); i++ {
		bar := bars[i]
		window := market.Slice(bars[:i+1], 0)
		w := market.NewWindow(len(window))
		for _, b := range window {
			w.Append(b)
		}

		s := d.engine.Evaluate(w, ctx)
		if d.filter != nil {
			z := d.filter.ZScore(window)
			s = d.filter.Apply(s, z)
		}

		var legacy signal.Signal
		if d.cfg.ShadowMode {
			legacy = d.engine.EvaluateVoteData(w, ctx, d.cfg.LegacyVoteMode)
		}

		atr := atrEstimate(bars, i)

		entry := CandleLogEntry{
			Index:       i,
			Timestamp:   bar.Timestamp,
			Close:       bar.Close,
			Action:      s.Action,
			Confidence:  s.Confidence,
			Reasons:     s.Reasons,
			Tags:        s.Tags,
			BuyCount:    metaInt(s, "buy_count"),
			SellCount:   metaInt(s, "sell_count"),
			SignalCount: metaInt(s, "signal_count"),
			Score:       metaFloat(s, "score"),
			Regime:      string(ctx.Regime),
		}
		if d.cfg.ShadowMode {
			entry.LegacyAction = legacy.Action
			entry.EngineAction = s.Action
			entry.ShadowAgree = legacy.Action == s.Action
		}

		if open == nil {
			if book.CanOpen(bar.Timestamp) {
				open = d.tryOpen(s.Action, bar, i, atr, book, &entry)
				if open != nil {
					openSignal = s
				}
			}
		} else {
			open, trades = d.tryClose(open, openSignal, bar, i, s.Action, book, trades, &entry)
		}

		candleLog = append(candleLog, entry)
	}

	if open != nil {
		last := bars[len(bars)-1]
		pnl, _ := open.PnL(last.Close)
		capitalAfter := book.Settle(pnl)
		trade := open.Close(len(bars)-1, last.Close, position.EndOfTest, capitalAfter, openSignal)
		trades = append(trades, trade)

		// Overlay the force-close onto the last bar's own log entry rather
		// than appending a duplicate, per §4.5's one-entry-per-bar log.
		lastEntry := &candleLog[len(candleLog)-1]
		lastEntry.TradeAction = "CLOSE"
		lastEntry.ExitPrice = last.Close
		lastEntry.ExitReason = position.EndOfTest
		lastEntry.PnL = trade.PnL
		lastEntry.PnLPct = trade.PnLPct
	}

	return buildReport(d.cfg, book.Capital, trades, candleLog, book.GuardTripped)
}

func (d *BacktestDriver) tryOpen(action signal.Action, bar market.Bar, index int, atr float64, book *position.Book, entry *CandleLogEntry) *position.Position {
	notional := book.Notional()
	switch action {
	case signal.Buy:
		p := position.OpenLong(bar.Close, index, d.cfg.Capital.StopMult, d.cfg.Capital.TPMult, atr, notional)
		book.RecordOpen(bar.Timestamp)
		entry.TradeAction = "OPEN_LONG"
		entry.EntryPrice = p.EntryPrice
		return &p
	case signal.Sell:
		p := position.OpenShort(bar.Close, index, d.cfg.Capital.StopMult, d.cfg.Capital.TPMult, atr, notional)
		book.RecordOpen(bar.Timestamp)
		entry.TradeAction = "OPEN_SHORT"
		entry.EntryPrice = p.EntryPrice
		return &p
	default:
		return nil
	}
}

func (d *BacktestDriver) tryClose(open *position.Position, openSignal signal.Signal, bar market.Bar, index int, action signal.Action, book *position.Book, trades []position.Trade, entry *CandleLogEntry) (*position.Position, []position.Trade) {
	exitPrice, reason, ok := open.CheckExit(bar.High, bar.Low, bar.Close, action)
	if !ok {
		return open, trades
	}
	pnl, _ := open.PnL(exitPrice)
	capitalAfter := book.Settle(pnl)
	trade := open.Close(index, exitPrice, reason, capitalAfter, openSignal)
	trades = append(trades, trade)

	entry.TradeAction = "CLOSE"
	entry.ExitPrice = exitPrice
	entry.ExitReason = reason
	entry.PnL = trade.PnL
	entry.PnLPct = trade.PnLPct

	return nil, trades
}

// atrEstimate implements §4.5.B's backtest ATR shortcut.
func atrEstimate(bars []market.Bar, i int) float64 {
	upTo := bars[:i+1]
	return indicator.SimpleRangeATR(market.Highs(upTo), market.Lows(upTo), atrWarmup)
}

func metaFloat(s signal.Signal, key string) float64 {
	if v, ok := s.Meta[key].(float64); ok {
		return v
	}
	return 0
}

func metaInt(s signal.Signal, key string) int {
	if v, ok := s.Meta[key].(int); ok {
		return v
	}
	return 0
}
