// Package driver implements the two session drivers from spec.md §4.4/§4.5:
// RealTimeDriver consumes a live bar stream and emits Signals on state
// change; BacktestDriver replays a finite bar sequence and produces a
// BacktestReport. Grounded on the teacher repo's
// internal/continuous.BigCandleDetector (mutex-guarded handler list,
// dedup-by-last-event shape) for the live driver and
// internal/backtest.BacktestEngine (bar-indexed loop, position/ledger
// bookkeeping) for the backtest driver.
package driver

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/conflux-quant/decision-engine/internal/confluence"
	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
	"github.com/conflux-quant/decision-engine/internal/volumefilter"
)

// OnDecision is invoked only on a state change. It MUST be non-blocking;
// slow consumers must buffer on their own side.
type OnDecision func(signal.Signal)

// Counters are the aggregate tallies the RealTimeDriver maintains across a
// session, mutated only by the evaluation task per §5.
type Counters struct {
	BuySignals    int
	SellSignals   int
	HoldSignals   int
	StateChanges  int
	BarsProcessed int
	BarsDropped   int
}

// RealTimeConfig configures a RealTimeDriver.
type RealTimeConfig struct {
	Symbol         string
	Timeframe      string
	WindowSize     int
	ShadowMode     bool
	LegacyVoteMode confluence.VoteMode
}

// RealTimeDriver is the single logical task from §4.4: it reads bar events
// from a bounded queue (owned by the caller) and, on each one, gates,
// evaluates, tests for a state change, and emits.
type RealTimeDriver struct {
	mu sync.RWMutex

	cfg    RealTimeConfig
	window *market.Window
	engine *confluence.Engine
	filter *volumefilter.Filter

	lastProcessedTimestamp int64
	lastEmitted            *signal.Signal
	counters               Counters

	onDecision OnDecision
	logger     zerolog.Logger
	metrics    *Metrics
}

// NewRealTimeDriver builds a RealTimeDriver. A zero WindowSize falls back
// to market.DefaultWindowSize.
func NewRealTimeDriver(engine *confluence.Engine, filter *volumefilter.Filter, cfg RealTimeConfig, onDecision OnDecision, logger zerolog.Logger, metrics *Metrics) *RealTimeDriver {
	return &RealTimeDriver{
		cfg:        cfg,
		window:     market.NewWindow(cfg.WindowSize),
		engine:     engine,
		filter:     filter,
		onDecision: onDecision,
		logger:     logger.With().Str("component", "RealTimeDriver").Str("symbol", cfg.Symbol).Logger(),
		metrics:    metrics,
	}
}

// Run consumes events until ctx is cancelled or the channel closes,
// finishing the in-flight bar's evaluation before returning (cancellation
// is checked only between events, never mid-evaluation, since evaluation
// itself never suspends).
func (d *RealTimeDriver) Run(ctx context.Context, events <-chan market.BarEvent) error {
	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("real-time driver stopping: context cancelled")
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				d.logger.Info().Msg("real-time driver stopping: event stream closed")
				return nil
			}
			d.handleEvent(ev)
		}
	}
}

func (d *RealTimeDriver) handleEvent(ev market.BarEvent) {
	d.mu.Lock()
	if ev.Bar.Timestamp == d.lastProcessedTimestamp {
		d.counters.BarsDropped++
		d.mu.Unlock()
		return
	}
	d.lastProcessedTimestamp = ev.Bar.Timestamp
	d.window.Append(ev.Bar)
	ctx := detector.Context{Symbol: d.cfg.Symbol, Timeframe: d.cfg.Timeframe}

	s := d.engine.Evaluate(d.window, ctx)
	if d.filter != nil {
		z := d.filter.ZScore(d.window.Bars())
		s = d.filter.Apply(s, z)
	}

	if d.cfg.ShadowMode {
		legacy := d.engine.EvaluateVoteData(d.window, ctx, d.cfg.LegacyVoteMode)
		s = signal.MergeMeta(s, map[string]any{
			"legacy_action": legacy.Action,
			"engine_action": s.Action,
		})
	}

	changed := d.isStateChange(s)
	if changed {
		d.lastEmitted = &s
		d.counters.StateChanges++
	}
	d.updateCounters(s)
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.observeBar()
	}
	if changed {
		if d.metrics != nil {
			d.metrics.observeSignal(string(s.Action))
		}
		if d.onDecision != nil {
			d.onDecision(s)
		}
	}
}

// isStateChange implements §4.4 step 3. Caller holds d.mu.
func (d *RealTimeDriver) isStateChange(s signal.Signal) bool {
	if d.lastEmitted == nil {
		return s.Action != signal.Hold
	}
	return s.Action != d.lastEmitted.Action
}

func (d *RealTimeDriver) updateCounters(s signal.Signal) {
	d.counters.BarsProcessed++
	switch s.Action {
	case signal.Buy:
		d.counters.BuySignals++
	case signal.Sell:
		d.counters.SellSignals++
	default:
		d.counters.HoldSignals++
	}
}

// Snapshot returns a copy of the driver's counters and last-emitted signal
// for a concurrent UI-refresh task, under a read lock per §5.
func (d *RealTimeDriver) Snapshot() (Counters, *signal.Signal) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c := d.counters
	var last *signal.Signal
	if d.lastEmitted != nil {
		cp := *d.lastEmitted
		last = &cp
	}
	return c, last
}
