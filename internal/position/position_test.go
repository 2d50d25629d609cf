package position

import (
	"testing"

	"github.com/conflux-quant/decision-engine/internal/signal"
)

func TestOpenLongSetsStopAndTarget(t *testing.T) {
	p := OpenLong(100, 50, 1.5, 2.5, 2.0, 1000)
	if p.Side != Long {
		t.Errorf("expected Long, got %v", p.Side)
	}
	if p.StopLoss != 97 {
		t.Errorf("stop = entry - stop_mult*atr: want 97, got %v", p.StopLoss)
	}
	if p.TakeProfit != 105 {
		t.Errorf("target = entry + tp_mult*atr: want 105, got %v", p.TakeProfit)
	}
}

func TestCheckExitLongStopTakesPriorityOverTarget(t *testing.T) {
	p := OpenLong(100, 0, 1.5, 2.5, 2.0, 1000)
	// A bar whose low touches the stop and whose high also touches the
	// target: stop must win per the §4.5.C check order.
	price, reason, ok := p.CheckExit(106, 96, 100, signal.Hold)
	if !ok || reason != StopLoss || price != p.StopLoss {
		t.Errorf("expected stop-loss exit, got price=%v reason=%v ok=%v", price, reason, ok)
	}
}

func TestCheckExitLongSignalReversal(t *testing.T) {
	p := OpenLong(100, 0, 1.5, 2.5, 2.0, 1000)
	price, reason, ok := p.CheckExit(101, 99, 100, signal.Sell)
	if !ok || reason != SignalReversal || price != 100 {
		t.Errorf("expected signal-reversal exit at close, got price=%v reason=%v ok=%v", price, reason, ok)
	}
}

func TestCheckExitLongRemainsOpen(t *testing.T) {
	p := OpenLong(100, 0, 1.5, 2.5, 2.0, 1000)
	_, _, ok := p.CheckExit(101, 99, 100, signal.Hold)
	if ok {
		t.Error("position with no triggered condition should remain open")
	}
}

func TestPnLLong(t *testing.T) {
	p := OpenLong(100, 0, 1.5, 2.5, 2.0, 1000)
	pnl, _ := p.PnL(105)
	want := (105.0 - 100.0) * 1000 / 100.0
	if pnl != want {
		t.Errorf("want pnl=%v, got %v", want, pnl)
	}
}

func TestPnLShort(t *testing.T) {
	p := OpenShort(100, 0, 1.5, 2.5, 2.0, 1000)
	pnl, _ := p.PnL(95)
	want := (100.0 - 95.0) * 1000 / 100.0
	if pnl != want {
		t.Errorf("want pnl=%v, got %v", want, pnl)
	}
}

func TestBookNotionalRespectsCompounding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compound = false
	cfg.InitialCapital = 10000
	b := NewBook(cfg)
	b.Capital = 20000
	if got := b.Notional(); got != 1000 {
		t.Errorf("non-compounding sizing should use initial capital: want 1000, got %v", got)
	}
}

func TestBookNotionalCapsAtMaxPositionSizePct(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PositionSizePct = 0.9
	cfg.MaxPositionSizePct = 0.10
	b := NewBook(cfg)
	if got := b.Notional(); got != b.Capital*0.10 {
		t.Errorf("notional should be capped at MaxPositionSizePct of capital, got %v", got)
	}
}

func TestBookDrawdownGuardTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDrawdownPct = 0.2
	cfg.InitialCapital = 10000
	b := NewBook(cfg)
	b.Settle(1000) // capital=11000, peak=11000
	b.Settle(-3000) // capital=8000, drawdown=(11000-8000)/10000=0.3>0.2
	if !b.GuardTripped {
		t.Error("drawdown exceeding MaxDrawdownPct should trip the guard")
	}
	if b.CanOpen(0) {
		t.Error("CanOpen must return false once the guard is tripped")
	}
}

func TestBookMaxDailyTrades(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDailyTrades = 1
	b := NewBook(cfg)
	ts := int64(1000)
	if !b.CanOpen(ts) {
		t.Fatal("first trade of the day should be allowed")
	}
	b.RecordOpen(ts)
	if b.CanOpen(ts) {
		t.Error("second trade on the same day should be blocked by MaxDailyTrades")
	}
	nextDay := ts + 24*60*60*1000
	if !b.CanOpen(nextDay) {
		t.Error("the counter should roll over on a new UTC day")
	}
}
