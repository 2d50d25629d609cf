// Package position implements the backtest-only position and capital
// bookkeeping: opening/closing a single LONG or SHORT position, the trade
// ledger, and the drawdown/sizing guard rails a BacktestDriver consults on
// every bar. Grounded on the teacher repo's
// internal/settlement.CapitalTracker (peak-balance/drawdown tracking shape)
// and internal/orders.PositionTracker (position lifecycle fields),
// generalized from live futures-account bookkeeping to the single-position,
// bar-indexed model §4.5 and §3 specify.
package position

import (
	"github.com/google/uuid"

	"github.com/conflux-quant/decision-engine/internal/signal"
)

// Side is the direction of an open position.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	StopLoss       ExitReason = "STOP_LOSS"
	TakeProfit     ExitReason = "TAKE_PROFIT"
	SignalReversal ExitReason = "SIGNAL_REVERSAL"
	EndOfTest      ExitReason = "END_OF_TEST"
)

// Position is the single open position a BacktestDriver may hold. At most
// one Position exists at any time (no pyramiding, per §3).
type Position struct {
	ID            string
	Side          Side
	EntryPrice    float64
	EntryBarIndex int
	StopLoss      float64
	TakeProfit    float64
	NotionalSize  float64
}

// Trade is one closed-position ledger entry.
type Trade struct {
	ID            string
	EntryBarIndex int
	ExitBarIndex  int
	Side          Side
	EntryPrice    float64
	ExitPrice     float64
	ExitReason    ExitReason
	PnL           float64
	PnLPct        float64
	CapitalAfter  float64
	EntrySignal   signal.Signal
}

// OpenLong opens a LONG position at entryPrice, sized from notional.
func OpenLong(entryPrice float64, barIndex int, stopMult, tpMult, atr, notional float64) Position {
	return Position{
		ID:            uuid.New().String(),
		Side:          Long,
		EntryPrice:    entryPrice,
		EntryBarIndex: barIndex,
		StopLoss:      entryPrice - stopMult*atr,
		TakeProfit:    entryPrice + tpMult*atr,
		NotionalSize:  notional,
	}
}

// OpenShort opens a SHORT position at entryPrice, mirroring OpenLong.
func OpenShort(entryPrice float64, barIndex int, stopMult, tpMult, atr, notional float64) Position {
	return Position{
		ID:            uuid.New().String(),
		Side:          Short,
		EntryPrice:    entryPrice,
		EntryBarIndex: barIndex,
		StopLoss:      entryPrice + stopMult*atr,
		TakeProfit:    entryPrice - tpMult*atr,
		NotionalSize:  notional,
	}
}

// CheckExit evaluates p against the current bar's high/low/close and the
// engine's Signal for this bar, returning the exit price and reason in
// priority order (stop, then target, then signal reversal), or ok=false if
// the position should remain open. Mirrors §4.5.C's check order exactly.
func (p Position) CheckExit(high, low, close float64, action signal.Action) (exitPrice float64, reason ExitReason, ok bool) {
	switch p.Side {
	case Long:
		if low <= p.StopLoss {
			return p.StopLoss, StopLoss, true
		}
		if high >= p.TakeProfit {
			return p.TakeProfit, TakeProfit, true
		}
		if action == signal.Sell {
			return close, SignalReversal, true
		}
	case Short:
		if high >= p.StopLoss {
			return p.StopLoss, StopLoss, true
		}
		if low <= p.TakeProfit {
			return p.TakeProfit, TakeProfit, true
		}
		if action == signal.Buy {
			return close, SignalReversal, true
		}
	}
	return 0, "", false
}

// PnL computes the absolute and percent profit/loss of closing p at
// exitPrice, per §4.5.C's formula.
func (p Position) PnL(exitPrice float64) (pnl, pnlPct float64) {
	switch p.Side {
	case Long:
		pnl = (exitPrice - p.EntryPrice) * p.NotionalSize / p.EntryPrice
	case Short:
		pnl = (p.EntryPrice - exitPrice) * p.NotionalSize / p.EntryPrice
	}
	if p.NotionalSize != 0 {
		pnlPct = pnl / p.NotionalSize
	}
	return pnl, pnlPct
}

// Close builds the Trade ledger entry for exiting p, given the capital
// balance after settlement.
func (p Position) Close(exitBarIndex int, exitPrice float64, reason ExitReason, capitalAfter float64, entrySignal signal.Signal) Trade {
	pnl, pnlPct := p.PnL(exitPrice)
	return Trade{
		ID:            uuid.New().String(),
		EntryBarIndex: p.EntryBarIndex,
		ExitBarIndex:  exitBarIndex,
		Side:          p.Side,
		EntryPrice:    p.EntryPrice,
		ExitPrice:     exitPrice,
		ExitReason:    reason,
		PnL:           pnl,
		PnLPct:        pnlPct,
		CapitalAfter:  capitalAfter,
		EntrySignal:   entrySignal,
	}
}
