// Package store declares the abstract persistence boundaries from spec.md
// §6/§1: a Repository for backtest history and a CapitalStore for live
// capital/position state. The core depends only on these interfaces;
// internal/store/postgres and internal/store/redis are the concrete
// adapters SPEC_FULL supplies so each interface has a real body.
package store

import (
	"context"

	"github.com/conflux-quant/decision-engine/internal/driver"
)

// Repository persists finished BacktestReports for later retrieval (e.g.
// by the advisor or a reporting UI out of the core's scope).
type Repository interface {
	// SaveBacktestReport persists a report and its trade ledger, returning
	// a store-assigned identifier.
	SaveBacktestReport(ctx context.Context, symbol, timeframe string, report driver.BacktestReport) (int64, error)

	// GetBacktestReport retrieves a previously saved report by ID.
	GetBacktestReport(ctx context.Context, id int64) (driver.BacktestReport, error)

	// ListBacktestReports returns the most recent reports for a symbol,
	// newest first, bounded by limit.
	ListBacktestReports(ctx context.Context, symbol string, limit int) ([]driver.BacktestReport, error)
}

// CapitalState is the live bookkeeping CapitalStore caches across process
// restarts: the position book's capital/peak/guard state plus the
// RealTimeDriver's last-emitted signal action, keyed by symbol.
type CapitalState struct {
	Symbol               string
	Capital              float64
	PeakCapital          float64
	DrawdownGuardTripped bool
	LastAction           string
}

// CapitalStore caches live capital and position state so a restarted
// RealTimeDriver resumes from its last known state rather than from
// initial_capital, and so it does not re-emit a decision the caller
// already observed before the restart.
type CapitalStore interface {
	SaveCapitalState(ctx context.Context, state CapitalState) error
	LoadCapitalState(ctx context.Context, symbol string) (CapitalState, bool, error)
}
