package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/driver"
	"github.com/conflux-quant/decision-engine/internal/position"
	"github.com/conflux-quant/decision-engine/internal/store"
)

var _ store.Repository = (*Repository)(nil)

// Repository persists BacktestReports to PostgreSQL. The per-bar
// CandleLog is deliberately not persisted: it is reproducible from the
// same bars and config, and would otherwise dominate row size for a long
// backtest.
type Repository struct {
	db *DB
}

// NewRepository builds a Repository over an already-open DB.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) SaveBacktestReport(ctx context.Context, symbol, timeframe string, report driver.BacktestReport) (int64, error) {
	tradesJSON, err := json.Marshal(report.Trades)
	if err != nil {
		return 0, fmt.Errorf("marshal trade ledger: %w", err)
	}

	const query = `
		INSERT INTO backtest_reports (
			symbol, timeframe, starting_capital, final_capital, roi,
			trade_count, win_rate, profit_factor, max_drawdown,
			drawdown_guard_tripped, trades
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id int64
	err = r.db.Pool.QueryRow(ctx, query,
		symbol, timeframe, report.StartingCapital, report.FinalCapital, report.ROI,
		report.TradeCount, report.WinRate, report.ProfitFactor, report.MaxDrawdown,
		report.DrawdownGuardTripped, tradesJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert backtest report: %w", err)
	}
	return id, nil
}

func (r *Repository) GetBacktestReport(ctx context.Context, id int64) (driver.BacktestReport, error) {
	const query = `
		SELECT starting_capital, final_capital, roi, trade_count, win_rate,
			   profit_factor, max_drawdown, drawdown_guard_tripped, trades
		FROM backtest_reports
		WHERE id = $1
	`
	var (
		report     driver.BacktestReport
		tradesJSON []byte
	)
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&report.StartingCapital, &report.FinalCapital, &report.ROI, &report.TradeCount,
		&report.WinRate, &report.ProfitFactor, &report.MaxDrawdown, &report.DrawdownGuardTripped,
		&tradesJSON,
	)
	if err != nil {
		return driver.BacktestReport{}, fmt.Errorf("get backtest report %d: %w", id, err)
	}

	var trades []position.Trade
	if err := json.Unmarshal(tradesJSON, &trades); err != nil {
		return driver.BacktestReport{}, fmt.Errorf("unmarshal trade ledger for report %d: %w", id, err)
	}
	report.Trades = trades
	return report, nil
}

func (r *Repository) ListBacktestReports(ctx context.Context, symbol string, limit int) ([]driver.BacktestReport, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
		SELECT starting_capital, final_capital, roi, trade_count, win_rate,
			   profit_factor, max_drawdown, drawdown_guard_tripped, trades
		FROM backtest_reports
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("list backtest reports for %s: %w", symbol, err)
	}
	defer rows.Close()

	var reports []driver.BacktestReport
	for rows.Next() {
		var (
			report     driver.BacktestReport
			tradesJSON []byte
		)
		if err := rows.Scan(
			&report.StartingCapital, &report.FinalCapital, &report.ROI, &report.TradeCount,
			&report.WinRate, &report.ProfitFactor, &report.MaxDrawdown, &report.DrawdownGuardTripped,
			&tradesJSON,
		); err != nil {
			return nil, fmt.Errorf("scan backtest report row: %w", err)
		}
		var trades []position.Trade
		if err := json.Unmarshal(tradesJSON, &trades); err != nil {
			return nil, fmt.Errorf("unmarshal trade ledger: %w", err)
		}
		report.Trades = trades
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backtest reports: %w", err)
	}
	return reports, nil
}
