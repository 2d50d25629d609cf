// Package postgres implements internal/store.Repository against
// PostgreSQL via pgx. Grounded on the teacher repo's internal/database.DB
// (pool construction, config shape, migration runner) and
// internal/database's repository_backtest.go (transaction-per-save,
// RETURNING id pattern), generalized from the teacher's normalized
// trades/backtest_trades schema to a single JSONB trade-ledger column
// since the decision engine's Trade and Signal shapes are richer and more
// fluid than the teacher's fixed order-side ledger.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DB wraps a pgx connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// Open creates a pooled PostgreSQL connection and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases all pooled connections.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// migrations is the append-only schema history for backtest persistence.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS backtest_reports (
		id BIGSERIAL PRIMARY KEY,
		symbol VARCHAR(20) NOT NULL,
		timeframe VARCHAR(10) NOT NULL,
		starting_capital DECIMAL(20, 8) NOT NULL,
		final_capital DECIMAL(20, 8) NOT NULL,
		roi DECIMAL(10, 4) NOT NULL DEFAULT 0,
		trade_count INT NOT NULL DEFAULT 0,
		win_rate DECIMAL(6, 4) NOT NULL DEFAULT 0,
		profit_factor DECIMAL(10, 4) NOT NULL DEFAULT 0,
		max_drawdown DECIMAL(6, 4) NOT NULL DEFAULT 0,
		drawdown_guard_tripped BOOLEAN NOT NULL DEFAULT FALSE,
		trades JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_backtest_reports_symbol ON backtest_reports(symbol)`,
	`CREATE INDEX IF NOT EXISTS idx_backtest_reports_created_at ON backtest_reports(created_at DESC)`,
}

// Migrate runs the schema migrations idempotently.
func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// HealthCheck pings the pool.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
