package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/conflux-quant/decision-engine/internal/signal"
)

type contextKey string

const loggerKey contextKey = "logger"

// GenerateRunID returns a random hex correlation ID, one per backtest or
// realtime run, attached to every log line that run emits.
func GenerateRunID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// WithRunContext tags l with a fresh run ID and returns a context carrying
// the tagged logger (retrievable elsewhere with FromContext) alongside it,
// for cmd/engine to thread through a single backtest or realtime
// invocation.
func WithRunContext(ctx context.Context, l *Logger) (context.Context, *Logger) {
	tagged := l.WithRunID(GenerateRunID())
	return context.WithValue(ctx, loggerKey, tagged), tagged
}

// FromContext retrieves the logger attached by WithRunContext, falling
// back to the package default if none was attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	return Default()
}

// SignalContext returns a logger tagged with the fields of an emitted
// Signal, for the driver's decision-emission log line.
func SignalContext(l *Logger, s signal.Signal) *Logger {
	return l.WithComponent("signal").WithFields(map[string]interface{}{
		"action":     string(s.Action),
		"confidence": s.Confidence,
		"tags":       s.Tags,
	})
}

// DetectorContext returns a logger tagged with a detector's registry name
// and weight, for registry construction and per-bar vote logging.
func DetectorContext(l *Logger, name string, weight float64) *Logger {
	return l.WithComponent("detector").WithFields(map[string]interface{}{
		"detector": name,
		"weight":   weight,
	})
}

// BacktestContext returns a logger tagged with the symbol/timeframe a
// BacktestDriver run covers.
func BacktestContext(l *Logger, symbol, timeframe string) *Logger {
	return l.WithComponent("backtest").WithFields(map[string]interface{}{
		"symbol":    symbol,
		"timeframe": timeframe,
	})
}
