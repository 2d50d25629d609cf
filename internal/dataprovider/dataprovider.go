// Package dataprovider declares the abstract market-data boundary the
// drivers consume: a finite historical fetch, a live bar stream, and a
// cheap connectivity check. Concrete adapters (internal/dataprovider/binance)
// implement it; the core never imports an adapter directly.
package dataprovider

import (
	"context"

	"github.com/conflux-quant/decision-engine/internal/market"
)

// DataProvider is the required interface from spec.md §6. Implementations
// MUST fail fetch_klines with a typed transport error (see
// internal/engineerr.TransportError) rather than a partial/zero result.
type DataProvider interface {
	// FetchKlines returns a finite, chronologically ordered sequence of
	// bars in [startMs, endMs]. Implementations MAY paginate internally.
	FetchKlines(ctx context.Context, symbol, timeframe string, startMs, endMs int64, limit int) ([]market.Bar, error)

	// StreamKlines returns a channel of BarEvent for the given symbol and
	// timeframe. The channel is closed when ctx is cancelled or the stream
	// terminates; the caller does not close it. A forming bar MAY be
	// emitted multiple times with the same timestamp.
	StreamKlines(ctx context.Context, symbol, timeframe string) (<-chan market.BarEvent, error)

	// TestConnection is a cheap health check.
	TestConnection(ctx context.Context) bool
}
