package binance

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/conflux-quant/decision-engine/internal/dataprovider"
	"github.com/conflux-quant/decision-engine/internal/market"
)

var _ dataprovider.DataProvider = (*Provider)(nil)

// Provider implements dataprovider.DataProvider against live Binance
// endpoints, composing RESTClient for historical fetches and Stream for
// the live feed.
type Provider struct {
	rest   *RESTClient
	stream *Stream
}

// NewProvider builds a Provider. Either baseURL may be empty to fall back
// to the production Binance endpoints.
func NewProvider(restBaseURL, streamBaseURL string, logger zerolog.Logger) *Provider {
	return &Provider{
		rest:   NewRESTClient(restBaseURL),
		stream: NewStream(streamBaseURL, logger),
	}
}

func (p *Provider) FetchKlines(ctx context.Context, symbol, timeframe string, startMs, endMs int64, limit int) ([]market.Bar, error) {
	return p.rest.FetchKlines(ctx, symbol, timeframe, startMs, endMs, limit)
}

// StreamKlines starts the background reconnect loop and returns the
// channel it publishes on. The channel closes once ctx is cancelled.
func (p *Provider) StreamKlines(ctx context.Context, symbol, timeframe string) (<-chan market.BarEvent, error) {
	out := make(chan market.BarEvent, 256)
	go func() {
		defer close(out)
		p.stream.Run(ctx, symbol, timeframe, out)
	}()
	return out, nil
}

func (p *Provider) TestConnection(ctx context.Context) bool {
	return p.rest.TestConnection(ctx)
}
