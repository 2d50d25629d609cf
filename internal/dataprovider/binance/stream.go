package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/conflux-quant/decision-engine/internal/market"
)

const defaultStreamURL = "wss://stream.binance.com:9443"

// klineMessage is the event Binance sends on the single-stream
// "/ws/<symbol>@kline_<interval>" endpoint.
type klineMessage struct {
	Kline struct {
		StartTime int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Close     string `json:"c"`
		Volume    string `json:"v"`
		IsClosed  bool   `json:"x"`
	} `json:"k"`
}

// Stream subscribes to a single symbol/timeframe kline stream and
// republishes bar events on a channel, reconnecting with exponential
// backoff and jitter on every transport failure per spec.md §5. Grounded
// on the teacher's internal/binance.UserDataStream connect/readLoop shape,
// generalized from the user-data stream to a public kline stream and
// switched from a flat retry delay to the backoff schedule the spec
// mandates.
type Stream struct {
	baseURL string
	logger  zerolog.Logger
}

// NewStream builds a Stream. An empty baseURL falls back to the
// production Binance WebSocket endpoint.
func NewStream(baseURL string, logger zerolog.Logger) *Stream {
	if baseURL == "" {
		baseURL = defaultStreamURL
	}
	return &Stream{
		baseURL: baseURL,
		logger:  logger.With().Str("component", "binance.Stream").Logger(),
	}
}

// Run connects to the symbol/timeframe stream and sends decoded BarEvents
// on out until ctx is cancelled. It never returns except via ctx
// cancellation; transport failures are retried internally and never
// surface to the caller, matching the real-time driver's expectation that
// StreamKlines only needs one reconnect/backoff loop, owned here rather
// than in the driver.
func (s *Stream) Run(ctx context.Context, symbol, timeframe string, out chan<- market.BarEvent) {
	streamName := fmt.Sprintf("%s@kline_%s", strings.ToLower(symbol), timeframe)
	wsURL := fmt.Sprintf("%s/ws/%s", s.baseURL, streamName)
	bo := newBackoff()

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		if err != nil {
			delay := bo.next()
			s.logger.Warn().Err(err).Dur("retry_in", delay).Msg("kline stream connect failed")
			if !sleepOrDone(ctx, delay) {
				return
			}
			continue
		}

		s.logger.Info().Str("stream", streamName).Msg("kline stream connected")
		clean := s.readLoop(ctx, conn, out, bo)
		conn.Close()
		if clean {
			return
		}

		delay := bo.next()
		s.logger.Warn().Dur("retry_in", delay).Msg("kline stream disconnected, reconnecting")
		if !sleepOrDone(ctx, delay) {
			return
		}
	}
}

// readLoop reads frames until ctx is cancelled or the connection drops. It
// returns true only when ctx cancellation caused the exit.
func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- market.BarEvent, bo *backoff) bool {
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		conn.Close()
		close(done)
	}()

	first := true
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				return true
			default:
			}
			s.logger.Warn().Err(err).Msg("kline stream read error")
			return false
		}

		if first {
			bo.reset()
			first = false
		}

		ev, ok := decodeKlineMessage(raw)
		if !ok {
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return true
		}
	}
}

func decodeKlineMessage(raw []byte) (market.BarEvent, bool) {
	var msg klineMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return market.BarEvent{}, false
	}
	k := msg.Kline
	if k.CloseTime == 0 {
		return market.BarEvent{}, false
	}
	bar := market.Bar{
		Timestamp: k.CloseTime,
		Open:      parseFloat(k.Open),
		High:      parseFloat(k.High),
		Low:       parseFloat(k.Low),
		Close:     parseFloat(k.Close),
		Volume:    parseFloat(k.Volume),
		Closed:    k.IsClosed,
	}
	return market.BarEvent{Bar: bar, IsClosed: k.IsClosed}, true
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
