package driver

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/conflux-quant/decision-engine/internal/confluence"
	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

func buildBar(i int, price float64) market.Bar {
	return market.Bar{
		Timestamp: int64(i+1) * 60000,
		Open:      price - 1, High: price + 2, Low: price - 3, Close: price,
		Volume: 1000, Closed: true,
	}
}

func TestRealTimeDriverEmitsOnlyOnStateChange(t *testing.T) {
	reg := detector.NewRegistry()
	_ = reg.Register("buyer", constantDetector{"buyer", signal.Signal{Action: signal.Buy, Confidence: 0.9}}, 1.0)
	eng := confluence.New(reg, confluence.DefaultConfig())

	var emitted []signal.Signal
	cfg := RealTimeConfig{Symbol: "BTCUSDT", Timeframe: "1h", WindowSize: 200}
	d := NewRealTimeDriver(eng, nil, cfg, func(s signal.Signal) { emitted = append(emitted, s) }, zerolog.Nop(), nil)

	events := make(chan market.BarEvent, 256)
	price := 100.0
	for i := 0; i < 80; i++ {
		price += 1.5
		events <- market.BarEvent{Bar: buildBar(i, price), IsClosed: true}
	}
	close(events)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Run(ctx, events); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(emitted) != 1 {
		t.Fatalf("expected exactly one state-change emission (HOLD->BUY), got %d: %+v", len(emitted), emitted)
	}
	if emitted[0].Action != signal.Buy {
		t.Errorf("expected BUY emission, got %v", emitted[0].Action)
	}
}

func TestRealTimeDriverDropsDuplicateTimestamp(t *testing.T) {
	reg := detector.NewRegistry()
	eng := confluence.New(reg, confluence.DefaultConfig())
	cfg := RealTimeConfig{Symbol: "BTCUSDT", Timeframe: "1h", WindowSize: 200}
	d := NewRealTimeDriver(eng, nil, cfg, nil, zerolog.Nop(), nil)

	bar := buildBar(0, 100)
	d.handleEvent(market.BarEvent{Bar: bar, IsClosed: true})
	d.handleEvent(market.BarEvent{Bar: bar, IsClosed: true})

	counters, _ := d.Snapshot()
	if counters.BarsDropped != 1 {
		t.Errorf("expected the duplicate-timestamp bar to be dropped, got counters=%+v", counters)
	}
}
