package smc

import (
	"testing"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

func flatWindow(n int, price float64) *market.Window {
	w := market.NewWindow(n + 1)
	for i := 0; i < n; i++ {
		w.Append(market.Bar{
			Timestamp: int64(i + 1),
			Open:      price, High: price + 1, Low: price - 1, Close: price,
			Volume: 100, Closed: true,
		})
	}
	return w
}

func TestBOSNotEnoughData(t *testing.T) {
	d := NewBOS(0.001, 1.2)
	s := d.Evaluate(flatWindow(5, 100), detector.Context{})
	if s.Action != signal.Hold {
		t.Errorf("expected HOLD with insufficient data, got %v", s.Action)
	}
}

func TestBOSFiresOnDisplacementBreak(t *testing.T) {
	w := market.NewWindow(20)
	for i := 0; i < 10; i++ {
		w.Append(market.Bar{Timestamp: int64(i + 1), Open: 100, High: 101, Low: 99, Close: 100, Volume: 100, Closed: true})
	}
	w.Append(market.Bar{Timestamp: 11, Open: 100, High: 110, Low: 100, Close: 108, Volume: 500, Closed: true})
	d := NewBOS(0.001, 1.2)
	s := d.Evaluate(w, detector.Context{})
	if s.Action != signal.Buy {
		t.Errorf("expected BUY on bullish displacement break, got %v", s.Action)
	}
}

func TestFVGDetectsBullishGap(t *testing.T) {
	w := market.NewWindow(10)
	w.Append(market.Bar{Timestamp: 1, Open: 100, High: 101, Low: 99, Close: 100, Volume: 100, Closed: true})
	w.Append(market.Bar{Timestamp: 2, Open: 101, High: 103, Low: 100, Close: 102, Volume: 100, Closed: true})
	w.Append(market.Bar{Timestamp: 3, Open: 104, High: 106, Low: 104, Close: 105, Volume: 100, Closed: true})
	d := NewFVG(0.1)
	s := d.Evaluate(w, detector.Context{})
	if s.Action != signal.Buy {
		t.Errorf("expected BUY on bullish FVG, got %v", s.Action)
	}
}

func TestFVGHoldWhenNoGap(t *testing.T) {
	w := flatWindow(5, 100)
	d := NewFVG(0.1)
	s := d.Evaluate(w, detector.Context{})
	if s.Action != signal.Hold {
		t.Errorf("expected HOLD without a gap, got %v", s.Action)
	}
}

func TestOrderBlocksHoldWithoutStructure(t *testing.T) {
	w := flatWindow(10, 100)
	d := NewOrderBlocks(0)
	s := d.Evaluate(w, detector.Context{})
	if s.Action != signal.Hold {
		t.Errorf("expected HOLD on a flat series, got %v", s.Action)
	}
}

func TestLiquiditySweepDeterministic(t *testing.T) {
	w := market.NewWindow(20)
	for i := 0; i < 15; i++ {
		w.Append(market.Bar{Timestamp: int64(i + 1), Open: 100, High: 105, Low: 95, Close: 100, Volume: 100, Closed: true})
	}
	d := NewLiquiditySweep(0.5)
	first := d.Evaluate(w, detector.Context{})
	second := d.Evaluate(w, detector.Context{})
	if first.Action != second.Action || first.Confidence != second.Confidence {
		t.Errorf("detector must be deterministic: %+v vs %+v", first, second)
	}
}
