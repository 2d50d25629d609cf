package classical

import (
	"testing"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

func buildWindow(closes []float64) *market.Window {
	w := market.NewWindow(len(closes) + 1)
	for i, c := range closes {
		w.Append(market.Bar{
			Timestamp: int64(i + 1),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1000,
			Closed:    true,
		})
	}
	return w
}

func TestRSIMeanReversionNotEnoughData(t *testing.T) {
	d := NewRSIMeanReversion(14, 30, 70)
	w := buildWindow([]float64{100, 101, 102})
	s := d.Evaluate(w, detector.Context{})
	if s.Action != signal.Hold {
		t.Errorf("expected HOLD with insufficient data, got %v", s.Action)
	}
}

func TestEMACrossoverDeterministic(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	d := NewEMACrossover(5, 10)
	w := buildWindow(closes)
	first := d.Evaluate(w, detector.Context{})
	second := d.Evaluate(w, detector.Context{})
	if first.Action != second.Action || first.Confidence != second.Confidence {
		t.Errorf("detector must be deterministic: %+v vs %+v", first, second)
	}
}

func TestBollingerBreakoutBuyOnSpike(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	closes[24] = 130
	d := NewBollingerBreakout(20, 2)
	s := d.Evaluate(buildWindow(closes), detector.Context{})
	if s.Action != signal.Buy {
		t.Errorf("expected BUY on upper band breakout, got %v", s.Action)
	}
}

func TestADXHoldBelowThreshold(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
	}
	d := NewADXTrend(14, 25)
	s := d.Evaluate(buildWindow(closes), detector.Context{})
	if s.Action != signal.Hold {
		t.Errorf("flat series should not trend, got %v", s.Action)
	}
}

func TestConfidenceNeverExceedsOne(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)*5
	}
	detectors := []detector.Detector{
		NewEMACrossover(5, 10),
		NewMACDCrossover(12, 26, 9),
		NewBollingerBreakout(20, 2),
	}
	w := buildWindow(closes)
	for _, d := range detectors {
		s := d.Evaluate(w, detector.Context{})
		if s.Confidence < 0 || s.Confidence > 1 {
			t.Errorf("%s: confidence out of bounds: %v", d.Name(), s.Confidence)
		}
	}
}

func TestPivotPointHoldWhenAway(t *testing.T) {
	d := NewPivotPoint(0.003)
	w := market.NewWindow(10)
	w.Append(market.Bar{Timestamp: 1, High: 110, Low: 90, Close: 100, Closed: true})
	w.Append(market.Bar{Timestamp: 2, High: 200, Low: 199, Close: 200, Closed: true})
	s := d.Evaluate(w, detector.Context{})
	if s.Action != signal.Hold {
		t.Errorf("price far from any pivot level should HOLD, got %v", s.Action)
	}
}
