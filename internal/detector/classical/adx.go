package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// ADXTrend emits a directional signal, sign(+DI - -DI), whenever ADX
// exceeds its trend-strength threshold.
type ADXTrend struct {
	Period    int
	Threshold float64
}

func NewADXTrend(period int, threshold float64) *ADXTrend {
	if period <= 0 {
		period = 14
	}
	if threshold <= 0 {
		threshold = 25
	}
	return &ADXTrend{Period: period, Threshold: threshold}
}

func (d *ADXTrend) Name() string { return "adx" }

func (d *ADXTrend) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	need := 2*d.Period + 1
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}
	highs, lows, closes := market.Highs(bars), market.Lows(bars), market.Closes(bars)
	r := indicator.ADX(highs, lows, closes, d.Period)
	if r.ADX == 0 {
		return holdSignal(d.Name(), ts, "ADX undefined")
	}
	if r.ADX <= d.Threshold {
		return holdSignal(d.Name(), ts, fmt.Sprintf("ADX %.1f below threshold %.1f", r.ADX, d.Threshold))
	}
	confidence := 0.4 + minFloat64((r.ADX-d.Threshold)/50, 0.5)
	if r.PlusDI > r.MinusDI {
		return buySignal(ts, confidence, fmt.Sprintf("ADX %.1f trending, +DI %.1f > -DI %.1f", r.ADX, r.PlusDI, r.MinusDI), d.Name())
	}
	if r.MinusDI > r.PlusDI {
		return sellSignal(ts, confidence, fmt.Sprintf("ADX %.1f trending, -DI %.1f > +DI %.1f", r.ADX, r.MinusDI, r.PlusDI), d.Name())
	}
	return holdSignal(d.Name(), ts, "ADX trending but DI balanced")
}
