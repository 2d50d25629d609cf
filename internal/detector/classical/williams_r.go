package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// WilliamsR emits BUY when %R exits the oversold zone and SELL when it
// exits the overbought zone, mirroring RSIMeanReversion's exit-from-
// extreme logic on Williams %R's [-100, 0] scale.
type WilliamsR struct {
	Period     int
	Oversold   float64
	Overbought float64
}

func NewWilliamsR(period int, oversold, overbought float64) *WilliamsR {
	if period <= 0 {
		period = 14
	}
	if oversold == 0 {
		oversold = -80
	}
	if overbought == 0 {
		overbought = -20
	}
	return &WilliamsR{Period: period, Oversold: oversold, Overbought: overbought}
}

func (d *WilliamsR) Name() string { return "williams_r" }

func (d *WilliamsR) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	need := d.Period + 2
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}
	highs, lows, closes := market.Highs(bars), market.Lows(bars), market.Closes(bars)
	n := len(closes)
	now := indicator.WilliamsR(highs, lows, closes, d.Period)
	prev := indicator.WilliamsR(highs[:n-1], lows[:n-1], closes[:n-1], d.Period)

	if prev <= d.Oversold && now > d.Oversold {
		confidence := 0.4 + minFloat64((d.Oversold-prev)/20, 0.5)
		return buySignal(ts, confidence, fmt.Sprintf("Williams %%R exited oversold (%.1f -> %.1f)", prev, now), d.Name())
	}
	if prev >= d.Overbought && now < d.Overbought {
		confidence := 0.4 + minFloat64((prev-d.Overbought)/20, 0.5)
		return sellSignal(ts, confidence, fmt.Sprintf("Williams %%R exited overbought (%.1f -> %.1f)", prev, now), d.Name())
	}
	return holdSignal(d.Name(), ts, "Williams %R not transitioning out of an extreme")
}
