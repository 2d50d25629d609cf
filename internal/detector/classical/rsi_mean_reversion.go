package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// RSIMeanReversion emits BUY when RSI exits oversold territory and SELL
// when it exits overbought territory.
type RSIMeanReversion struct {
	Period     int
	Oversold   float64
	Overbought float64
}

// NewRSIMeanReversion returns an rsi_mean_reversion detector, applying the
// catalogue defaults (14, 30, 70) for any zero field.
func NewRSIMeanReversion(period int, oversold, overbought float64) *RSIMeanReversion {
	if period <= 0 {
		period = 14
	}
	if oversold <= 0 {
		oversold = 30
	}
	if overbought <= 0 {
		overbought = 70
	}
	return &RSIMeanReversion{Period: period, Oversold: oversold, Overbought: overbought}
}

func (d *RSIMeanReversion) Name() string { return "rsi_mean_reversion" }

func (d *RSIMeanReversion) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	need := d.Period + 2
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}
	closes := market.Closes(bars)
	current := indicator.RSI(closes, d.Period)
	previous := indicator.RSI(closes[:len(closes)-1], d.Period)

	if previous <= d.Oversold && current > d.Oversold {
		confidence := 0.4 + 0.3*((d.Oversold-previous)/d.Oversold)
		return buySignal(ts, confidence, fmt.Sprintf("RSI exited oversold (%.1f -> %.1f)", previous, current), d.Name())
	}
	if previous >= d.Overbought && current < d.Overbought {
		confidence := 0.4 + 0.3*((previous-d.Overbought)/(100-d.Overbought))
		return sellSignal(ts, confidence, fmt.Sprintf("RSI exited overbought (%.1f -> %.1f)", previous, current), d.Name())
	}
	return holdSignal(d.Name(), ts, "RSI not transitioning out of an extreme")
}
