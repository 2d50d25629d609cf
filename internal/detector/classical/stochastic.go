package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// StochasticOscillator emits BUY/SELL on a %K/%D crossover occurring
// inside the oversold/overbought extreme zones.
type StochasticOscillator struct {
	K          int
	D          int
	Oversold   float64
	Overbought float64
}

func NewStochasticOscillator(k, d int, oversold, overbought float64) *StochasticOscillator {
	if k <= 0 {
		k = 14
	}
	if d <= 0 {
		d = 3
	}
	if oversold <= 0 {
		oversold = 20
	}
	if overbought <= 0 {
		overbought = 80
	}
	return &StochasticOscillator{K: k, D: d, Oversold: oversold, Overbought: overbought}
}

func (d *StochasticOscillator) Name() string { return "stochastic" }

func (d *StochasticOscillator) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	need := d.K + d.D + 2
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}
	highs, lows, closes := market.Highs(bars), market.Lows(bars), market.Closes(bars)
	now := indicator.StochasticValue(highs, lows, closes, d.K, d.D)
	prev := indicator.StochasticPrevValue(highs, lows, closes, d.K, d.D)

	if prev.K <= prev.D && now.K > now.D && now.K < d.Oversold {
		confidence := 0.4 + minFloat64((d.Oversold-now.K)/d.Oversold*0.5, 0.5)
		return buySignal(ts, confidence, fmt.Sprintf("%%K crossed above %%D near oversold (%.1f)", now.K), d.Name())
	}
	if prev.K >= prev.D && now.K < now.D && now.K > d.Overbought {
		confidence := 0.4 + minFloat64((now.K-d.Overbought)/(100-d.Overbought)*0.5, 0.5)
		return sellSignal(ts, confidence, fmt.Sprintf("%%K crossed below %%D near overbought (%.1f)", now.K), d.Name())
	}
	return holdSignal(d.Name(), ts, "no stochastic crossover in extreme zone")
}
