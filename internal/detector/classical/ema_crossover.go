package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// EMACrossover emits BUY when the fast EMA crosses above the slow EMA and
// SELL on the reverse crossover.
type EMACrossover struct {
	Fast int
	Slow int
}

func NewEMACrossover(fast, slow int) *EMACrossover {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	return &EMACrossover{Fast: fast, Slow: slow}
}

func (d *EMACrossover) Name() string { return "ema_crossover" }

func (d *EMACrossover) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	need := d.Slow + 2
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}
	closes := market.Closes(bars)
	fastNow, slowNow := indicator.EMA(closes, d.Fast), indicator.EMA(closes, d.Slow)
	prevCloses := closes[:len(closes)-1]
	fastPrev, slowPrev := indicator.EMA(prevCloses, d.Fast), indicator.EMA(prevCloses, d.Slow)

	spreadNow := fastNow - slowNow
	spreadPrev := fastPrev - slowPrev

	if spreadPrev <= 0 && spreadNow > 0 {
		confidence := 0.4 + minFloat64(spreadNow/slowNow*20, 0.5)
		return buySignal(ts, confidence, fmt.Sprintf("EMA%d crossed above EMA%d", d.Fast, d.Slow), d.Name())
	}
	if spreadPrev >= 0 && spreadNow < 0 {
		confidence := 0.4 + minFloat64(-spreadNow/slowNow*20, 0.5)
		return sellSignal(ts, confidence, fmt.Sprintf("EMA%d crossed below EMA%d", d.Fast, d.Slow), d.Name())
	}
	return holdSignal(d.Name(), ts, "no EMA crossover")
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
