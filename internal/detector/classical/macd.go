package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// MACDCrossover emits BUY/SELL on a crossover of the MACD line and its
// signal line.
type MACDCrossover struct {
	Fast   int
	Slow   int
	Signal int
}

func NewMACDCrossover(fast, slow, signalPeriod int) *MACDCrossover {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signalPeriod <= 0 {
		signalPeriod = 9
	}
	return &MACDCrossover{Fast: fast, Slow: slow, Signal: signalPeriod}
}

func (d *MACDCrossover) Name() string { return "macd" }

func (d *MACDCrossover) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	need := d.Slow + d.Signal + 2
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}
	closes := market.Closes(bars)
	now := indicator.MACDValue(closes, d.Fast, d.Slow, d.Signal)
	prev := indicator.MACDPrevValue(closes, d.Fast, d.Slow, d.Signal)

	if prev.Histogram <= 0 && now.Histogram > 0 {
		confidence := 0.4 + minFloat64(now.Histogram/closes[len(closes)-1]*50, 0.5)
		return buySignal(ts, confidence, fmt.Sprintf("MACD crossed above signal (hist=%.5f)", now.Histogram), d.Name())
	}
	if prev.Histogram >= 0 && now.Histogram < 0 {
		confidence := 0.4 + minFloat64(-now.Histogram/closes[len(closes)-1]*50, 0.5)
		return sellSignal(ts, confidence, fmt.Sprintf("MACD crossed below signal (hist=%.5f)", now.Histogram), d.Name())
	}
	return holdSignal(d.Name(), ts, "no MACD crossover")
}
