package classical

import (
	"fmt"
	"math"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// Fibonacci emits a reversion signal when the close sits within
// tolerance of the 0.382 or 0.618 retracement level of the most recent
// swing over Lookback bars.
type Fibonacci struct {
	Lookback  int
	Tolerance float64 // fraction, e.g. 0.005 for 0.5%
}

func NewFibonacci(lookback int, tolerance float64) *Fibonacci {
	if lookback <= 0 {
		lookback = 50
	}
	if tolerance <= 0 {
		tolerance = 0.005
	}
	return &Fibonacci{Lookback: lookback, Tolerance: tolerance}
}

func (d *Fibonacci) Name() string { return "fibonacci" }

func (d *Fibonacci) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	if len(bars) < d.Lookback {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), d.Lookback)
	}
	highs, lows := market.Highs(bars), market.Lows(bars)
	close := bars[len(bars)-1].Close
	fib := indicator.ComputeFibonacciLevels(highs, lows, d.Lookback)
	if fib.SwingHigh == fib.SwingLow {
		return holdSignal(d.Name(), ts, "no swing range")
	}
	uptrend := bars[len(bars)-1].Close >= (fib.SwingHigh+fib.SwingLow)/2

	near382 := math.Abs(close-fib.Level382)/fib.SwingHigh <= d.Tolerance
	near618 := math.Abs(close-fib.Level618)/fib.SwingHigh <= d.Tolerance

	if !near382 && !near618 {
		return holdSignal(d.Name(), ts, "price not near a retracement level")
	}

	level := fib.Level382
	if near618 {
		level = fib.Level618
	}
	if uptrend {
		return buySignal(ts, 0.55, fmt.Sprintf("price %.4f reverting off Fib level %.4f in uptrend", close, level), d.Name())
	}
	return sellSignal(ts, 0.55, fmt.Sprintf("price %.4f reverting off Fib level %.4f in downtrend", close, level), d.Name())
}
