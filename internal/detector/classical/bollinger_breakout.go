package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// BollingerBreakout emits BUY when the close prints above the upper band
// and SELL when it prints below the lower band.
type BollingerBreakout struct {
	Period    int
	StdDevMul float64
}

func NewBollingerBreakout(period int, stdDevMul float64) *BollingerBreakout {
	if period <= 0 {
		period = 20
	}
	if stdDevMul <= 0 {
		stdDevMul = 2.0
	}
	return &BollingerBreakout{Period: period, StdDevMul: stdDevMul}
}

func (d *BollingerBreakout) Name() string { return "bollinger_breakout" }

func (d *BollingerBreakout) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	if len(bars) < d.Period {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), d.Period)
	}
	closes := market.Closes(bars)
	bb := indicator.Bollinger(closes, d.Period, d.StdDevMul)
	close := closes[len(closes)-1]

	if bb.Upper == 0 && bb.Lower == 0 {
		return holdSignal(d.Name(), ts, "Bollinger bands undefined")
	}
	if close > bb.Upper {
		confidence := 0.4 + minFloat64((close-bb.Upper)/bb.Middle*10, 0.5)
		return buySignal(ts, confidence, fmt.Sprintf("close %.4f above upper band %.4f", close, bb.Upper), d.Name())
	}
	if close < bb.Lower {
		confidence := 0.4 + minFloat64((bb.Lower-close)/bb.Middle*10, 0.5)
		return sellSignal(ts, confidence, fmt.Sprintf("close %.4f below lower band %.4f", close, bb.Lower), d.Name())
	}
	return holdSignal(d.Name(), ts, "close within bands")
}
