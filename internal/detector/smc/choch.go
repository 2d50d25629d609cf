package smc

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// CHoCH detects a change-of-character: a reversal that invalidates the
// most recent break-of-structure found in the window. It requires a
// prior BOS to exist; without one it HOLDs.
type CHoCH struct {
	MinDisplacement float64 // same default as BOS, used to locate the prior BOS
}

func NewCHoCH(minDisplacement float64) *CHoCH {
	if minDisplacement <= 0 {
		minDisplacement = 0.001
	}
	return &CHoCH{MinDisplacement: minDisplacement}
}

func (d *CHoCH) Name() string { return "smc_choch" }

func (d *CHoCH) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	const need = 15
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}

	event, found := findLastBOS(bars, d.MinDisplacement)
	if !found {
		return holdSignal(d.Name(), ts, "no prior break of structure")
	}

	recentCandles := len(bars) - event.Index - 1
	if recentCandles < 2 {
		return holdSignal(d.Name(), ts, "awaiting confirmation after BOS")
	}
	recent := bars[event.Index:]
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	currentClose := bars[len(bars)-1].Close
	confidence := clampConfidence(0.65+float64(recentCandles)*0.05, 0.65, 1.0)

	if event.Bullish {
		priorLows := barLows(recent)
		if len(priorLows) >= 2 && currentClose < minOf(priorLows[:len(priorLows)-1]) {
			reason := fmt.Sprintf("CHoCH bearish: prior bullish BOS @ %.4f invalidated after %d candles", event.SwingLevel, recentCandles)
			return signal.Clamp(signal.Signal{
				Action: signal.Sell, Confidence: confidence, Reasons: []string{reason},
				Tags:      []string{"SMC:CHOCH", "SMC:CHOCH_BEARISH", d.Name()},
				Meta:      map[string]any{"invalidated_bos": event.SwingLevel},
				Timestamp: ts,
			})
		}
	} else {
		priorHighs := barHighs(recent)
		if len(priorHighs) >= 2 && currentClose > maxOf(priorHighs[:len(priorHighs)-1]) {
			reason := fmt.Sprintf("CHoCH bullish: prior bearish BOS @ %.4f invalidated after %d candles", event.SwingLevel, recentCandles)
			return signal.Clamp(signal.Signal{
				Action: signal.Buy, Confidence: confidence, Reasons: []string{reason},
				Tags:      []string{"SMC:CHOCH", "SMC:CHOCH_BULLISH", d.Name()},
				Meta:      map[string]any{"invalidated_bos": event.SwingLevel},
				Timestamp: ts,
			})
		}
	}
	return holdSignal(d.Name(), ts, "no CHoCH detected")
}

func barLows(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

func barHighs(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

func minOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
