package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// MARibbon emits a directional signal when a ribbon of SMAs (ordered
// fastest first) is fully ordered with every consecutive spread at least
// AlignmentThreshold: bullish when each faster SMA sits above the next
// slower one, bearish when the order is reversed.
type MARibbon struct {
	Periods            []int
	AlignmentThreshold float64 // fraction, e.g. 0.002 for 0.2%
}

func NewMARibbon(periods []int, alignmentThreshold float64) *MARibbon {
	if len(periods) == 0 {
		periods = []int{5, 8, 13}
	}
	if alignmentThreshold <= 0 {
		alignmentThreshold = 0.002
	}
	return &MARibbon{Periods: periods, AlignmentThreshold: alignmentThreshold}
}

func (d *MARibbon) Name() string { return "ma_ribbon" }

func (d *MARibbon) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	maxPeriod := 0
	for _, p := range d.Periods {
		if p > maxPeriod {
			maxPeriod = p
		}
	}
	if len(bars) < maxPeriod {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), maxPeriod)
	}
	closes := market.Closes(bars)
	smas := make([]float64, len(d.Periods))
	for i, p := range d.Periods {
		smas[i] = indicator.SMA(closes, p)
	}

	bullishMinSpread, bearishMinSpread := smaSpread(smas, true), smaSpread(smas, false)

	if bullishMinSpread >= d.AlignmentThreshold {
		confidence := 0.4 + minFloat64(bullishMinSpread*50, 0.5)
		return buySignal(ts, confidence, fmt.Sprintf("MA ribbon fully bullish, min spread %.4f", bullishMinSpread), d.Name())
	}
	if bearishMinSpread >= d.AlignmentThreshold {
		confidence := 0.4 + minFloat64(bearishMinSpread*50, 0.5)
		return sellSignal(ts, confidence, fmt.Sprintf("MA ribbon fully bearish, min spread %.4f", bearishMinSpread), d.Name())
	}
	return holdSignal(d.Name(), ts, "MA ribbon not aligned")
}

// smaSpread returns the minimum normalized spread between consecutive
// SMAs if they are fully ordered in the requested direction (fast-above-
// slow for bullish, fast-below-slow for bearish), or -1 if not ordered.
func smaSpread(smas []float64, bullish bool) float64 {
	min := 1e18
	for i := 1; i < len(smas); i++ {
		faster, slower := smas[i-1], smas[i]
		var spread float64
		if bullish {
			spread = (faster - slower) / slower
		} else {
			spread = (slower - faster) / slower
		}
		if spread <= 0 {
			return -1
		}
		if spread < min {
			min = spread
		}
	}
	return min
}
