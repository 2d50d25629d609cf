package smc

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// FVG detects a fair-value-gap over the most recent candle triplet: a
// three-candle gap where candle 1's high sits below candle 3's low
// (bullish) or candle 1's low sits above candle 3's high (bearish).
// Grounded directly on the teacher's internal/analysis.FVGDetector,
// generalized from a full-history scan to a single most-recent-triplet
// check matching the Detector contract's per-call evaluation.
type FVG struct {
	MinGapPercent float64 // percent, e.g. 0.1 for 0.1%
}

func NewFVG(minGapPercent float64) *FVG {
	if minGapPercent <= 0 {
		minGapPercent = 0.1
	}
	return &FVG{MinGapPercent: minGapPercent}
}

func (d *FVG) Name() string { return "smc_fvg" }

func (d *FVG) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	const need = 3
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}
	n := len(bars)
	c1, c3 := bars[n-3], bars[n-1]

	if c1.High < c3.Low {
		gapPercent := (c3.Low - c1.High) / c1.High * 100
		if gapPercent >= d.MinGapPercent {
			confidence := clampConfidence(0.4+gapPercent/2, 0.4, 0.9)
			reason := fmt.Sprintf("bullish FVG %.4f-%.4f (%.2f%% gap)", c1.High, c3.Low, gapPercent)
			return signal.Clamp(signal.Signal{
				Action: signal.Buy, Confidence: confidence, Reasons: []string{reason},
				Tags:      []string{"SMC:FVG", "SMC:FVG_BULLISH", d.Name()},
				Meta:      map[string]any{"zone_low": c1.High, "zone_high": c3.Low},
				Timestamp: ts,
			})
		}
	}
	if c1.Low > c3.High {
		gapPercent := (c1.Low - c3.High) / c3.High * 100
		if gapPercent >= d.MinGapPercent {
			confidence := clampConfidence(0.4+gapPercent/2, 0.4, 0.9)
			reason := fmt.Sprintf("bearish FVG %.4f-%.4f (%.2f%% gap)", c3.High, c1.Low, gapPercent)
			return signal.Clamp(signal.Signal{
				Action: signal.Sell, Confidence: confidence, Reasons: []string{reason},
				Tags:      []string{"SMC:FVG", "SMC:FVG_BEARISH", d.Name()},
				Meta:      map[string]any{"zone_low": c3.High, "zone_high": c1.Low},
				Timestamp: ts,
			})
		}
	}
	return holdSignal(d.Name(), ts, "no fair value gap")
}
