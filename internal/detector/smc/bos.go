package smc

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// BOS detects a break-of-structure on the most recent bar: price closing
// beyond the swing high/low of the preceding 10 bars by at least
// MinDisplacement, confirmed by a volume spike at VolumeMultiplier.
type BOS struct {
	MinDisplacement  float64 // fraction of swing range, e.g. 0.001 for 0.1%
	VolumeMultiplier float64
}

func NewBOS(minDisplacement, volumeMultiplier float64) *BOS {
	if minDisplacement <= 0 {
		minDisplacement = 0.001
	}
	if volumeMultiplier <= 0 {
		volumeMultiplier = 1.2
	}
	return &BOS{MinDisplacement: minDisplacement, VolumeMultiplier: volumeMultiplier}
}

func (d *BOS) Name() string { return "smc_bos" }

func (d *BOS) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	const need = 11
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}

	event, found := findLastBOS(bars, d.MinDisplacement)
	if !found || event.Index != len(bars)-1 {
		return holdSignal(d.Name(), ts, "no break of structure on current bar")
	}

	volumeWindow := bars
	if len(bars) > 20 {
		volumeWindow = bars[len(bars)-20:]
	}
	avgVolume := averageVolume(volumeWindow)
	currentVolume := bars[len(bars)-1].Volume
	volumeFactor := 1.0
	if avgVolume > 0 {
		volumeFactor = minFloat(currentVolume/avgVolume, 2.0)
	}

	base := clampConfidence(0.4+event.Displacement*5, 0.4, 0.85)
	volumeBoost := 0.0
	if volumeFactor >= d.VolumeMultiplier {
		volumeBoost = clampConfidence((volumeFactor-1.0)*0.15, 0, 0.15)
	}
	confidence := clampConfidence(base+volumeBoost, 0.4, 1.0)

	meta := map[string]any{
		"swing_level":   event.SwingLevel,
		"displacement":  event.Displacement,
		"volume_factor": volumeFactor,
	}
	reason := fmt.Sprintf("BOS broke swing level %.4f, displacement %.2f%%, volume %.1fx avg", event.SwingLevel, event.Displacement*100, volumeFactor)

	if event.Bullish {
		return signal.Clamp(signal.Signal{
			Action: signal.Buy, Confidence: confidence, Reasons: []string{reason},
			Tags: []string{"SMC:BOS", "SMC:BOS_BULL", d.Name()}, Meta: meta, Timestamp: ts,
		})
	}
	return signal.Clamp(signal.Signal{
		Action: signal.Sell, Confidence: confidence, Reasons: []string{reason},
		Tags: []string{"SMC:BOS", "SMC:BOS_BEAR", d.Name()}, Meta: meta, Timestamp: ts,
	})
}

func averageVolume(bars []market.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Volume
	}
	return sum / float64(len(bars))
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
