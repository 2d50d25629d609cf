package smc

import (
	"fmt"
	"math"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// LiquiditySweep detects a wick that exceeds an equal-high/equal-low
// level and closes back across it, with a body no larger than BodyRatio
// of the bar's range (a rejection wick, not a trend continuation).
type LiquiditySweep struct {
	BodyRatio float64
}

func NewLiquiditySweep(bodyRatio float64) *LiquiditySweep {
	if bodyRatio <= 0 {
		bodyRatio = 0.5
	}
	return &LiquiditySweep{BodyRatio: bodyRatio}
}

func (d *LiquiditySweep) Name() string { return "smc_liquidity_sweep" }

func (d *LiquiditySweep) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	const need = 10
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}

	rangeHigh, rangeLow := bars[0].High, bars[0].Low
	for _, b := range bars {
		if b.High > rangeHigh {
			rangeHigh = b.High
		}
		if b.Low < rangeLow {
			rangeLow = b.Low
		}
	}
	midpoint := (rangeHigh + rangeLow) / 2
	tolerance := (rangeHigh - rangeLow) * 0.002

	equalHighs, equalLows := []float64{}, []float64{}
	for i := 0; i < len(bars)-1; i++ {
		if math.Abs(bars[i].High-bars[i+1].High) <= tolerance {
			equalHighs = append(equalHighs, bars[i].High)
		}
		if math.Abs(bars[i].Low-bars[i+1].Low) <= tolerance {
			equalLows = append(equalLows, bars[i].Low)
		}
	}
	levels := append(append([]float64{}, equalHighs...), equalLows...)
	if len(levels) == 0 {
		return holdSignal(d.Name(), ts, "no equal-high/equal-low liquidity levels")
	}

	last := bars[len(bars)-1]
	rng := last.High - last.Low
	body := math.Abs(last.Close - last.Open)
	if rng == 0 || body/rng > d.BodyRatio {
		return holdSignal(d.Name(), ts, "current bar body too large for a sweep wick")
	}

	avgRange := meanRange(bars)

	for _, level := range levels {
		if last.High > level && last.Close < level {
			wickSize := last.High - math.Max(last.Open, last.Close)
			isPremium := level > midpoint
			isEqual := contains(equalHighs, level)
			base := 0.45
			if avgRange > 0 {
				base = clampConfidence(0.45+(wickSize/avgRange)*0.25, 0.45, 0.75)
			}
			zoneBoost := 0.0
			if isPremium {
				zoneBoost = 0.1
			}
			equalBoost := 0.0
			if isEqual {
				equalBoost = 0.1
			}
			confidence := clampConfidence(base+zoneBoost+equalBoost, 0.45, 1.0)
			zone := "DISCOUNT"
			if isPremium {
				zone = "PREMIUM"
			}
			reason := fmt.Sprintf("liquidity sweep bearish @ %.4f (%s zone)", level, zone)
			return signal.Clamp(signal.Signal{
				Action: signal.Sell, Confidence: confidence, Reasons: []string{reason},
				Tags:      []string{"SMC:SWEEP", "SMC:SWEEP_BEARISH", "SMC:ZONE_" + zone, d.Name()},
				Meta:      map[string]any{"level": level, "zone": zone},
				Timestamp: ts,
			})
		}
		if last.Low < level && last.Close > level {
			wickSize := math.Min(last.Open, last.Close) - last.Low
			isDiscount := level < midpoint
			isEqual := contains(equalLows, level)
			base := 0.45
			if avgRange > 0 {
				base = clampConfidence(0.45+(wickSize/avgRange)*0.25, 0.45, 0.75)
			}
			zoneBoost := 0.0
			if isDiscount {
				zoneBoost = 0.1
			}
			equalBoost := 0.0
			if isEqual {
				equalBoost = 0.1
			}
			confidence := clampConfidence(base+zoneBoost+equalBoost, 0.45, 1.0)
			zone := "PREMIUM"
			if isDiscount {
				zone = "DISCOUNT"
			}
			reason := fmt.Sprintf("liquidity sweep bullish @ %.4f (%s zone)", level, zone)
			return signal.Clamp(signal.Signal{
				Action: signal.Buy, Confidence: confidence, Reasons: []string{reason},
				Tags:      []string{"SMC:SWEEP", "SMC:SWEEP_BULLISH", "SMC:ZONE_" + zone, d.Name()},
				Meta:      map[string]any{"level": level, "zone": zone},
				Timestamp: ts,
			})
		}
	}
	return holdSignal(d.Name(), ts, "no sweep on current bar")
}

func contains(v []float64, x float64) bool {
	for _, e := range v {
		if e == x {
			return true
		}
	}
	return false
}
