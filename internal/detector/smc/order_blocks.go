package smc

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// orderBlock is a candidate accumulation/distribution candle that
// preceded a displacement, with its mitigation status recomputed each
// call from the bars that follow it.
type orderBlock struct {
	Index     int
	Bullish   bool
	ZoneLow   float64
	ZoneHigh  float64
	Strength  float64
	CausedBOS bool
	Engulfing bool
	Mitigated bool
}

// OrderBlocks detects the last unmitigated (FRESH) order block: the
// opposite-colored candle immediately preceding a break past the running
// extreme, status tracked as FRESH until a later bar wicks back into its
// zone.
type OrderBlocks struct {
	MinRange float64
}

func NewOrderBlocks(minRange float64) *OrderBlocks {
	return &OrderBlocks{MinRange: minRange}
}

func (d *OrderBlocks) Name() string { return "smc_order_blocks" }

func (d *OrderBlocks) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	const need = 5
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}

	blocks := findOrderBlocks(bars, d.MinRange)
	var fresh []orderBlock
	for _, ob := range blocks {
		if !ob.Mitigated {
			fresh = append(fresh, ob)
		}
	}
	if len(fresh) == 0 {
		return holdSignal(d.Name(), ts, "no FRESH order block")
	}

	last := fresh[len(fresh)-1]
	avgRange := meanRange(bars)
	base := 0.4
	if avgRange > 0 {
		base = clampConfidence(0.4+(last.Strength/avgRange)*0.2, 0.4, 0.7)
	}
	bosBoost := 0.0
	if last.CausedBOS {
		bosBoost = 0.15
	}
	engulfBoost := 0.0
	if last.Engulfing {
		engulfBoost = 0.05
	}
	confidence := clampConfidence(base+bosBoost+engulfBoost, 0.4, 1.0)

	reason := fmt.Sprintf("order block FRESH @ %.4f-%.4f, caused BOS=%v, engulfing=%v", last.ZoneLow, last.ZoneHigh, last.CausedBOS, last.Engulfing)
	meta := map[string]any{"zone_low": last.ZoneLow, "zone_high": last.ZoneHigh, "caused_bos": last.CausedBOS}

	if last.Bullish {
		return signal.Clamp(signal.Signal{
			Action: signal.Buy, Confidence: confidence, Reasons: []string{reason},
			Tags: []string{"SMC:OB", "SMC:OB_BULLISH", "SMC:OB_FRESH", d.Name()}, Meta: meta, Timestamp: ts,
		})
	}
	return signal.Clamp(signal.Signal{
		Action: signal.Sell, Confidence: confidence, Reasons: []string{reason},
		Tags: []string{"SMC:OB", "SMC:OB_BEARISH", "SMC:OB_FRESH", d.Name()}, Meta: meta, Timestamp: ts,
	})
}

func findOrderBlocks(bars []market.Bar, minRange float64) []orderBlock {
	var obs []orderBlock
	currMax, currMin := bars[0].High, bars[0].Low

	for i := 1; i < len(bars); i++ {
		b, prev := bars[i], bars[i-1]

		if b.Close > currMax {
			causedBOS := b.Close > runningHigh(bars[:i])
			if prev.Close < prev.Open && (prev.High-prev.Low) >= minRange {
				isEngulfing := b.Close > prev.High && b.Open < prev.Low
				obs = append(obs, orderBlock{
					Index: i - 1, Bullish: true,
					ZoneLow: prev.Low, ZoneHigh: prev.High,
					Strength: prev.High - prev.Low, CausedBOS: causedBOS, Engulfing: isEngulfing,
				})
			}
			currMax = b.High
		}
		if b.Close < currMin {
			causedBOS := b.Close < runningLow(bars[:i])
			if prev.Close > prev.Open && (prev.High-prev.Low) >= minRange {
				isEngulfing := b.Close < prev.Low && b.Open > prev.High
				obs = append(obs, orderBlock{
					Index: i - 1, Bullish: false,
					ZoneLow: prev.Low, ZoneHigh: prev.High,
					Strength: prev.High - prev.Low, CausedBOS: causedBOS, Engulfing: isEngulfing,
				})
			}
			currMin = b.Low
		}
	}

	for i := range obs {
		for j := obs[i].Index + 1; j < len(bars); j++ {
			if bars[j].Low <= obs[i].ZoneHigh && bars[j].High >= obs[i].ZoneLow {
				obs[i].Mitigated = true
				break
			}
		}
	}
	return obs
}

func runningHigh(bars []market.Bar) float64 {
	h := bars[0].High
	for _, b := range bars {
		if b.High > h {
			h = b.High
		}
	}
	return h
}

func runningLow(bars []market.Bar) float64 {
	l := bars[0].Low
	for _, b := range bars {
		if b.Low < l {
			l = b.Low
		}
	}
	return l
}
