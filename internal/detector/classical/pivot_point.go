package classical

import (
	"fmt"
	"math"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// PivotPoint emits a bounce/rejection signal when the close sits within
// Tolerance of a classic pivot support or resistance level.
type PivotPoint struct {
	Tolerance float64 // fraction, e.g. 0.003 for 0.3%
}

func NewPivotPoint(tolerance float64) *PivotPoint {
	if tolerance <= 0 {
		tolerance = 0.003
	}
	return &PivotPoint{Tolerance: tolerance}
}

func (d *PivotPoint) Name() string { return "pivot_point" }

func (d *PivotPoint) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	const need = 2
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}
	prior := bars[len(bars)-2]
	current := bars[len(bars)-1]
	p := indicator.ComputeClassicPivots(prior.High, prior.Low, prior.Close)

	levels := []struct {
		name  string
		value float64
		buy   bool
	}{
		{"S1", p.S1, true},
		{"S2", p.S2, true},
		{"R1", p.R1, false},
		{"R2", p.R2, false},
	}
	for _, lvl := range levels {
		if math.Abs(current.Close-lvl.value)/p.Pivot > d.Tolerance {
			continue
		}
		confidence := 0.4 + (d.Tolerance-math.Abs(current.Close-lvl.value)/p.Pivot)/d.Tolerance*0.3
		if lvl.buy {
			return buySignal(ts, confidence, fmt.Sprintf("close %.4f bouncing off pivot support %s (%.4f)", current.Close, lvl.name, lvl.value), d.Name())
		}
		return sellSignal(ts, confidence, fmt.Sprintf("close %.4f rejecting pivot resistance %s (%.4f)", current.Close, lvl.name, lvl.value), d.Name())
	}
	return holdSignal(d.Name(), ts, "close not near a pivot level")
}
