package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// ParabolicSAR emits BUY/SELL when price crosses to the opposite side of
// the SAR dot between the previous and current bar.
type ParabolicSAR struct {
	AfStart float64
	AfStep  float64
	AfMax   float64
}

func NewParabolicSAR(afStart, afStep, afMax float64) *ParabolicSAR {
	if afStart <= 0 {
		afStart = 0.02
	}
	if afStep <= 0 {
		afStep = 0.02
	}
	if afMax <= 0 {
		afMax = 0.2
	}
	return &ParabolicSAR{AfStart: afStart, AfStep: afStep, AfMax: afMax}
}

func (d *ParabolicSAR) Name() string { return "parabolic_sar" }

func (d *ParabolicSAR) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	const need = 3
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}
	highs, lows := market.Highs(bars), market.Lows(bars)
	sar := indicator.PSARSeries(highs, lows, d.AfStart, d.AfStep, d.AfMax)
	n := len(sar)
	closes := market.Closes(bars)

	wasAbove := closes[n-2] > sar[n-2]
	isAbove := closes[n-1] > sar[n-1]

	if !wasAbove && isAbove {
		return buySignal(ts, 0.5, fmt.Sprintf("price %.4f crossed above SAR %.4f", closes[n-1], sar[n-1]), d.Name())
	}
	if wasAbove && !isAbove {
		return sellSignal(ts, 0.5, fmt.Sprintf("price %.4f crossed below SAR %.4f", closes[n-1], sar[n-1]), d.Name())
	}
	return holdSignal(d.Name(), ts, "no SAR side change")
}
