package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// CPR emits a directional signal when the close breaks out of the prior
// bar's central pivot range by more than Sensitivity.
type CPR struct {
	Sensitivity float64 // fraction, e.g. 0.002 for 0.2%
}

func NewCPR(sensitivity float64) *CPR {
	if sensitivity <= 0 {
		sensitivity = 0.002
	}
	return &CPR{Sensitivity: sensitivity}
}

func (d *CPR) Name() string { return "cpr" }

func (d *CPR) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	const need = 2
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}
	prior := bars[len(bars)-2]
	current := bars[len(bars)-1]
	cpr := indicator.ComputeCPR(prior.High, prior.Low, prior.Close)

	upperBreak := cpr.Top * (1 + d.Sensitivity)
	lowerBreak := cpr.Bottom * (1 - d.Sensitivity)

	if current.Close > upperBreak {
		confidence := 0.4 + minFloat64((current.Close-upperBreak)/cpr.Pivot*20, 0.5)
		return buySignal(ts, confidence, fmt.Sprintf("close %.4f broke above CPR top %.4f", current.Close, cpr.Top), d.Name())
	}
	if current.Close < lowerBreak {
		confidence := 0.4 + minFloat64((lowerBreak-current.Close)/cpr.Pivot*20, 0.5)
		return sellSignal(ts, confidence, fmt.Sprintf("close %.4f broke below CPR bottom %.4f", current.Close, cpr.Bottom), d.Name())
	}
	return holdSignal(d.Name(), ts, "close within central pivot range")
}
