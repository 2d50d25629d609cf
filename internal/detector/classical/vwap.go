package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// VWAPDeviation emits BUY when price sits significantly below VWAP and
// SELL when significantly above. The catalogue lists this as two names
// (vwap / vwap_volume) sharing one implementation; name is configurable
// so both registry entries can exist with independent parameters.
type VWAPDeviation struct {
	DetectorName    string
	DeviationThresh float64 // fraction, e.g. 0.005 for 0.5%
	Lookback        int
}

func NewVWAPDeviation(name string, deviationThreshold float64, lookback int) *VWAPDeviation {
	if name == "" {
		name = "vwap"
	}
	if deviationThreshold <= 0 {
		deviationThreshold = 0.005
	}
	if lookback <= 0 {
		lookback = 20
	}
	return &VWAPDeviation{DetectorName: name, DeviationThresh: deviationThreshold, Lookback: lookback}
}

func (d *VWAPDeviation) Name() string { return d.DetectorName }

func (d *VWAPDeviation) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	if len(bars) < d.Lookback {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), d.Lookback)
	}
	recent := market.Slice(bars, d.Lookback)
	highs, lows, closes, volumes := market.Highs(recent), market.Lows(recent), market.Closes(recent), market.Volumes(recent)
	vwap := indicator.VWAP(highs, lows, closes, volumes)
	if vwap == 0 {
		return holdSignal(d.Name(), ts, "VWAP undefined (no volume)")
	}
	close := closes[len(closes)-1]
	deviation := (close - vwap) / vwap

	if deviation <= -d.DeviationThresh {
		confidence := 0.4 + minFloat64(-deviation*40, 0.5)
		return buySignal(ts, confidence, fmt.Sprintf("price %.4f is %.2f%% below VWAP %.4f", close, -deviation*100, vwap), d.Name())
	}
	if deviation >= d.DeviationThresh {
		confidence := 0.4 + minFloat64(deviation*40, 0.5)
		return sellSignal(ts, confidence, fmt.Sprintf("price %.4f is %.2f%% above VWAP %.4f", close, deviation*100, vwap), d.Name())
	}
	return holdSignal(d.Name(), ts, "price within VWAP deviation threshold")
}
