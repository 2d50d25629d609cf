package classical

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// MomentumCombo emits a signal only when a MACD crossover agrees with
// which half-plane (above/below 50) RSI currently occupies: a confluence
// of two independent momentum reads rather than either alone.
type MomentumCombo struct {
	RSIPeriod  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
}

func NewMomentumCombo(rsiPeriod, macdFast, macdSlow, macdSignal int) *MomentumCombo {
	if rsiPeriod <= 0 {
		rsiPeriod = 14
	}
	if macdFast <= 0 {
		macdFast = 12
	}
	if macdSlow <= 0 {
		macdSlow = 26
	}
	if macdSignal <= 0 {
		macdSignal = 9
	}
	return &MomentumCombo{RSIPeriod: rsiPeriod, MACDFast: macdFast, MACDSlow: macdSlow, MACDSignal: macdSignal}
}

func (d *MomentumCombo) Name() string { return "momentum_combo" }

func (d *MomentumCombo) Evaluate(window *market.Window, _ detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)
	need := d.MACDSlow + d.MACDSignal + 2
	if len(bars) < need {
		return detector.NotEnoughDataSignal(d.Name(), ts, len(bars), need)
	}
	closes := market.Closes(bars)
	rsi := indicator.RSI(closes, d.RSIPeriod)
	now := indicator.MACDValue(closes, d.MACDFast, d.MACDSlow, d.MACDSignal)
	prev := indicator.MACDPrevValue(closes, d.MACDFast, d.MACDSlow, d.MACDSignal)

	crossedUp := prev.Histogram <= 0 && now.Histogram > 0
	crossedDown := prev.Histogram >= 0 && now.Histogram < 0

	if crossedUp && rsi > 50 {
		confidence := 0.4 + minFloat64((rsi-50)/100, 0.5)
		return buySignal(ts, confidence, fmt.Sprintf("MACD crossed up with RSI %.1f above 50", rsi), d.Name())
	}
	if crossedDown && rsi < 50 {
		confidence := 0.4 + minFloat64((50-rsi)/100, 0.5)
		return sellSignal(ts, confidence, fmt.Sprintf("MACD crossed down with RSI %.1f below 50", rsi), d.Name())
	}
	return holdSignal(d.Name(), ts, "MACD and RSI momentum disagree")
}
