package confluence

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
)

// RegimeConfig holds the thresholds the regime gate tests the current
// window against before any detector runs.
type RegimeConfig struct {
	ADXPeriod  int
	ADXMin     float64
	ADXMax     float64
	ATRPeriod  int
	ATRMin     float64
	BBPeriod   int
	BBStdDev   float64
	BBWidthMin float64
}

// DefaultRegimeConfig returns the catalogue defaults from §4.3.
func DefaultRegimeConfig() RegimeConfig {
	return RegimeConfig{
		ADXPeriod:  14,
		ADXMin:     15,
		ADXMax:     100,
		ATRPeriod:  14,
		ATRMin:     0.0001,
		BBPeriod:   20,
		BBStdDev:   2.0,
		BBWidthMin: 0.01,
	}
}

// RegimeSnapshot is the indicator readout behind a gate decision,
// recorded on every Signal the engine emits (§4.3 step 6's meta.regime_snapshot).
type RegimeSnapshot struct {
	ADX      float64
	ATR      float64
	BBWidth  float64
	Warnings []string
}

// regimeGate evaluates bars against cfg, returning the snapshot and a
// rejection reason (empty string if the gate passes).
func regimeGate(bars []market.Bar, cfg RegimeConfig) (RegimeSnapshot, string) {
	highs, lows, closes := market.Highs(bars), market.Lows(bars), market.Closes(bars)

	adxResult := indicator.ADX(highs, lows, closes, cfg.ADXPeriod)
	atr := indicator.ATR(highs, lows, closes, cfg.ATRPeriod)
	bbWidth := indicator.BollingerWidthRatio(closes, cfg.BBPeriod, cfg.BBStdDev)

	snapshot := RegimeSnapshot{ADX: adxResult.ADX, ATR: atr, BBWidth: bbWidth}

	if adxResult.ADX > cfg.ADXMax {
		snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf("ADX %.1f exceeds max %.1f", adxResult.ADX, cfg.ADXMax))
	}

	if adxResult.ADX < cfg.ADXMin {
		return snapshot, fmt.Sprintf("ADX %.1f below minimum %.1f: trend too weak", adxResult.ADX, cfg.ADXMin)
	}
	if atr < cfg.ATRMin {
		return snapshot, fmt.Sprintf("ATR %.6f below minimum %.6f: volatility insufficient", atr, cfg.ATRMin)
	}
	if bbWidth < cfg.BBWidthMin {
		return snapshot, fmt.Sprintf("Bollinger width %.4f below minimum %.4f: market flat", bbWidth, cfg.BBWidthMin)
	}
	return snapshot, ""
}
