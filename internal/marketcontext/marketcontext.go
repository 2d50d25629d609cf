// Package marketcontext classifies a longer window as BULLISH, BEARISH,
// or CORRECTION and produces per-detector weight multipliers for the
// ConfluenceEngine. Grounded on the original Python
// MarketContextAnalyzer (market_manus/analysis/market_context_analyzer.py)
// for the exact regime thresholds and per-regime adjustment tables, and
// on the teacher repo's internal/analysis.VolumeAnalyzer for the Go
// analyzer/struct shape.
package marketcontext

import (
	"math"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/indicator"
	"github.com/conflux-quant/decision-engine/internal/market"
)

// Regime is the coarse market classification.
type Regime string

const (
	Bullish    Regime = "BULLISH"
	Bearish    Regime = "BEARISH"
	Correction Regime = "CORRECTION"
)

// Context is the output of Analyze: a regime classification plus the
// multipliers to apply to named detectors' base weights.
type Context struct {
	Regime         Regime
	Confidence     float64
	TrendStrength  float64 // ADX
	Volatility     float64 // ATR, normalized to percent of price
	PriceChangePct float64
	Multipliers    map[string]float64
}

// regimeTable holds the raw (pre-confidence-blend) multiplier for each
// named detector under one regime. Names match the detector catalogue in
// §4.7, plus the historical Python strategy names ("bos"/"choch"/
// "order_blocks"/"fvg") aliased to their smc_* registry equivalents.
var regimeTable = map[Regime]map[string]float64{
	Bullish: {
		"ema_crossover":      1.3,
		"macd":               1.2,
		"adx":                1.3,
		"smc_bos":            1.2,
		"rsi_mean_reversion": 0.8,
		"bollinger_breakout": 1.1,
		"stochastic":         0.9,
		"smc_choch":          0.7,
	},
	Bearish: {
		"rsi_mean_reversion": 1.2,
		"smc_choch":          1.3,
		"macd":               1.1,
		"ema_crossover":      0.8,
		"smc_bos":            0.7,
		"bollinger_breakout": 1.0,
		"stochastic":         1.1,
	},
	Correction: {
		"rsi_mean_reversion": 1.4,
		"bollinger_breakout": 1.3,
		"stochastic":         1.2,
		"smc_order_blocks":   1.2,
		"smc_fvg":            1.1,
		"ema_crossover":      0.7,
		"adx":                0.6,
		"smc_bos":            0.5,
	},
}

const (
	adxStrongThreshold  = 25
	maSlopeThreshold    = 0.001
	defaultLookbackDays = 60
)

// Analyzer classifies market regime from a window of bars.
type Analyzer struct {
	LookbackDays int
}

func New(lookbackDays int) *Analyzer {
	if lookbackDays <= 0 {
		lookbackDays = defaultLookbackDays
	}
	return &Analyzer{LookbackDays: lookbackDays}
}

// Analyze classifies bars (expected to span roughly LookbackDays) into a
// Context. Returns the zero Context and false if there are fewer than 50
// bars.
func (a *Analyzer) Analyze(bars []market.Bar) (Context, bool) {
	if len(bars) < 50 {
		return Context{}, false
	}
	closes := market.Closes(bars)
	highs := market.Highs(bars)
	lows := market.Lows(bars)

	maSlope := normalizedMASlope(closes, 50, 20)
	adxResult := indicator.ADX(highs, lows, closes, 14)
	adx := adxResult.ADX
	atrPct := normalizedATRPercent(highs, lows, closes, 14)
	priceChangePct := (closes[len(closes)-1]/closes[0] - 1) * 100

	regime, confidence := determineRegime(maSlope, adx, priceChangePct)
	multipliers := blendMultipliers(regime, confidence)

	return Context{
		Regime:         regime,
		Confidence:     confidence,
		TrendStrength:  adx,
		Volatility:     atrPct,
		PriceChangePct: priceChangePct,
		Multipliers:    multipliers,
	}, true
}

func determineRegime(maSlope, adx, priceChangePct float64) (Regime, float64) {
	if adx > adxStrongThreshold {
		if maSlope > maSlopeThreshold && priceChangePct > 5 {
			return Bullish, math.Min((adx/50)*(math.Abs(maSlope)/0.01), 1.0)
		}
		if maSlope < -maSlopeThreshold && priceChangePct < -5 {
			return Bearish, math.Min((adx/50)*(math.Abs(maSlope)/0.01), 1.0)
		}
	}

	if math.Abs(priceChangePct) < 3 || adx < 20 {
		return Correction, 1.0 - adx/30
	}

	if maSlope > 0 && priceChangePct > 0 {
		return Bullish, 0.5 + (adx/50)*0.3
	}
	if maSlope < 0 && priceChangePct < 0 {
		return Bearish, 0.5 + (adx/50)*0.3
	}
	return Correction, 0.3
}

// blendMultipliers applies §4.6's confidence blend to the regime's raw
// table: m>1 blends toward 1+(m-1)*confidence, m<1 blends toward
// 1-(1-m)*confidence.
func blendMultipliers(regime Regime, confidence float64) map[string]float64 {
	raw := regimeTable[regime]
	out := make(map[string]float64, len(raw))
	for name, m := range raw {
		if m > 1 {
			out[name] = 1 + (m-1)*confidence
		} else {
			out[name] = 1 - (1-m)*confidence
		}
	}
	return out
}

// ApplyWeights updates reg in place, multiplying each detector's base
// weight by its blended multiplier (1.0, i.e. no change, for any
// detector not named in the regime's table).
func (c Context) ApplyWeights(reg *detector.Registry, baseWeights map[string]float64) {
	for _, name := range reg.Names() {
		base, ok := baseWeights[name]
		if !ok {
			continue
		}
		mult := c.Multipliers[name]
		if mult == 0 {
			mult = 1.0
		}
		reg.SetWeight(name, base*mult)
	}
}

// ToDetectorRegime maps the analyzer's Regime to the detector package's
// RegimeLabel, passed through Context so detectors can consult it.
func (c Context) ToDetectorRegime() detector.RegimeLabel {
	switch c.Regime {
	case Bullish:
		return detector.RegimeBullish
	case Bearish:
		return detector.RegimeBearish
	case Correction:
		return detector.RegimeCorrection
	default:
		return detector.RegimeUnknown
	}
}

func normalizedMASlope(closes []float64, maPeriod, slopeLookback int) float64 {
	ma := indicator.SMASeries(closes, maPeriod)
	if len(ma) < 2 {
		return 0
	}
	recent := ma
	if len(recent) > slopeLookback {
		recent = recent[len(recent)-slopeLookback:]
	}
	slope := linearRegressionSlope(recent)
	avgPrice := mean(closes)
	if avgPrice == 0 {
		return 0
	}
	return slope / avgPrice
}

func linearRegressionSlope(y []float64) float64 {
	n := float64(len(y))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func normalizedATRPercent(highs, lows, closes []float64, period int) float64 {
	atr := indicator.ATR(highs, lows, closes, period)
	price := closes[len(closes)-1]
	if price == 0 {
		return 0
	}
	return atr / price * 100
}
