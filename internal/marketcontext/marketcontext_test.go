package marketcontext

import (
	"testing"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
)

func buildTrendingBars(n int, drift float64) []market.Bar {
	bars := make([]market.Bar, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price += drift
		bars[i] = market.Bar{
			Timestamp: int64(i + 1),
			Open:      price, High: price + 1, Low: price - 1, Close: price,
			Volume: 100, Closed: true,
		}
	}
	return bars
}

func TestAnalyzeInsufficientData(t *testing.T) {
	a := New(60)
	_, ok := a.Analyze(buildTrendingBars(10, 1))
	if ok {
		t.Error("expected analysis to fail with fewer than 50 bars")
	}
}

func TestAnalyzeStrongUptrendIsBullish(t *testing.T) {
	a := New(60)
	ctx, ok := a.Analyze(buildTrendingBars(100, 2))
	if !ok {
		t.Fatal("expected successful analysis")
	}
	if ctx.Regime != Bullish {
		t.Errorf("strong sustained uptrend should classify BULLISH, got %v", ctx.Regime)
	}
}

func TestAnalyzeFlatIsCorrection(t *testing.T) {
	a := New(60)
	ctx, ok := a.Analyze(buildTrendingBars(100, 0))
	if !ok {
		t.Fatal("expected successful analysis")
	}
	if ctx.Regime != Correction {
		t.Errorf("flat price action should classify CORRECTION, got %v", ctx.Regime)
	}
}

func TestBlendMultipliersRespectsConfidence(t *testing.T) {
	zero := blendMultipliers(Bullish, 0)
	for name, m := range zero {
		if m != 1.0 {
			t.Errorf("zero confidence should blend every multiplier to 1.0, got %s=%v", name, m)
		}
	}
	full := blendMultipliers(Bullish, 1)
	if full["ema_crossover"] != regimeTable[Bullish]["ema_crossover"] {
		t.Errorf("full confidence should use the raw multiplier unchanged")
	}
}

func TestApplyWeightsLeavesUnlistedDetectorsAtBase(t *testing.T) {
	reg := detector.NewRegistry()
	_ = reg.Register("unlisted_detector", nil, 1.0)
	ctx := Context{Multipliers: map[string]float64{}}
	ctx.ApplyWeights(reg, map[string]float64{"unlisted_detector": 1.0})
	e, _ := reg.Get("unlisted_detector")
	if e.Weight != 1.0 {
		t.Errorf("detector absent from the regime table should keep its base weight, got %v", e.Weight)
	}
}

func TestToDetectorRegimeMapping(t *testing.T) {
	cases := map[Regime]detector.RegimeLabel{
		Bullish:    detector.RegimeBullish,
		Bearish:    detector.RegimeBearish,
		Correction: detector.RegimeCorrection,
	}
	for regime, want := range cases {
		ctx := Context{Regime: regime}
		if got := ctx.ToDetectorRegime(); got != want {
			t.Errorf("%v: got %v, want %v", regime, got, want)
		}
	}
}
