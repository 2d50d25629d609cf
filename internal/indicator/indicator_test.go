package indicator

import "testing"

func TestSMAAverages(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	if got := SMA(series, 5); got != 3 {
		t.Errorf("SMA(5) = %v, want 3", got)
	}
	if got := SMA(series, 2); got != 4.5 {
		t.Errorf("SMA(2) = %v, want 4.5", got)
	}
	if got := SMA(series, 10); got != 0 {
		t.Errorf("SMA with insufficient data should be 0, got %v", got)
	}
}

func TestEMASeedsWithSMA(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5, 6, 7}
	s := EMASeries(series, 3)
	if len(s) == 0 {
		t.Fatal("expected EMA series")
	}
	if s[0] != SMA(series[:3], 3) {
		t.Errorf("EMA seed = %v, want SMA seed %v", s[0], SMA(series[:3], 3))
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	if got := RSI(closes, 14); got != 100 {
		t.Errorf("RSI of all gains = %v, want 100", got)
	}
}

func TestRSIFlatIsNeutral(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	if got := RSI(closes, 14); got != 50 {
		t.Errorf("RSI of flat series = %v, want 50", got)
	}
}

func TestMACDHistogramIsLineMinusSignal(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = float64(100 + i)
	}
	m := MACDValue(closes, 12, 26, 9)
	if got := m.Line - m.Signal; got != m.Histogram {
		t.Errorf("histogram = %v, want line-signal = %v", m.Histogram, got)
	}
}

func TestBollingerBandsBracketMiddle(t *testing.T) {
	closes := []float64{10, 11, 9, 12, 8, 13, 7, 14, 6, 15, 20}
	bb := Bollinger(closes, 10, 2)
	if bb.Upper <= bb.Middle || bb.Lower >= bb.Middle {
		t.Errorf("bands should bracket middle: %+v", bb)
	}
}

func TestBollingerWidthRatioZeroOnFlat(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	if got := BollingerWidthRatio(closes, 20, 2); got != 0 {
		t.Errorf("flat series width ratio = %v, want 0", got)
	}
}

func TestATRNonNegative(t *testing.T) {
	highs := []float64{10, 11, 12, 13, 14, 15}
	lows := []float64{9, 9.5, 10, 11, 12, 13}
	closes := []float64{9.5, 10.5, 11, 12, 13, 14}
	if got := ATR(highs, lows, closes, 3); got < 0 {
		t.Errorf("ATR should be non-negative, got %v", got)
	}
}

func TestSimpleRangeATRFallsBackToLastBar(t *testing.T) {
	highs := []float64{10, 12}
	lows := []float64{9, 8}
	if got := SimpleRangeATR(highs, lows, 14); got != 4 {
		t.Errorf("SimpleRangeATR with short history = %v, want 4", got)
	}
}

func TestADXInsufficientDataIsZero(t *testing.T) {
	highs := []float64{10, 11, 12}
	lows := []float64{9, 10, 11}
	closes := []float64{9.5, 10.5, 11.5}
	r := ADX(highs, lows, closes, 14)
	if r.ADX != 0 {
		t.Errorf("ADX with insufficient data should be 0, got %v", r.ADX)
	}
}

func TestStochasticBoundedRange(t *testing.T) {
	highs := []float64{10, 11, 12, 13, 14, 15}
	lows := []float64{8, 9, 10, 11, 12, 13}
	closes := []float64{9, 10, 11, 12, 13, 14}
	s := StochasticValue(highs, lows, closes, 5, 3)
	if s.K < 0 || s.K > 100 {
		t.Errorf("%%K out of bounds: %v", s.K)
	}
}

func TestWilliamsRBoundedRange(t *testing.T) {
	highs := []float64{10, 11, 12, 13, 14}
	lows := []float64{8, 9, 10, 11, 12}
	closes := []float64{9, 10, 11, 12, 13}
	r := WilliamsR(highs, lows, closes, 5)
	if r < -100 || r > 0 {
		t.Errorf("Williams %%R out of bounds: %v", r)
	}
}

func TestPSARFirstBarUsesLow(t *testing.T) {
	highs := []float64{10, 11, 12}
	lows := []float64{9, 10, 11}
	sar := PSARSeries(highs, lows, 0.02, 0.02, 0.2)
	if sar[0] != lows[0] {
		t.Errorf("PSAR first bar = %v, want low %v", sar[0], lows[0])
	}
}

func TestVWAPWeightsByVolume(t *testing.T) {
	highs := []float64{10, 10}
	lows := []float64{10, 10}
	closes := []float64{10, 20}
	volumes := []float64{100, 0}
	if got := VWAP(highs, lows, closes, volumes); got != 10 {
		t.Errorf("VWAP with zero weight on the second bar = %v, want 10", got)
	}
}

func TestComputeClassicPivotsSymmetry(t *testing.T) {
	p := ComputeClassicPivots(110, 90, 100)
	if p.Pivot != 100 {
		t.Errorf("pivot = %v, want 100", p.Pivot)
	}
	if p.R1-p.Pivot != p.Pivot-p.S1 {
		t.Errorf("R1/S1 should be symmetric around pivot: %+v", p)
	}
}

func TestComputeCPRTopAboveBottom(t *testing.T) {
	cpr := ComputeCPR(110, 90, 105)
	if cpr.Top < cpr.Bottom {
		t.Errorf("CPR top should not be below bottom: %+v", cpr)
	}
}

func TestComputeFibonacciLevelsOrdering(t *testing.T) {
	highs := []float64{100, 105, 110, 108, 112}
	lows := []float64{95, 98, 100, 99, 101}
	f := ComputeFibonacciLevels(highs, lows, 5)
	if f.SwingHigh != 112 || f.SwingLow != 95 {
		t.Errorf("swing high/low = %v/%v, want 112/95", f.SwingHigh, f.SwingLow)
	}
	if !(f.Level236 > f.Level382 && f.Level382 > f.Level500 && f.Level500 > f.Level618 && f.Level618 > f.Level786) {
		t.Errorf("fibonacci levels should descend from 23.6%% to 78.6%%: %+v", f)
	}
}

func TestComputeFibonacciLevelsInsufficientData(t *testing.T) {
	f := ComputeFibonacciLevels([]float64{100}, []float64{95}, 5)
	if f.SwingHigh != 0 || f.SwingLow != 0 {
		t.Errorf("insufficient data should return zero value, got %+v", f)
	}
}
