package indicator

import "math"

// BollingerBands holds the upper, middle (SMA), and lower band values.
type BollingerBands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Bollinger computes Bollinger Bands over the trailing period closes.
func Bollinger(closes []float64, period int, stdDevMultiplier float64) BollingerBands {
	if period <= 0 || len(closes) < period {
		return BollingerBands{}
	}
	middle := SMA(closes, period)
	start := len(closes) - period
	variance := 0.0
	for i := start; i < len(closes); i++ {
		diff := closes[i] - middle
		variance += diff * diff
	}
	stdDev := math.Sqrt(variance / float64(period))
	return BollingerBands{
		Upper:  middle + stdDev*stdDevMultiplier,
		Middle: middle,
		Lower:  middle - stdDev*stdDevMultiplier,
	}
}

// BollingerWidthRatio returns (upper-lower)/middle, the normalized band
// width the confluence engine's regime gate uses to detect a flat market.
// Returns 0 if middle is 0 or there isn't enough data.
func BollingerWidthRatio(closes []float64, period int, stdDevMultiplier float64) float64 {
	bb := Bollinger(closes, period, stdDevMultiplier)
	if bb.Middle == 0 {
		return 0
	}
	return (bb.Upper - bb.Lower) / bb.Middle
}
