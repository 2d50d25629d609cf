package indicator

import "math"

// TrueRange returns the true range of bar i given the previous close.
func TrueRange(high, low, prevClose float64) float64 {
	return math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
}

// ATR computes the Average True Range over the trailing period bars using
// a simple (not Wilder-smoothed) average of true range, matching the
// teacher's and spec.md §4.5's "mean(high-low)"-style convention.
func ATR(highs, lows, closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 0
	}
	sum := 0.0
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		sum += TrueRange(highs[i], lows[i], closes[i-1])
	}
	return sum / float64(period)
}

// SimpleRangeATR implements spec.md §4.5.B's backtest ATR estimate
// exactly: mean(high-low) over the trailing `period` bars when at least
// `period` bars are available, else the current bar's own high-low range.
func SimpleRangeATR(highs, lows []float64, period int) float64 {
	n := len(highs)
	if n == 0 {
		return 0
	}
	if n < period {
		return highs[n-1] - lows[n-1]
	}
	sum := 0.0
	for i := n - period; i < n; i++ {
		sum += highs[i] - lows[i]
	}
	return sum / float64(period)
}
