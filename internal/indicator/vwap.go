package indicator

// VWAP computes the volume-weighted average price over the given bars
// (typical price (H+L+C)/3 weighted by volume), the session-anchored
// convention used by vwap/vwap_volume detectors.
func VWAP(highs, lows, closes, volumes []float64) float64 {
	var pvSum, volSum float64
	for i := range closes {
		typical := (highs[i] + lows[i] + closes[i]) / 3
		pvSum += typical * volumes[i]
		volSum += volumes[i]
	}
	if volSum == 0 {
		return 0
	}
	return pvSum / volSum
}
