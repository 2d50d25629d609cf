package indicator

// Stochastic holds the %K and %D lines.
type Stochastic struct {
	K float64
	D float64
}

// percentKSeries returns %K for every index from kPeriod-1 onward.
func percentKSeries(highs, lows, closes []float64, kPeriod int) []float64 {
	n := len(closes)
	if kPeriod <= 0 || n < kPeriod {
		return nil
	}
	out := make([]float64, 0, n-kPeriod+1)
	for i := kPeriod - 1; i < n; i++ {
		hh, ll := highs[i], lows[i]
		for j := i - kPeriod + 1; j <= i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		if hh == ll {
			out = append(out, 50)
			continue
		}
		out = append(out, (closes[i]-ll)/(hh-ll)*100)
	}
	return out
}

// StochasticValue computes %K and a genuine %D (the SMA of the last
// dPeriod %K values), unlike the teacher's "%K * 0.9" approximation.
func StochasticValue(highs, lows, closes []float64, kPeriod, dPeriod int) Stochastic {
	kSeries := percentKSeries(highs, lows, closes, kPeriod)
	if len(kSeries) == 0 {
		return Stochastic{K: 50, D: 50}
	}
	k := kSeries[len(kSeries)-1]
	d := SMA(kSeries, dPeriod)
	if d == 0 && len(kSeries) < dPeriod {
		d = k
	}
	return Stochastic{K: k, D: d}
}

// StochasticPrevValue computes %K/%D as of the bar before the most recent
// one, for crossover detection.
func StochasticPrevValue(highs, lows, closes []float64, kPeriod, dPeriod int) Stochastic {
	if len(closes) < 2 {
		return Stochastic{K: 50, D: 50}
	}
	n := len(closes) - 1
	return StochasticValue(highs[:n], lows[:n], closes[:n], kPeriod, dPeriod)
}

// WilliamsR computes Williams %R over the trailing period, in [-100, 0].
func WilliamsR(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if period <= 0 || n < period {
		return -50
	}
	hh, ll := highs[n-period], lows[n-period]
	for i := n - period; i < n; i++ {
		if highs[i] > hh {
			hh = highs[i]
		}
		if lows[i] < ll {
			ll = lows[i]
		}
	}
	if hh == ll {
		return -50
	}
	return (hh - closes[n-1]) / (hh - ll) * -100
}
