package indicator

// MACD holds the MACD line, its signal line (an EMA of the MACD line
// itself, not an approximation), and the histogram between them.
type MACD struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// MACDValue computes MACD/Signal/Histogram for the most recent bar. The
// signal line is a genuine EMA of the MACD line series so that
// MACDSeries/MACDValue agree, unlike the teacher's simplified
// "macdLine * 0.8" shortcut.
func MACDValue(closes []float64, fast, slow, signalPeriod int) MACD {
	if len(closes) < slow+signalPeriod {
		return MACD{}
	}

	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)

	// Align series: fastEMA is longer (starts earlier) than slowEMA since
	// fast < slow, so trim the head of fastEMA to match slowEMA's start.
	offset := len(fastEMA) - len(slowEMA)
	macdLine := make([]float64, len(slowEMA))
	for i := range slowEMA {
		macdLine[i] = fastEMA[i+offset] - slowEMA[i]
	}

	if len(macdLine) < signalPeriod {
		return MACD{Line: macdLine[len(macdLine)-1]}
	}

	signalSeries := EMASeries(macdLine, signalPeriod)
	line := macdLine[len(macdLine)-1]
	sig := signalSeries[len(signalSeries)-1]
	return MACD{Line: line, Signal: sig, Histogram: line - sig}
}

// MACDPrevValue computes MACD for the window excluding the most recent
// bar, used by detectors to check for a crossover between the previous
// and current bar.
func MACDPrevValue(closes []float64, fast, slow, signalPeriod int) MACD {
	if len(closes) < 2 {
		return MACD{}
	}
	return MACDValue(closes[:len(closes)-1], fast, slow, signalPeriod)
}
