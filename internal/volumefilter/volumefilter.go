// Package volumefilter gates and amplifies detector/engine output based
// on a rolling volume z-score. Grounded on the original Python
// VolumeFilter (market_manus/analysis/volume_filter.py) for the exact
// reject/boost/pass thresholds, and on the teacher repo's
// internal/analysis.VolumeAnalyzer for the Go struct/constructor shape.
package volumefilter

import (
	"fmt"
	"math"

	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// Stats accumulates session-level counters used by reports.
type Stats struct {
	Received int
	Rejected int
	Boosted  int
	Passed   int
}

// Filter applies volume-based confidence adjustment to detector/engine
// signals. The zero value is not usable; construct with New.
type Filter struct {
	RejectThreshold float64
	BoostThreshold  float64
	BoostFactor     float64
	Lookback        int

	stats Stats
}

// New returns a Filter with the catalogue defaults (0.5, 1.5, 1.3, 50)
// substituted for a zero threshold and for a non-positive boost factor or
// lookback; a negative threshold is kept as given.
func New(rejectThreshold, boostThreshold, boostFactor float64, lookback int) *Filter {
	if rejectThreshold == 0 {
		rejectThreshold = 0.5
	}
	if boostThreshold == 0 {
		boostThreshold = 1.5
	}
	if boostFactor <= 0 {
		boostFactor = 1.3
	}
	if lookback <= 0 {
		lookback = 50
	}
	return &Filter{
		RejectThreshold: rejectThreshold,
		BoostThreshold:  boostThreshold,
		BoostFactor:     boostFactor,
		Lookback:        lookback,
	}
}

// ZScore computes the volume z-score of the most recent bar in bars
// against the rolling mean and standard deviation of the trailing Lookback
// bars, the most recent bar included. Returns 0 (treated as neutral)
// during warm-up or when the window has zero variance.
func (f *Filter) ZScore(bars []market.Bar) float64 {
	n := len(bars)
	if n < f.Lookback {
		return 0
	}
	window := bars[n-f.Lookback:]
	mean, std := volumeMeanStdDev(window)
	if std == 0 {
		return 0
	}
	current := bars[n-1].Volume
	z := (current - mean) / std
	if math.IsNaN(z) {
		return 0
	}
	return z
}

func volumeMeanStdDev(bars []market.Bar) (float64, float64) {
	n := float64(len(bars))
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Volume
	}
	mean := sum / n
	variance := 0.0
	for _, b := range bars {
		diff := b.Volume - mean
		variance += diff * diff
	}
	return mean, math.Sqrt(variance / n)
}

// Apply filters a single Signal given its bar's volume z-score. HOLD
// signals bypass the filter entirely (returned unchanged) and are not
// counted in Received.
func (f *Filter) Apply(s signal.Signal, zScore float64) signal.Signal {
	if s.Action == signal.Hold {
		return s
	}
	f.stats.Received++

	switch {
	case zScore < f.RejectThreshold:
		f.stats.Rejected++
		reason := fmt.Sprintf("volume insufficient (z-score %.2f)", zScore)
		rejected := signal.HoldSignal(s.Timestamp, reason, "VOLUME_REJECTED")
		rejected.Reasons = append(rejected.Reasons, s.Reasons...)
		rejected = signal.MergeMeta(rejected, map[string]any{
			"original_action":     s.Action,
			"original_confidence": s.Confidence,
			"volume_zscore":       zScore,
		})
		return rejected

	case zScore > f.BoostThreshold:
		f.stats.Boosted++
		boosted := s
		boosted.Confidence = math.Min(s.Confidence*f.BoostFactor, 1.0)
		boosted = signal.WithTag(boosted, "VOLUME_BOOSTED")
		boosted.Reasons = append(append([]string{}, s.Reasons...), fmt.Sprintf("high volume (z-score %.2f)", zScore))
		boosted = signal.MergeMeta(boosted, map[string]any{
			"original_confidence": s.Confidence,
			"volume_zscore":       zScore,
			"boost_factor":        f.BoostFactor,
		})
		return signal.Clamp(boosted)

	default:
		f.stats.Passed++
		passed := signal.WithTag(s, "VOLUME_NORMAL")
		return signal.MergeMeta(passed, map[string]any{"volume_zscore": zScore})
	}
}

// Stats returns a snapshot of the session aggregate counters.
func (f *Filter) Stats() Stats {
	return f.stats
}
