// Package classical implements the indicator-threshold detector family
// from the reference catalogue: each detector computes a standard
// technical indicator over the window and emits a signal on a threshold
// crossing or crossover. Grounded on the teacher repo's
// internal/strategy/indicators.go (the indicator call sites) and
// internal/patterns (the per-pattern detector struct shape), generalized
// to the Detector contract.
package classical

import (
	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// clampConfidence keeps a computed confidence for a fired signal in
// [0.4, 1.0], per spec.md's confidence convention for "a textbook pattern
// with ordinary strength". HOLD signals do not pass through it; they get
// confidence 0 from signal.HoldSignal/signal.Clamp.
func clampConfidence(c float64) float64 {
	if c < 0.4 {
		return 0.4
	}
	if c > 1.0 {
		return 1.0
	}
	return c
}

func lastTimestamp(bars []market.Bar) int64 {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].Timestamp
}

func buySignal(ts int64, confidence float64, reason, name string, tags ...string) signal.Signal {
	return signal.Clamp(signal.Signal{
		Action:     signal.Buy,
		Confidence: clampConfidence(confidence),
		Reasons:    []string{reason},
		Tags:       append([]string{name}, tags...),
		Meta:       map[string]any{},
		Timestamp:  ts,
	})
}

func sellSignal(ts int64, confidence float64, reason, name string, tags ...string) signal.Signal {
	return signal.Clamp(signal.Signal{
		Action:     signal.Sell,
		Confidence: clampConfidence(confidence),
		Reasons:    []string{reason},
		Tags:       append([]string{name}, tags...),
		Meta:       map[string]any{},
		Timestamp:  ts,
	})
}

func holdSignal(name string, ts int64, reason string) signal.Signal {
	return signal.HoldSignal(ts, name+": "+reason)
}

var _ detector.Detector = (*RSIMeanReversion)(nil)
