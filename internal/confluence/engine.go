// Package confluence implements the ConfluenceEngine: the regime-gated,
// weighted-vote aggregator that turns a registry of detector outputs into
// a single Signal. Grounded on the teacher repo's former
// internal/confluence.ConfluenceScorer (the weighted-sum-of-factors shape
// and the Reasoning-slice-building convention, since removed from this
// module — it scored a fixed five-factor tuple against the teacher's own
// analysis/patterns types, which this module doesn't have) generalized to
// a weighted vote over an arbitrary detector registry per §4.3.
package confluence

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// Config holds the confluence engine's tunable decision thresholds.
type Config struct {
	Regime          RegimeConfig
	BuyThreshold    float64
	SellThreshold   float64
	ConflictPenalty float64
}

// DefaultConfig returns the §4.3 catalogue defaults.
func DefaultConfig() Config {
	return Config{
		Regime:          DefaultRegimeConfig(),
		BuyThreshold:    0.5,
		SellThreshold:   -0.5,
		ConflictPenalty: 0.3,
	}
}

// Engine is the ConfluenceEngine: synchronous, stateless across calls
// except for the registry of detectors and weights it was built with.
type Engine struct {
	Registry *detector.Registry
	Config   Config
}

// New builds an Engine over the given registry.
func New(reg *detector.Registry, cfg Config) *Engine {
	return &Engine{Registry: reg, Config: cfg}
}

// Evaluate runs the full confluence pipeline: regime gate, detector
// fan-out, weighted aggregation, conflict penalty, decision. Detector
// iteration order is the registry's deterministic registration order, so
// identical window bytes and config always yield bitwise-identical
// output (§4.3's determinism requirement).
func (e *Engine) Evaluate(window *market.Window, ctx detector.Context) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)

	snapshot, rejection := regimeGate(bars, e.Config.Regime)
	if rejection != "" {
		s := signal.HoldSignal(ts, rejection, "CONFLUENCE:REGIME_FILTER")
		return signal.MergeMeta(s, map[string]any{"regime_snapshot": snapshot})
	}

	contributions := e.collectContributions(window, ctx)

	score, buyCount, sellCount := aggregate(contributions)
	score, conflictReason := applyConflictPenalty(score, buyCount, sellCount, e.Config.ConflictPenalty)

	return e.buildDecision(ts, score, buyCount, sellCount, contributions, snapshot, conflictReason, ctx)
}

// collectContributions fans detector evaluation out in registry order,
// discarding HOLD outputs.
func (e *Engine) collectContributions(window *market.Window, ctx detector.Context) []signal.VoteContribution {
	var out []signal.VoteContribution
	for _, entry := range e.Registry.Entries() {
		s := entry.Entry.Detector.Evaluate(window, ctx)
		if s.Action == signal.Hold {
			continue
		}
		out = append(out, signal.VoteContribution{
			DetectorName: entry.Name,
			Weight:       entry.Entry.Weight,
			Signal:       s,
		})
	}
	return out
}

func aggregate(contributions []signal.VoteContribution) (score float64, buyCount, sellCount int) {
	for _, c := range contributions {
		score += c.Value()
		switch c.Signal.Action.Direction() {
		case 1:
			buyCount++
		case -1:
			sellCount++
		}
	}
	return score, buyCount, sellCount
}

func applyConflictPenalty(score float64, buyCount, sellCount int, conflictPenalty float64) (float64, string) {
	if buyCount == 0 || sellCount == 0 {
		return score, ""
	}
	conflicts := buyCount
	if sellCount < conflicts {
		conflicts = sellCount
	}
	penalty := float64(conflicts) * conflictPenalty
	if penalty > 1 {
		penalty = 1
	}
	return score * (1 - penalty), fmt.Sprintf("conflict penalty applied: %d opposing detector(s), penalty=%.2f", conflicts, penalty)
}

func (e *Engine) buildDecision(ts int64, score float64, buyCount, sellCount int, contributions []signal.VoteContribution, snapshot RegimeSnapshot, conflictReason string, ctx detector.Context) signal.Signal {
	var action signal.Action
	var confidence float64

	switch {
	case score >= e.Config.BuyThreshold:
		action, confidence = signal.Buy, absFloat(score)
	case score <= e.Config.SellThreshold:
		action, confidence = signal.Sell, absFloat(score)
	default:
		action, confidence = signal.Hold, 0
	}
	if confidence > 1 {
		confidence = 1
	}

	reasons := make([]string, 0, len(contributions)+1)
	var tags []string
	for _, c := range contributions {
		reasons = append(reasons, fmt.Sprintf("%s: %s (conf=%.2f, contrib=%+.3f)", c.DetectorName, c.Signal.Action, c.Signal.Confidence, c.Value()))
		tags = append(tags, c.Signal.Tags...)
	}
	if conflictReason != "" {
		reasons = append(reasons, conflictReason)
	}
	tags = append(tags, fmt.Sprintf("CONFLUENCE:%s", action))
	tags = signal.SortedTags(tags)

	return signal.Signal{
		Action:     action,
		Confidence: confidence,
		Reasons:    reasons,
		Tags:       tags,
		Timestamp:  ts,
		Meta: map[string]any{
			"score":           score,
			"buy_count":       buyCount,
			"sell_count":      sellCount,
			"signal_count":    len(contributions),
			"regime_snapshot": snapshot,
			"ctx":             ctx,
		},
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func lastTimestamp(bars []market.Bar) int64 {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].Timestamp
}
