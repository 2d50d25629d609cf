package confluence

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// VoteMode selects one of the four legacy aggregation strategies.
type VoteMode string

const (
	VoteAll      VoteMode = "ALL"
	VoteAny      VoteMode = "ANY"
	VoteMajority VoteMode = "MAJORITY"
	VoteWeighted VoteMode = "WEIGHTED"
)

// vote is what the legacy aggregator reduces one detector's output to:
// its registry name, direction, confidence and weight.
type vote struct {
	detectorName string
	direction    int
	confidence   float64
	weight       float64
}

// EvaluateVoteData runs the simpler legacy aggregation used by the
// RealTimeDriver's shadow-mode validation phase, before the full
// ConfluenceEngine is enabled for a session. Unlike Evaluate, it skips
// the regime gate entirely — VoteData predates regime gating.
func (e *Engine) EvaluateVoteData(window *market.Window, ctx detector.Context, mode VoteMode) signal.Signal {
	bars := window.Bars()
	ts := lastTimestamp(bars)

	var votes []vote
	for _, entry := range e.Registry.Entries() {
		s := entry.Entry.Detector.Evaluate(window, ctx)
		if s.Action == signal.Hold {
			continue
		}
		votes = append(votes, vote{
			detectorName: entry.Name,
			direction:    s.Action.Direction(),
			confidence:   s.Confidence,
			weight:       entry.Entry.Weight,
		})
	}

	if len(votes) == 0 {
		return signal.HoldSignal(ts, "no signals detected", "VOTEDATA:"+string(mode))
	}

	switch mode {
	case VoteAll:
		return voteAll(ts, votes)
	case VoteAny:
		return voteAny(ts, votes)
	case VoteMajority:
		return voteMajority(ts, votes)
	case VoteWeighted:
		return voteWeighted(ts, votes)
	default:
		return signal.HoldSignal(ts, fmt.Sprintf("unknown vote mode %q", mode))
	}
}

func voteAll(ts int64, votes []vote) signal.Signal {
	allBuy, allSell := true, true
	for _, v := range votes {
		if v.direction != 1 {
			allBuy = false
		}
		if v.direction != -1 {
			allSell = false
		}
	}
	if allBuy {
		return votingDecision(ts, signal.Buy, votes, "ALL detectors voted BUY")
	}
	if allSell {
		return votingDecision(ts, signal.Sell, votes, "ALL detectors voted SELL")
	}
	return signal.HoldSignal(ts, "ALL mode: detectors disagree", "VOTEDATA:ALL")
}

func voteAny(ts int64, votes []vote) signal.Signal {
	strongest := votes[0]
	for _, v := range votes[1:] {
		if v.confidence > strongest.confidence {
			strongest = v
		}
	}
	action := signal.Hold
	switch strongest.direction {
	case 1:
		action = signal.Buy
	case -1:
		action = signal.Sell
	}
	return votingDecision(ts, action, []vote{strongest}, fmt.Sprintf("ANY mode: strongest detector %s", strongest.detectorName))
}

func voteMajority(ts int64, votes []vote) signal.Signal {
	buyCount, sellCount := 0, 0
	for _, v := range votes {
		switch v.direction {
		case 1:
			buyCount++
		case -1:
			sellCount++
		}
	}
	half := float64(len(votes)) / 2
	if float64(buyCount) > half {
		return votingDecision(ts, signal.Buy, votes, fmt.Sprintf("MAJORITY mode: %d/%d detectors voted BUY", buyCount, len(votes)))
	}
	if float64(sellCount) > half {
		return votingDecision(ts, signal.Sell, votes, fmt.Sprintf("MAJORITY mode: %d/%d detectors voted SELL", sellCount, len(votes)))
	}
	return signal.HoldSignal(ts, "MAJORITY mode: no strict majority", "VOTEDATA:MAJORITY")
}

func voteWeighted(ts int64, votes []vote) signal.Signal {
	score := 0.0
	for _, v := range votes {
		score += v.weight * float64(v.direction)
	}
	if score > 0 {
		return votingDecision(ts, signal.Buy, votes, fmt.Sprintf("WEIGHTED mode: score=%.3f", score))
	}
	if score < 0 {
		return votingDecision(ts, signal.Sell, votes, fmt.Sprintf("WEIGHTED mode: score=%.3f", score))
	}
	return signal.HoldSignal(ts, "WEIGHTED mode: score is zero", "VOTEDATA:WEIGHTED")
}

func votingDecision(ts int64, action signal.Action, votes []vote, reason string) signal.Signal {
	if action == signal.Hold {
		return signal.HoldSignal(ts, reason)
	}
	confidence := 0.0
	for _, v := range votes {
		confidence += v.confidence
	}
	confidence /= float64(len(votes))
	names := make([]string, len(votes))
	for i, v := range votes {
		names[i] = v.detectorName
	}
	return signal.Clamp(signal.Signal{
		Action:     action,
		Confidence: confidence,
		Reasons:    []string{reason},
		Tags:       []string{fmt.Sprintf("VOTEDATA:%s", action)},
		Meta:       map[string]any{"voting_detectors": names},
		Timestamp:  ts,
	})
}

// ShadowResult pairs the ConfluenceEngine's signal with the legacy
// VoteData aggregator's signal for the same window, and whether their
// actions agree.
type ShadowResult struct {
	Engine signal.Signal
	Legacy signal.Signal
	Agree  bool
}

// EvaluateShadow runs both the full ConfluenceEngine and the legacy
// VoteData aggregator over the same window and reports whether they
// agree on action, for shadow-mode validation.
func (e *Engine) EvaluateShadow(window *market.Window, ctx detector.Context, legacyMode VoteMode) ShadowResult {
	engineSignal := e.Evaluate(window, ctx)
	legacySignal := e.EvaluateVoteData(window, ctx, legacyMode)
	return ShadowResult{
		Engine: engineSignal,
		Legacy: legacySignal,
		Agree:  engineSignal.Action == legacySignal.Action,
	}
}
