package confluence

import (
	"testing"

	"github.com/conflux-quant/decision-engine/internal/detector"
	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// fixedDetector always returns the same Signal, for engine-level tests
// that don't need real indicator math.
type fixedDetector struct {
	name string
	sig  signal.Signal
}

func (f fixedDetector) Name() string { return f.name }
func (f fixedDetector) Evaluate(*market.Window, detector.Context) signal.Signal {
	return f.sig
}

func trendingWindow(n int) *market.Window {
	w := market.NewWindow(n + 1)
	price := 100.0
	for i := 0; i < n; i++ {
		price += 1.5
		w.Append(market.Bar{
			Timestamp: int64(i + 1),
			Open:      price - 1, High: price + 2, Low: price - 3, Close: price,
			Volume: 1000, Closed: true,
		})
	}
	return w
}

func buildEngine(t *testing.T, detectors ...fixedDetector) *Engine {
	t.Helper()
	reg := detector.NewRegistry()
	for _, d := range detectors {
		if err := reg.Register(d.name, d, 1.0); err != nil {
			t.Fatalf("register %s: %v", d.name, err)
		}
	}
	return New(reg, DefaultConfig())
}

func TestRegimeGateRejectsFlatMarket(t *testing.T) {
	reg := detector.NewRegistry()
	eng := New(reg, DefaultConfig())
	w := market.NewWindow(30)
	for i := 0; i < 30; i++ {
		w.Append(market.Bar{Timestamp: int64(i + 1), Open: 100, High: 100, Low: 100, Close: 100, Volume: 100, Closed: true})
	}
	s := eng.Evaluate(w, detector.Context{})
	if s.Action != signal.Hold {
		t.Errorf("flat market should HOLD via the regime gate, got %v", s.Action)
	}
	found := false
	for _, tag := range s.Tags {
		if tag == "CONFLUENCE:REGIME_FILTER" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected CONFLUENCE:REGIME_FILTER tag, got %v", s.Tags)
	}
}

func TestEvaluateAggregatesWeightedVotes(t *testing.T) {
	d1 := fixedDetector{"d1", signal.Signal{Action: signal.Buy, Confidence: 0.9}}
	d2 := fixedDetector{"d2", signal.Signal{Action: signal.Buy, Confidence: 0.8}}
	eng := buildEngine(t, d1, d2)
	s := eng.Evaluate(trendingWindow(40), detector.Context{})
	if s.Action != signal.Buy {
		t.Errorf("two agreeing BUY detectors should yield BUY, got %v action=%v meta=%v", s, s.Action, s.Meta)
	}
}

func TestEvaluateConflictPenaltyReducesScore(t *testing.T) {
	buyer := fixedDetector{"buyer", signal.Signal{Action: signal.Buy, Confidence: 0.9}}
	seller := fixedDetector{"seller", signal.Signal{Action: signal.Sell, Confidence: 0.9}}
	eng := buildEngine(t, buyer, seller)
	s := eng.Evaluate(trendingWindow(40), detector.Context{})
	if s.Action != signal.Hold {
		t.Errorf("balanced conflicting votes should HOLD after the penalty, got %v", s.Action)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	d1 := fixedDetector{"d1", signal.Signal{Action: signal.Buy, Confidence: 0.9}}
	eng := buildEngine(t, d1)
	w := trendingWindow(40)
	first := eng.Evaluate(w, detector.Context{})
	second := eng.Evaluate(w, detector.Context{})
	if first.Action != second.Action || first.Confidence != second.Confidence {
		t.Errorf("engine must be deterministic across repeated calls: %+v vs %+v", first, second)
	}
}

func TestVoteDataAllRequiresUnanimity(t *testing.T) {
	d1 := fixedDetector{"d1", signal.Signal{Action: signal.Buy, Confidence: 0.9}}
	d2 := fixedDetector{"d2", signal.Signal{Action: signal.Sell, Confidence: 0.9}}
	eng := buildEngine(t, d1, d2)
	w := trendingWindow(40)
	s := eng.EvaluateVoteData(w, detector.Context{}, VoteAll)
	if s.Action != signal.Hold {
		t.Errorf("ALL mode with disagreement should HOLD, got %v", s.Action)
	}
}

func TestVoteDataWeightedUsesRegistryWeights(t *testing.T) {
	reg := detector.NewRegistry()
	buyer := fixedDetector{"buyer", signal.Signal{Action: signal.Buy, Confidence: 0.5}}
	seller := fixedDetector{"seller", signal.Signal{Action: signal.Sell, Confidence: 0.5}}
	_ = reg.Register("buyer", buyer, 3.0)
	_ = reg.Register("seller", seller, 1.0)
	eng := New(reg, DefaultConfig())
	s := eng.EvaluateVoteData(trendingWindow(40), detector.Context{}, VoteWeighted)
	if s.Action != signal.Buy {
		t.Errorf("heavier-weighted BUY detector should win WEIGHTED mode, got %v", s.Action)
	}
}

func TestVoteDataNoSignalsHolds(t *testing.T) {
	eng := buildEngine(t)
	s := eng.EvaluateVoteData(trendingWindow(40), detector.Context{}, VoteAny)
	if s.Action != signal.Hold || s.Reasons[0] != "no signals detected" {
		t.Errorf("no detectors registered should HOLD with the canonical reason, got %+v", s)
	}
}

func TestEvaluateShadowAgreement(t *testing.T) {
	d1 := fixedDetector{"d1", signal.Signal{Action: signal.Buy, Confidence: 0.9}}
	eng := buildEngine(t, d1)
	result := eng.EvaluateShadow(trendingWindow(40), detector.Context{}, VoteAny)
	if !result.Agree {
		t.Errorf("single agreeing detector should make engine and legacy agree: %+v", result)
	}
}
