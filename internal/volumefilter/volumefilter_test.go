package volumefilter

import (
	"testing"

	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

func TestApplyBypassesHold(t *testing.T) {
	f := New(0.5, 1.5, 1.3, 50)
	hold := signal.HoldSignal(1, "nothing")
	got := f.Apply(hold, 5.0)
	if got.Action != signal.Hold {
		t.Errorf("HOLD should bypass the filter unchanged, got %v", got.Action)
	}
	if f.Stats().Received != 0 {
		t.Errorf("HOLD should not count toward Received, got %d", f.Stats().Received)
	}
}

func TestApplyRejectsLowVolume(t *testing.T) {
	f := New(0.5, 1.5, 1.3, 50)
	buy := signal.Signal{Action: signal.Buy, Confidence: 0.6, Timestamp: 1}
	got := f.Apply(buy, 0.1)
	if got.Action != signal.Hold {
		t.Errorf("low z-score should reject to HOLD, got %v", got.Action)
	}
	hasTag := false
	for _, tag := range got.Tags {
		if tag == "VOLUME_REJECTED" {
			hasTag = true
		}
	}
	if !hasTag {
		t.Errorf("rejected signal should carry VOLUME_REJECTED tag, got %v", got.Tags)
	}
	if f.Stats().Rejected != 1 {
		t.Errorf("expected 1 rejection, got %d", f.Stats().Rejected)
	}
}

func TestApplyBoostsHighVolume(t *testing.T) {
	f := New(0.5, 1.5, 1.3, 50)
	buy := signal.Signal{Action: signal.Buy, Confidence: 0.6, Timestamp: 1}
	got := f.Apply(buy, 2.0)
	if got.Action != signal.Buy {
		t.Errorf("high z-score should preserve the action, got %v", got.Action)
	}
	if got.Confidence != 0.78 {
		t.Errorf("confidence should be boosted to 0.6*1.3=0.78, got %v", got.Confidence)
	}
	if f.Stats().Boosted != 1 {
		t.Errorf("expected 1 boost, got %d", f.Stats().Boosted)
	}
}

func TestApplyBoostClampsAtOne(t *testing.T) {
	f := New(0.5, 1.5, 1.3, 50)
	buy := signal.Signal{Action: signal.Buy, Confidence: 0.9, Timestamp: 1}
	got := f.Apply(buy, 2.0)
	if got.Confidence != 1.0 {
		t.Errorf("boosted confidence should clamp at 1.0, got %v", got.Confidence)
	}
}

func TestApplyPassesNormalVolumeUnchanged(t *testing.T) {
	f := New(0.5, 1.5, 1.3, 50)
	buy := signal.Signal{Action: signal.Buy, Confidence: 0.6, Timestamp: 1}
	got := f.Apply(buy, 1.0)
	if got.Confidence != 0.6 {
		t.Errorf("normal z-score should not change confidence, got %v", got.Confidence)
	}
	if f.Stats().Passed != 1 {
		t.Errorf("expected 1 pass, got %d", f.Stats().Passed)
	}
}

func TestZScoreZeroDuringWarmup(t *testing.T) {
	f := New(0.5, 1.5, 1.3, 50)
	bars := make([]market.Bar, 10)
	for i := range bars {
		bars[i] = market.Bar{Volume: float64(100 + i)}
	}
	if got := f.ZScore(bars); got != 0 {
		t.Errorf("warm-up z-score should be 0, got %v", got)
	}
}

func TestZScorePositiveOnVolumeSpike(t *testing.T) {
	f := New(0.5, 1.5, 1.3, 50)
	bars := make([]market.Bar, 52)
	for i := range bars {
		bars[i] = market.Bar{Volume: 100}
	}
	bars[51].Volume = 1000
	if got := f.ZScore(bars); got <= 0 {
		t.Errorf("volume spike should yield a positive z-score, got %v", got)
	}
}
