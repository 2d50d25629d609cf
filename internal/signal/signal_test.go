package signal

import "testing"

func TestActionDirection(t *testing.T) {
	cases := map[Action]int{Buy: 1, Sell: -1, Hold: 0}
	for action, want := range cases {
		if got := action.Direction(); got != want {
			t.Errorf("%s.Direction() = %d, want %d", action, got, want)
		}
	}
}

func TestClampHoldForcesZeroConfidence(t *testing.T) {
	s := Clamp(Signal{Action: Hold, Confidence: 0.9})
	if s.Confidence != 0 {
		t.Errorf("HOLD confidence = %v, want 0", s.Confidence)
	}
}

func TestClampBounds(t *testing.T) {
	if s := Clamp(Signal{Action: Buy, Confidence: 1.5}); s.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", s.Confidence)
	}
	if s := Clamp(Signal{Action: Sell, Confidence: -0.5}); s.Confidence != 0.0 {
		t.Errorf("confidence = %v, want 0.0", s.Confidence)
	}
}

func TestVoteContributionValue(t *testing.T) {
	vc := VoteContribution{DetectorName: "x", Weight: 2, Signal: Signal{Action: Buy, Confidence: 0.5}}
	if got := vc.Value(); got != 1.0 {
		t.Errorf("Value() = %v, want 1.0", got)
	}
}

func TestSortedTagsDedupesAndSorts(t *testing.T) {
	got := SortedTags([]string{"b", "a", "b", "c"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
