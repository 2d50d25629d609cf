package binance

import "testing"

func TestBackoffDoublesUpToMax(t *testing.T) {
	b := newBackoff()
	prev := b.base
	for i := 0; i < 10; i++ {
		d := b.next()
		if d < prev {
			t.Fatalf("step %d: delay %v should be at least the prior base %v", i, d, prev)
		}
		if b.current > b.max {
			t.Fatalf("step %d: current backoff %v exceeds max %v", i, b.current, b.max)
		}
		prev = b.current
	}
}

func TestBackoffJitterWithinBound(t *testing.T) {
	b := newBackoff()
	for i := 0; i < 20; i++ {
		d := b.next()
		upperBound := b.current + b.current/10*3 + 1
		if d < b.current || d > upperBound {
			t.Fatalf("delay %v out of [%v, %v] for current=%v", d, b.current, upperBound, b.current)
		}
	}
}

func TestBackoffResetReturnsToBase(t *testing.T) {
	b := newBackoff()
	b.next()
	b.next()
	b.next()
	if b.current == 0 {
		t.Fatal("expected backoff to have advanced")
	}
	b.reset()
	if b.current != 0 {
		t.Errorf("expected reset to zero current, got %v", b.current)
	}
	d := b.next()
	if d < b.base || d > b.base+b.base/10*3+1 {
		t.Errorf("expected first delay after reset to be near base %v, got %v", b.base, d)
	}
}
