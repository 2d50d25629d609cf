package market

import "testing"

func TestWindowAppendEvictsOldest(t *testing.T) {
	w := NewWindow(3)
	for i := int64(1); i <= 4; i++ {
		w.Append(Bar{Timestamp: i, Close: float64(i), Closed: true})
	}
	if w.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", w.Len())
	}
	bars := w.Bars()
	if bars[0].Timestamp != 2 || bars[2].Timestamp != 4 {
		t.Errorf("unexpected window contents: %+v", bars)
	}
}

func TestWindowFormingBarReplacesInPlace(t *testing.T) {
	w := NewWindow(10)
	w.Append(Bar{Timestamp: 1, Close: 100, Closed: true})
	w.Append(Bar{Timestamp: 2, Close: 101, Closed: false})
	w.Append(Bar{Timestamp: 2, Close: 102, Closed: false})
	w.Append(Bar{Timestamp: 2, Close: 103, Closed: true})

	if w.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", w.Len())
	}
	last, ok := w.Last()
	if !ok || last.Close != 103 || !last.Closed {
		t.Errorf("last = %+v, want closed bar with close 103", last)
	}
}

func TestSliceTrailingN(t *testing.T) {
	bars := []Bar{{Timestamp: 1}, {Timestamp: 2}, {Timestamp: 3}, {Timestamp: 4}}
	got := Slice(bars, 2)
	if len(got) != 2 || got[0].Timestamp != 3 || got[1].Timestamp != 4 {
		t.Errorf("Slice(_, 2) = %+v", got)
	}
	all := Slice(bars, 0)
	if len(all) != 4 {
		t.Errorf("Slice(_, 0) = %+v, want full copy", all)
	}
}
