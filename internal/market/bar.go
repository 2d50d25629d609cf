// Package market holds the OHLCV bar and candle window types shared by
// every detector, the volume filter, and both drivers. It is the Go
// analogue of the teacher repo's binance.Kline, generalized away from any
// one exchange's wire format.
package market

// Bar is one OHLCV aggregate over a fixed interval. Timestamp is the bar's
// close time in millisecond epoch, matching the teacher's Kline.CloseTime
// convention.
type Bar struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	// Closed is false while the bar may still update (the final trade of
	// the interval has not printed yet).
	Closed bool
}

// BarEvent is what a DataProvider's live stream emits: a bar plus whether
// it has closed. A forming bar may be emitted multiple times with the same
// Timestamp; RealTimeDriver is responsible for deduplicating those.
type BarEvent struct {
	Bar      Bar
	IsClosed bool
}

// DefaultWindowSize is the default maximum length of a CandleWindow.
const DefaultWindowSize = 1000

// Window is an ordered, chronological sequence of bars of fixed maximum
// length. New bars append; once full, the oldest is dropped. While the
// last entry is still forming (Closed == false), the next bar replaces it
// in place rather than appending.
//
// Window is owned by the driver. Detectors receive it as a read-only
// slice view via Bars() and must not retain or mutate the backing array
// across calls.
type Window struct {
	bars    []Bar
	maxSize int
}

// NewWindow creates an empty window with the given maximum size. A
// non-positive size falls back to DefaultWindowSize.
func NewWindow(maxSize int) *Window {
	if maxSize <= 0 {
		maxSize = DefaultWindowSize
	}
	return &Window{maxSize: maxSize}
}

// Append adds a bar, evicting the oldest entry if the window is full. If
// the last entry is still forming (Closed == false), b replaces it in
// place instead, whether b is closed or forming, matching spec.md's
// "forming bar updates until the interval boundary" semantics.
func (w *Window) Append(b Bar) {
	if n := len(w.bars); n > 0 && !w.bars[n-1].Closed {
		// Last entry was still forming: this update replaces it, whether
		// it has now closed or is simply a newer mid-bar tick.
		w.bars[n-1] = b
		return
	}
	if len(w.bars) >= w.maxSize {
		copy(w.bars, w.bars[1:])
		w.bars[len(w.bars)-1] = b
		return
	}
	w.bars = append(w.bars, b)
}

// Bars returns a read-only view of the window's bars, oldest first.
func (w *Window) Bars() []Bar {
	return w.bars
}

// Len returns the number of bars currently held.
func (w *Window) Len() int {
	return len(w.bars)
}

// Last returns the most recent bar and true, or the zero Bar and false if
// the window is empty.
func (w *Window) Last() (Bar, bool) {
	if len(w.bars) == 0 {
		return Bar{}, false
	}
	return w.bars[len(w.bars)-1], true
}

// Slice builds a fixed, independent snapshot of the trailing n bars (or
// all bars if n <= 0 or n > Len()). Detector and engine code works against
// these snapshots, never the live Window, so purity (§4.1) holds even
// while the driver mutates the window between evaluations.
func Slice(bars []Bar, n int) []Bar {
	if n <= 0 || n >= len(bars) {
		out := make([]Bar, len(bars))
		copy(out, bars)
		return out
	}
	start := len(bars) - n
	out := make([]Bar, n)
	copy(out, bars[start:])
	return out
}

// Closes extracts the Close field of each bar, in order.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the Volume field of each bar, in order.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

// Highs extracts the High field of each bar, in order.
func Highs(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the Low field of each bar, in order.
func Lows(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// Opens extracts the Open field of each bar, in order.
func Opens(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Open
	}
	return out
}
