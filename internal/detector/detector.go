// Package detector defines the Detector contract every concrete signal
// generator satisfies, and the registry that binds a detector instance to
// a name and a confluence weight. Grounded on the teacher repo's
// internal/patterns.PatternDetector (a stateless scanner configured once
// at construction, invoked per window) generalized to the polymorphic
// contract the confluence engine requires.
package detector

import (
	"fmt"

	"github.com/conflux-quant/decision-engine/internal/market"
	"github.com/conflux-quant/decision-engine/internal/signal"
)

// Context carries the information a Detector may consult beyond the raw
// candle window: the symbol/timeframe under evaluation and the coarser
// market regime classification from the MarketContextAnalyzer. Detectors
// MUST treat Context as read-only.
type Context struct {
	Symbol    string
	Timeframe string
	Regime    RegimeLabel
}

// RegimeLabel mirrors marketcontext.Regime without importing that package,
// avoiding an import cycle (marketcontext consumes detector weights,
// detector consumes regime labels).
type RegimeLabel string

const (
	RegimeUnknown    RegimeLabel = ""
	RegimeBullish    RegimeLabel = "BULLISH"
	RegimeBearish    RegimeLabel = "BEARISH"
	RegimeCorrection RegimeLabel = "CORRECTION"
)

// Detector is a pure function of a candle window and context to a Signal.
// Implementations MUST NOT mutate the window, consult wall-clock time, or
// perform I/O, and MUST return a HOLD signal tagged "not enough data"
// rather than failing when the window is too short.
type Detector interface {
	// Evaluate computes a Signal from the given window and context.
	Evaluate(window *market.Window, ctx Context) signal.Signal
	// Name returns the detector's registry identifier (lowercase snake).
	Name() string
}

// NotEnoughDataSignal is the canonical HOLD signal detectors return when
// their window is shorter than their minimum required length.
func NotEnoughDataSignal(detectorName string, timestamp int64, have, need int) signal.Signal {
	return signal.HoldSignal(timestamp, fmt.Sprintf("%s: not enough data (have %d, need %d)", detectorName, have, need), "NOT_ENOUGH_DATA")
}

// Entry binds a registered Detector to its confluence weight.
type Entry struct {
	Detector Detector
	Weight   float64
}

// Registry is an ordered name → Entry mapping. Order is insertion order
// and is iterated deterministically by Names/Entries, satisfying the
// "stable order fixed by config" determinism requirement.
type Registry struct {
	order   []string
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a detector under name with the given weight. It returns
// an error (a ConfigError in spec terms) if the name is already taken or
// is empty.
func (r *Registry) Register(name string, d Detector, weight float64) error {
	if name == "" {
		return fmt.Errorf("detector registry: name must not be empty")
	}
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("detector registry: duplicate detector name %q", name)
	}
	r.entries[name] = Entry{Detector: d, Weight: weight}
	r.order = append(r.order, name)
	return nil
}

// Names returns the registered detector names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the entry registered under name.
func (r *Registry) Get(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// SetWeight overrides the weight for an already-registered detector, used
// by the MarketContextAnalyzer to apply regime-blended multipliers
// without re-registering the detector itself.
func (r *Registry) SetWeight(name string, weight float64) {
	if e, ok := r.entries[name]; ok {
		e.Weight = weight
		r.entries[name] = e
	}
}

// Len returns the number of registered detectors.
func (r *Registry) Len() int {
	return len(r.order)
}

// Entries returns (name, Entry) pairs in deterministic registration order.
func (r *Registry) Entries() []struct {
	Name  string
	Entry Entry
} {
	out := make([]struct {
		Name  string
		Entry Entry
	}, len(r.order))
	for i, name := range r.order {
		out[i] = struct {
			Name  string
			Entry Entry
		}{Name: name, Entry: r.entries[name]}
	}
	return out
}
