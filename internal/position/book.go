package position

// Config holds the backtest sizing and guard-rail parameters enumerated in
// §6's Backtest config table, plus the supplemented capital/compliance
// rails from market_manus/core/capital_manager.py (MaxPositionSizePct,
// MaxDailyTrades) that the distilled spec omitted.
type Config struct {
	InitialCapital  float64
	PositionSizePct float64
	Compound        bool
	MaxDrawdownPct  float64
	StopMult        float64
	TPMult          float64

	// MaxPositionSizePct caps a single position's notional as a fraction of
	// current capital, independent of PositionSizePct. Default 0.10 (a
	// position can never exceed 10% of capital even if PositionSizePct is
	// configured higher).
	MaxPositionSizePct float64
	// MaxDailyTrades caps trades opened within one UTC day. 0 means
	// unlimited.
	MaxDailyTrades int
}

// DefaultConfig returns the §6 catalogue defaults plus the supplemented
// guard rails.
func DefaultConfig() Config {
	return Config{
		InitialCapital:     10000,
		PositionSizePct:    0.10,
		Compound:           true,
		MaxDrawdownPct:     0.5,
		StopMult:           1.5,
		TPMult:             2.5,
		MaxPositionSizePct: 0.10,
		MaxDailyTrades:     0,
	}
}

// Book is the capital and drawdown-guard bookkeeper the BacktestDriver
// consults before opening a position and updates after closing one.
type Book struct {
	Config Config

	Capital       float64
	PeakCapital   float64
	GuardTripped  bool
	tradesToday   int
	currentDayKey int64
}

// NewBook initializes a Book at cfg.InitialCapital.
func NewBook(cfg Config) *Book {
	return &Book{
		Config:      cfg,
		Capital:     cfg.InitialCapital,
		PeakCapital: cfg.InitialCapital,
	}
}

// Notional returns the sizing for a new position given the configured
// percentage and compounding mode, capped at MaxPositionSizePct of current
// capital.
func (b *Book) Notional() float64 {
	base := b.Config.InitialCapital
	if b.Config.Compound {
		base = b.Capital
	}
	notional := base * b.Config.PositionSizePct
	ceiling := b.Capital * b.Config.MaxPositionSizePct
	if b.Config.MaxPositionSizePct > 0 && notional > ceiling {
		notional = ceiling
	}
	return notional
}

// CanOpen reports whether a new position may be opened at the given bar
// timestamp: the drawdown guard must not be tripped, and the daily trade
// counter (keyed by UTC day, derived from timestamp milliseconds) must not
// be exhausted.
func (b *Book) CanOpen(timestampMs int64) bool {
	if b.GuardTripped {
		return false
	}
	b.rollDay(timestampMs)
	if b.Config.MaxDailyTrades > 0 && b.tradesToday >= b.Config.MaxDailyTrades {
		return false
	}
	return true
}

// RecordOpen increments the day's trade counter. Call after a position is
// actually opened (CanOpen already passed).
func (b *Book) RecordOpen(timestampMs int64) {
	b.rollDay(timestampMs)
	b.tradesToday++
}

func (b *Book) rollDay(timestampMs int64) {
	dayKey := timestampMs / (24 * 60 * 60 * 1000)
	if dayKey != b.currentDayKey {
		b.currentDayKey = dayKey
		b.tradesToday = 0
	}
}

// Settle applies a closed trade's PnL to capital, updates the peak, and
// evaluates the drawdown guard. Returns the capital after settlement, for
// Trade.CapitalAfter.
func (b *Book) Settle(pnl float64) float64 {
	b.Capital += pnl
	if b.Capital > b.PeakCapital {
		b.PeakCapital = b.Capital
	}
	if b.Config.InitialCapital > 0 {
		drawdown := (b.PeakCapital - b.Capital) / b.Config.InitialCapital
		if drawdown > b.Config.MaxDrawdownPct {
			b.GuardTripped = true
		}
	}
	return b.Capital
}
