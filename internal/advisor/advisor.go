package advisor

import (
	"fmt"
	"strings"

	"github.com/conflux-quant/decision-engine/internal/driver"
)

const systemPrompt = `You are a trading performance analyst. You are given the summary ` +
	`statistics of a completed backtest. Write a concise, plain-language assessment ` +
	`of the strategy's behavior: what worked, what didn't, and one concrete risk to ` +
	`watch for. Never suggest placing trades or recommend a specific action; you are ` +
	`reviewing history, not issuing advice.`

// Advisor produces optional post-hoc commentary on a finished
// BacktestReport. It is a pure function of the report plus an LLM call: it
// never runs before or during a backtest and its output never feeds back
// into the Engine, Driver, or Position bookkeeping.
type Advisor struct {
	client LLMClient
}

// New builds an Advisor over any LLMClient (the real Client, or a stub in
// tests).
func New(client LLMClient) *Advisor {
	return &Advisor{client: client}
}

// Summarize asks the configured LLM for a plain-language assessment of
// report. symbol/timeframe are for prompt context only.
func (a *Advisor) Summarize(symbol, timeframe string, report driver.BacktestReport) (string, error) {
	if a.client == nil {
		return "", fmt.Errorf("advisor: no LLM client configured")
	}
	prompt := buildPrompt(symbol, timeframe, report)
	text, err := a.client.Complete(systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("advisor: completion failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func buildPrompt(symbol, timeframe string, r driver.BacktestReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: %s (%s)\n", symbol, timeframe)
	fmt.Fprintf(&b, "Starting capital: %.2f\n", r.StartingCapital)
	fmt.Fprintf(&b, "Final capital: %.2f (ROI %.2f%%)\n", r.FinalCapital, r.ROI*100)
	fmt.Fprintf(&b, "Trades: %d (wins %d, losses %d, win rate %.1f%%)\n",
		r.TradeCount, r.WinningTrades, r.LosingTrades, r.WinRate*100)
	fmt.Fprintf(&b, "Average win: %.2f, average loss: %.2f, profit factor: %.2f\n",
		r.AverageWin, r.AverageLoss, r.ProfitFactor)
	fmt.Fprintf(&b, "Max drawdown: %.2f%%\n", r.MaxDrawdown*100)
	if r.DrawdownGuardTripped {
		b.WriteString("The drawdown guard tripped during this run and further trading was halted.\n")
	}
	return b.String()
}
