package advisor

import (
	"errors"
	"strings"
	"testing"

	"github.com/conflux-quant/decision-engine/internal/driver"
)

type stubClient struct {
	reply string
	err   error
	gotSystem, gotUser string
}

func (s *stubClient) Complete(systemPrompt, userPrompt string) (string, error) {
	s.gotSystem, s.gotUser = systemPrompt, userPrompt
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestSummarizeReturnsTrimmedReply(t *testing.T) {
	stub := &stubClient{reply: "  solid trend-following performance  \n"}
	a := New(stub)

	report := driver.BacktestReport{
		StartingCapital: 10000, FinalCapital: 11500, ROI: 0.15,
		TradeCount: 10, WinningTrades: 6, LosingTrades: 4, WinRate: 0.6,
		AverageWin: 400, AverageLoss: -150, ProfitFactor: 2.4, MaxDrawdown: 0.08,
	}

	out, err := a.Summarize("BTCUSDT", "1h", report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "solid trend-following performance" {
		t.Errorf("expected trimmed reply, got %q", out)
	}
	if !strings.Contains(stub.gotUser, "BTCUSDT") {
		t.Error("expected the prompt to mention the symbol")
	}
	if !strings.Contains(stub.gotUser, "15.00%") {
		t.Error("expected the prompt to include the formatted ROI")
	}
	if !strings.Contains(stub.gotSystem, "Never suggest placing trades") {
		t.Error("expected the system prompt to forbid trade suggestions")
	}
}

func TestSummarizeMentionsDrawdownGuard(t *testing.T) {
	stub := &stubClient{reply: "ok"}
	a := New(stub)

	report := driver.BacktestReport{DrawdownGuardTripped: true}
	if _, err := a.Summarize("ETHUSDT", "4h", report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stub.gotUser, "drawdown guard tripped") {
		t.Error("expected the prompt to call out the tripped drawdown guard")
	}
}

func TestSummarizePropagatesClientError(t *testing.T) {
	stub := &stubClient{err: errors.New("rate limited")}
	a := New(stub)

	_, err := a.Summarize("BTCUSDT", "1h", driver.BacktestReport{})
	if err == nil {
		t.Fatal("expected the client error to propagate")
	}
}

func TestSummarizeWithoutClientErrors(t *testing.T) {
	a := New(nil)
	if _, err := a.Summarize("BTCUSDT", "1h", driver.BacktestReport{}); err == nil {
		t.Error("expected an error when no LLM client is configured")
	}
}
