package postgres

import (
	"encoding/json"
	"testing"

	"github.com/conflux-quant/decision-engine/internal/position"
)

// Integration tests that exercise Repository against a real PostgreSQL
// instance require a live database and are out of scope here (see the
// teacher's own repository_settlement_test.go for the same split). This
// verifies the trade-ledger JSON round-trip the Repository relies on,
// which is the only part of the package pure Go logic can cover.

func TestTradeLedgerJSONRoundTrip(t *testing.T) {
	trades := []position.Trade{
		{
			ID: "t1", EntryBarIndex: 50, ExitBarIndex: 60, Side: position.Long,
			EntryPrice: 100, ExitPrice: 110, ExitReason: position.TakeProfit,
			PnL: 100, PnLPct: 0.1, CapitalAfter: 11000,
		},
	}

	data, err := json.Marshal(trades)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var round []position.Trade
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(round) != 1 || round[0].ID != "t1" || round[0].ExitReason != position.TakeProfit {
		t.Errorf("round-trip mismatch: %+v", round)
	}
}
