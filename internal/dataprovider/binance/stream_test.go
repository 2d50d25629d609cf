package binance

import "testing"

func TestDecodeKlineMessageParsesClosedBar(t *testing.T) {
	raw := []byte(`{"e":"kline","s":"BTCUSDT","k":{"t":1000,"T":1999,"o":"100.0","h":"105.0","l":"99.0","c":"104.5","v":"12.3","x":true}}`)
	ev, ok := decodeKlineMessage(raw)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if !ev.IsClosed {
		t.Error("expected IsClosed true")
	}
	if ev.Bar.Timestamp != 1999 {
		t.Errorf("expected Timestamp=CloseTime 1999, got %d", ev.Bar.Timestamp)
	}
	if ev.Bar.Close != 104.5 {
		t.Errorf("unexpected close %v", ev.Bar.Close)
	}
}

func TestDecodeKlineMessageForming(t *testing.T) {
	raw := []byte(`{"e":"kline","k":{"t":1000,"T":1999,"o":"100.0","h":"101.0","l":"99.5","c":"100.5","v":"1.0","x":false}}`)
	ev, ok := decodeKlineMessage(raw)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if ev.IsClosed {
		t.Error("expected IsClosed false for a forming bar")
	}
}

func TestDecodeKlineMessageRejectsGarbage(t *testing.T) {
	if _, ok := decodeKlineMessage([]byte(`not json`)); ok {
		t.Error("expected decode to fail on malformed input")
	}
	if _, ok := decodeKlineMessage([]byte(`{}`)); ok {
		t.Error("expected decode to fail when CloseTime is absent (zero value)")
	}
}
