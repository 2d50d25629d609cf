package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRESTClientFetchKlinesParsesRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			[1,"100.0","105.0","99.0","104.0","10.5",1001,"0","0","0","0","0"],
			[2,"104.0","110.0","103.0","109.0","11.5",1002,"0","0","0","0","0"]
		]`))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	bars, err := c.FetchKlines(context.Background(), "BTCUSDT", "1h", 0, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 104.0 || bars[0].Timestamp != 1001 {
		t.Errorf("unexpected first bar: %+v", bars[0])
	}
	if bars[1].High != 110.0 {
		t.Errorf("unexpected second bar high: %+v", bars[1])
	}
}

func TestRESTClientFetchKlinesWrapsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":-1003,"msg":"rate limited"}`))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	_, err := c.FetchKlines(context.Background(), "BTCUSDT", "1h", 0, 0, 0)
	if err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestRESTClientTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL)
	if !c.TestConnection(context.Background()) {
		t.Error("expected TestConnection to succeed against a 200 response")
	}
}
