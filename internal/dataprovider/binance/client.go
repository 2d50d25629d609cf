// Package binance implements internal/dataprovider.DataProvider against the
// Binance spot REST and WebSocket APIs. Grounded on the teacher repo's
// internal/binance.Client (REST shape, raw-array kline parsing) and
// internal/binance.UserDataStream (WebSocket connect/readLoop shape),
// generalized from order-management to the read-only kline feed spec.md
// §6 requires.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/conflux-quant/decision-engine/internal/engineerr"
	"github.com/conflux-quant/decision-engine/internal/market"
)

const defaultBaseURL = "https://api.binance.com"

// RESTClient fetches historical klines over the Binance REST API. It holds
// no credentials: kline data is public and the decision engine never
// places orders.
type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRESTClient builds a RESTClient. An empty baseURL falls back to the
// production Binance endpoint.
func NewRESTClient(baseURL string) *RESTClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &RESTClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchKlines implements dataprovider.DataProvider.FetchKlines. Binance
// caps a single request at 1000 klines; callers needing a wider range must
// page by repeating the call with a new startMs, matching the teacher's
// client which never paginates internally either.
func (c *RESTClient) FetchKlines(ctx context.Context, symbol, timeframe string, startMs, endMs int64, limit int) ([]market.Bar, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", timeframe)
	params.Set("limit", strconv.Itoa(limit))
	if startMs > 0 {
		params.Set("startTime", strconv.FormatInt(startMs, 10))
	}
	if endMs > 0 {
		params.Set("endTime", strconv.FormatInt(endMs, 10))
	}

	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, engineerr.NewTransportError("fetch_klines", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, engineerr.NewTransportError("fetch_klines", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, engineerr.NewTransportError("fetch_klines", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, engineerr.NewTransportError("fetch_klines", fmt.Errorf("binance API error %d: %s", resp.StatusCode, body))
	}

	var raw [][]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, engineerr.NewTransportError("fetch_klines", fmt.Errorf("malformed kline response: %w", err))
	}

	bars := make([]market.Bar, len(raw))
	for i, k := range raw {
		if len(k) < 7 {
			return nil, engineerr.NewTransportError("fetch_klines", fmt.Errorf("kline row %d has %d fields, want >=7", i, len(k)))
		}
		bars[i] = market.Bar{
			Timestamp: int64(k[6].(float64)), // closeTime
			Open:      parseFloat(k[1]),
			High:      parseFloat(k[2]),
			Low:       parseFloat(k[3]),
			Close:     parseFloat(k[4]),
			Volume:    parseFloat(k[5]),
			Closed:    true,
		}
	}
	return bars, nil
}

// TestConnection implements dataprovider.DataProvider.TestConnection via
// Binance's unauthenticated ping endpoint.
func (c *RESTClient) TestConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v3/ping", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func parseFloat(val interface{}) float64 {
	switch v := val.(type) {
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case float64:
		return v
	default:
		return 0
	}
}
