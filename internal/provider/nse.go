package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"trend-signal-bot/internal/interfaces"
	"trend-signal-bot/internal/types"
)

// NSE fetches daily bars from the nseindia.com historical-data API. The API
// requires a browser User-Agent and a session cookie obtained by priming the
// home page first.
type NSE struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	limiter    *rateLimiter
	primed     bool
}

var _ interfaces.BarProvider = (*NSE)(nil)

// NewNSE creates an NSE client. rateLimit is the minimum spacing between
// requests.
func NewNSE(rateLimit time.Duration) *NSE {
	jar, _ := cookiejar.New(nil)
	return &NSE{
		baseURL: "https://www.nseindia.com",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.9",
		},
		limiter: newRateLimiter(1, rateLimit),
	}
}

func (n *NSE) Name() string { return "nse" }

// nseHistoricalRow mirrors one row of the historical equity endpoint.
type nseHistoricalRow struct {
	Timestamp string  `json:"CH_TIMESTAMP"`
	Open      float64 `json:"CH_OPENING_PRICE"`
	High      float64 `json:"CH_TRADE_HIGH_PRICE"`
	Low       float64 `json:"CH_TRADE_LOW_PRICE"`
	Close     float64 `json:"CH_CLOSING_PRICE"`
	Volume    float64 `json:"CH_TOT_TRADED_QTY"`
}

func (n *NSE) Fetch(ctx context.Context, symbol string, from, to time.Time) ([]types.Bar, error) {
	u := fmt.Sprintf("%s/api/historical/cm/equity?symbol=%s&series=[%%22EQ%%22]&from=%s&to=%s",
		n.baseURL,
		url.QueryEscape(symbol),
		from.Format("02-01-2006"),
		to.Format("02-01-2006"))

	data, err := n.makeRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetching NSE history for %s: %w", symbol, err)
	}

	var payload struct {
		Data []nseHistoricalRow `json:"data"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing NSE history for %s: %w", symbol, err)
	}

	bars := make([]types.Bar, 0, len(payload.Data))
	for _, row := range payload.Data {
		d, err := time.Parse("2006-01-02", row.Timestamp)
		if err != nil {
			continue
		}
		bars = append(bars, types.Bar{
			Date:   d,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}
	return bars, nil
}

func (n *NSE) makeRequest(ctx context.Context, u string) ([]byte, error) {
	if err := n.limiter.wait(ctx); err != nil {
		return nil, err
	}

	// NSE rejects requests without a session cookie.
	if !n.primed {
		homeReq, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL, nil)
		if err != nil {
			return nil, err
		}
		n.applyHeaders(homeReq)
		if resp, err := n.httpClient.Do(homeReq); err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			n.primed = true
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	n.applyHeaders(req)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NSE API returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (n *NSE) applyHeaders(req *http.Request) {
	for key, value := range n.headers {
		req.Header.Set(key, value)
	}
}
