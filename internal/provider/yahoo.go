package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"trend-signal-bot/internal/interfaces"
	"trend-signal-bot/internal/types"
)

// Yahoo fetches daily bars from the Yahoo Finance v8 chart API. NSE symbols
// are addressed with the ".NS" suffix.
type Yahoo struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.BarProvider = (*Yahoo)(nil)

func NewYahoo() *Yahoo {
	return &Yahoo{
		baseURL: "https://query1.finance.yahoo.com",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *Yahoo) Fetch(ctx context.Context, symbol string, from, to time.Time) ([]types.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s.NS?period1=%d&period2=%d&interval=1d",
		y.baseURL, symbol, from.Unix(), to.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching Yahoo chart for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Yahoo API returned status %d for %s", resp.StatusCode, symbol)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed yahooChartResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing Yahoo chart for %s: %w", symbol, err)
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("Yahoo chart error for %s: %s", symbol, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("empty Yahoo chart result for %s", symbol)
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]types.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Yahoo pads halted days with nulls; drop incomplete rows.
		if i >= len(quote.Open) || quote.Open[i] == nil || quote.High[i] == nil ||
			quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}
		vol := 0.0
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			vol = *quote.Volume[i]
		}
		bars = append(bars, types.Bar{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: vol,
		})
	}
	return bars, nil
}
