package provider

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"trend-signal-bot/internal/logger"
	"trend-signal-bot/internal/types"
)

// CorporateActionScraper scrapes split and bonus announcements so daily bars
// can be retroactively adjusted across the ex-date.
type CorporateActionScraper struct {
	sources []actionSource
	timeout time.Duration
}

// actionSource defines one corporate-action listing page.
type actionSource struct {
	Name       string
	BaseURL    string
	SearchPath string // {symbol} is substituted
	Selectors  actionSelectors
	RateLimit  time.Duration
}

// actionSelectors are the CSS selectors for one listing row. Scrip is the
// column naming the company's symbol; rows for other companies are dropped.
type actionSelectors struct {
	Row     string
	Scrip   string
	Subject string
	ExDate  string
}

// NewCorporateActionScraper creates a scraper with the default sources.
func NewCorporateActionScraper(timeout time.Duration) *CorporateActionScraper {
	return &CorporateActionScraper{
		sources: defaultActionSources(),
		timeout: timeout,
	}
}

func defaultActionSources() []actionSource {
	return []actionSource{
		{
			Name:       "MoneyControl",
			BaseURL:    "https://www.moneycontrol.com",
			SearchPath: "/stocks/marketinfo/splits/index.php?sel_comp={symbol}",
			Selectors: actionSelectors{
				Row:     "table.b_12 tr",
				Scrip:   "td:nth-child(1)",
				Subject: "td:nth-child(2)",
				ExDate:  "td:nth-child(4)",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "BSE",
			BaseURL:    "https://www.bseindia.com",
			SearchPath: "/corporates/corporate_act.aspx?scripcd={symbol}",
			Selectors: actionSelectors{
				Row:     "table#ContentPlaceHolder1_tblData tr",
				Scrip:   "td:nth-child(1)",
				Subject: "td:nth-child(3)",
				ExDate:  "td:nth-child(2)",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// FetchActions scrapes all sources for a symbol and returns the parsed
// split/bonus actions. A source failure is logged and skipped.
func (s *CorporateActionScraper) FetchActions(ctx context.Context, symbol string) ([]types.CorporateAction, error) {
	var all []types.CorporateAction

	for i, source := range s.sources {
		actions, err := s.scrapeSource(ctx, source, symbol)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape corporate actions", err,
				"source", source.Name, "symbol", symbol)
		} else {
			all = append(all, actions...)
		}

		if i == len(s.sources)-1 {
			break
		}
		if err := pauseBetweenSources(ctx, source.RateLimit); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx, "Corporate action scrape completed", "symbol", symbol, "actions", len(all))
	return all, nil
}

func (s *CorporateActionScraper) scrapeSource(ctx context.Context, source actionSource, symbol string) ([]types.CorporateAction, error) {
	var actions []types.CorporateAction

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	var scrapeErr error
	c.OnError(func(_ *colly.Response, err error) {
		scrapeErr = err
	})

	c.OnHTML(source.Selectors.Row, func(e *colly.HTMLElement) {
		scrip := selectionText(e.DOM.Find(source.Selectors.Scrip).First())
		subject := selectionText(e.DOM.Find(source.Selectors.Subject).First())
		exDateText := selectionText(e.DOM.Find(source.Selectors.ExDate).First())
		if subject == "" || exDateText == "" {
			return
		}
		// Listing pages mix companies; only rows naming this scrip count.
		if !matchesSymbol(scrip, symbol) {
			return
		}

		action, ok := parseAction(symbol, subject, exDateText)
		if !ok {
			return
		}
		actions = append(actions, action)
	})

	target := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{symbol}", url.QueryEscape(symbol))
	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("visiting %s: %w", source.Name, err)
	}
	c.Wait()

	if scrapeErr != nil {
		return nil, scrapeErr
	}
	return actions, nil
}

var (
	splitRe = regexp.MustCompile(`(?i)split.*?(?:from|of)\s*(?:rs\.?\s*)?(\d+(?:\.\d+)?).*?(?:to)\s*(?:rs\.?\s*)?(\d+(?:\.\d+)?)`)
	bonusRe = regexp.MustCompile(`(?i)bonus.*?(\d+)\s*:\s*(\d+)`)
)

// parseAction extracts a split or bonus ratio from an announcement subject.
// "Face Value Split From Rs 10 To Rs 2" gives ratio 5; "Bonus 1:1" doubles
// the share count, ratio 2.
func parseAction(symbol, subject, exDateText string) (types.CorporateAction, bool) {
	exDate, ok := parseExDate(exDateText)
	if !ok {
		return types.CorporateAction{}, false
	}

	if m := splitRe.FindStringSubmatch(subject); m != nil {
		from, err1 := strconv.ParseFloat(m[1], 64)
		to, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && to > 0 && from > to {
			return types.CorporateAction{
				Symbol:  symbol,
				Kind:    "SPLIT",
				Ratio:   from / to,
				ExDate:  exDate,
				Subject: subject,
			}, true
		}
	}

	if m := bonusRe.FindStringSubmatch(subject); m != nil {
		newShares, err1 := strconv.ParseFloat(m[1], 64)
		held, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && held > 0 {
			return types.CorporateAction{
				Symbol:  symbol,
				Kind:    "BONUS",
				Ratio:   (held + newShares) / held,
				ExDate:  exDate,
				Subject: subject,
			}, true
		}
	}

	return types.CorporateAction{}, false
}

var exDateLayouts = []string{"02-01-2006", "02-Jan-2006", "02/01/2006", "2006-01-02"}

func parseExDate(text string) (time.Time, bool) {
	for _, layout := range exDateLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// getDomain extracts the host from a base URL for colly's allow-list.
func getDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	return u.Host
}

func selectionText(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// matchesSymbol reports whether a row's scrip column names the requested
// symbol.
func matchesSymbol(scrip, symbol string) bool {
	return strings.EqualFold(strings.TrimSpace(scrip), strings.TrimSpace(symbol))
}

// pauseBetweenSources waits out a source's rate limit unless the context
// ends first.
func pauseBetweenSources(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
