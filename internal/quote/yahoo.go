package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sahamwatch/internal/errors"
	"sahamwatch/internal/models"
	"sahamwatch/pkg/utils"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// YahooGateway fetches quotes from the Yahoo Finance chart API.
type YahooGateway struct {
	baseURL string
	suffix  string
	client  *http.Client
	retry   utils.RetryConfig
}

// NewYahooGateway creates a gateway that appends the given exchange suffix
// (".JK" for IDX) to bare tickers. baseURL is overridable for tests; empty
// means the public Yahoo endpoint.
func NewYahooGateway(baseURL, suffix string) *YahooGateway {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &YahooGateway{
		baseURL: baseURL,
		suffix:  suffix,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: utils.DefaultRetryConfig(),
	}
}

// chartResponse mirrors the slice of the Yahoo v8 chart payload we care about.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice   *float64 `json:"regularMarketPrice"`
				ChartPreviousClose   float64  `json:"chartPreviousClose"`
				RegularMarketDayHigh float64  `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64  `json:"regularMarketDayLow"`
				RegularMarketVolume  int64    `json:"regularMarketVolume"`
				LongName             string   `json:"longName"`
				ShortName            string   `json:"shortName"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch retrieves a fresh quote. Transport faults are retried with backoff;
// a symbol without trading data maps to ErrQuoteNotFound immediately.
func (g *YahooGateway) Fetch(ctx context.Context, symbol string) (*models.Quote, error) {
	ticker := g.withSuffix(symbol)

	return utils.RetryWithResult(ctx, g.retry, errors.IsGatewayFault, func() (*models.Quote, error) {
		return g.fetchOnce(ctx, symbol, ticker)
	})
}

func (g *YahooGateway) fetchOnce(ctx context.Context, symbol, ticker string) (*models.Quote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", g.baseURL, ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewGatewayError("quote", symbol, err)
	}
	req.Header.Set("User-Agent", "sahamwatch/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.NewGatewayError("quote", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.ErrQuoteNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewGatewayError("quote", symbol, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.NewGatewayError("quote", symbol, err)
	}

	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.NewGatewayError("quote", symbol, errors.Wrap(err, "decoding chart response"))
	}

	// A chart-level error or empty result is ordinary absence, not a fault.
	if payload.Chart.Error != nil || len(payload.Chart.Result) == 0 {
		return nil, errors.ErrQuoteNotFound
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil {
		return nil, errors.ErrQuoteNotFound
	}

	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	if name == "" {
		name = models.NormalizeSymbol(symbol)
	}

	return &models.Quote{
		Symbol:        models.NormalizeSymbol(symbol),
		LastPrice:     *meta.RegularMarketPrice,
		PreviousClose: meta.ChartPreviousClose,
		DayHigh:       meta.RegularMarketDayHigh,
		DayLow:        meta.RegularMarketDayLow,
		Volume:        meta.RegularMarketVolume,
		CompanyName:   name,
	}, nil
}

// withSuffix appends the exchange suffix unless the ticker already has one.
func (g *YahooGateway) withSuffix(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if g.suffix == "" || strings.HasSuffix(s, strings.ToUpper(g.suffix)) {
		return s
	}
	return s + strings.ToUpper(g.suffix)
}
